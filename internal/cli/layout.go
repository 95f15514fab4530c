package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/pipeline"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		layout  layoutFlags
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Compute the tree layout of a family snapshot",
		Long: `Compute the tree layout of a family snapshot.

The snapshot comes from the file argument, or from --url / --mongo-uri or the
[provider] section of the config file. The output is a layout JSON document
(the same as 'render -f json') listing every positioned node and link.

Use -o - to write the layout to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions()
			layout.apply(cmd, &opts)
			opts.Refresh = refresh
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), args, src, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached artifacts")
	layout.register(cmd)
	src.register(cmd)

	return cmd
}

// runLayout fetches the snapshot, computes the layout and writes output.
func (c *CLI) runLayout(ctx context.Context, args []string, src sourceFlags, opts pipeline.Options, output string, noCache bool) error {
	p, err := c.requireProvider(ctx, args, src)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, p, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", args) + ".layout.json"
	}
	if err := writeArtifact(outputPath, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return err
	}

	printSuccess("Layout complete")
	if outputPath != stdoutPath {
		printFile(outputPath)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	printOrphans(result.Orphans)
	if outputPath != stdoutPath && len(args) > 0 {
		printNewline()
		printNextStep("Render", appName+" render "+args[0])
	}
	return nil
}

// stdoutPath as an output path writes to stdout.
const stdoutPath = "-"

// writeArtifact writes data to path, or to stdout for "-".
func writeArtifact(path string, data []byte) error {
	if path == stdoutPath {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
