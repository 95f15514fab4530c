package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	legend  bool   // draw the gender legend
	title   string // SVG title
	root    string // DOT traversal root
	depth   int    // DOT traversal depth, 0 for unlimited
	refresh bool   // ignore cached artifacts
	noCache bool   // disable caching
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro     renderOpts
		layout layoutFlags
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "render [snapshot.json]",
		Short: "Render a family snapshot to SVG, DOT, JSON or text",
		Long: `Render a family snapshot.

Formats (-f, comma-separated):
  svg           tidy-tree drawing with couple cards (default)
  json          layout JSON
  dot           node-link Graphviz DOT of every relationship
  nodelink-svg  the DOT export laid out by Graphviz
  text          indented tree

With one format, -o names the output file (or - for stdout). With several it
is a base path that each format's extension is appended to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.defaultOptions()
			layout.apply(cmd, &opts)
			opts.Formats = pipeline.ParseFormats(ro.formats)
			opts.Legend = ro.legend
			opts.Title = ro.title
			opts.DOTRoot = ro.root
			opts.DOTDepth = ro.depth
			opts.Refresh = ro.refresh
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args, src, opts, &ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), json, dot, nodelink-svg, text")
	cmd.Flags().BoolVar(&ro.legend, "legend", false, "draw the gender legend (svg)")
	cmd.Flags().StringVar(&ro.title, "title", "", "drawing title (svg)")
	cmd.Flags().StringVar(&ro.root, "root", "", "start the node-link export at this member (dot)")
	cmd.Flags().IntVar(&ro.depth, "depth", 0, "limit the node-link export depth, 0 for unlimited (dot)")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	layout.register(cmd)
	src.register(cmd)

	return cmd
}

// runRender fetches the snapshot, renders every format and writes one file
// per format.
func (c *CLI) runRender(ctx context.Context, args []string, src sourceFlags, opts pipeline.Options, ro *renderOpts) error {
	if ro.output == stdoutPath && len(opts.Formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "-o - needs exactly one format, got %d", len(opts.Formats))
	}

	p, err := c.requireProvider(ctx, args, src)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, p, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(ro.output, args, opts.Formats)
	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	for _, f := range formats {
		if err := writeArtifact(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %d artifact(s)", len(formats))
	for _, f := range formats {
		if paths[f] != stdoutPath {
			printFile(paths[f])
		}
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	printOrphans(result.Orphans)
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses it verbatim; otherwise every format gets its
// extension appended to the base path.
func outputPaths(output string, args []string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, args)
	for _, f := range formats {
		paths[f] = base + pipeline.Extensions[f]
	}
	return paths
}

// basePath derives the base output path. Without an output it strips the
// extension from the snapshot file, falling back to the app name for remote
// sources. A known format extension on output is stripped.
func basePath(output string, args []string) string {
	if output == "" {
		if len(args) == 0 {
			return appName
		}
		return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	}
	longest := ""
	for _, ext := range pipeline.Extensions {
		if strings.HasSuffix(output, ext) && len(ext) > len(longest) {
			longest = ext
		}
	}
	return strings.TrimSuffix(output, longest)
}
