package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/provider"
)

// fetchCommand creates the fetch command for saving a remote snapshot.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output string
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a snapshot from the family-tree service or MongoDB",
		Long: `Download a snapshot of every member and relationship.

The source is --url or --mongo-uri, or the [provider] section of the config
file. The output format follows the file extension (.json, .yaml or .yml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.requireProvider(ctx, nil, src)
			if err != nil {
				return err
			}
			return c.runFetch(ctx, p, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "family.json", "output file, or - for JSON on stdout")
	src.register(cmd)

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, p provider.Provider, output string) error {
	if cl, ok := p.(interface{ Close(context.Context) error }); ok {
		defer cl.Close(context.WithoutCancel(ctx))
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching from %s...", p.Name()))
	spinner.Start()

	s, err := provider.Fetch(ctx, p)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	if output == stdoutPath {
		if err := graph.WriteSnapshot(s, os.Stdout, graph.FormatJSON); err != nil {
			return err
		}
	} else if err := graph.WriteSnapshotFile(s, output); err != nil {
		return err
	}

	printSuccess("Fetched %d members, %d edges", len(s.Persons), len(s.Edges))
	if output != stdoutPath {
		printFile(output)
		printKeyValue("hash", s.Hash())
		printNewline()
		printNextStep("Render", appName+" render "+output)
	}
	return nil
}
