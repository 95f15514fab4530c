package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/provider"
	"github.com/matzehuels/lineage/pkg/render/text"
)

// showCommand creates the show command for printing a family to the terminal.
func (c *CLI) showCommand() *cobra.Command {
	var (
		members bool
		plain   bool
		strict  bool
		src     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "show [snapshot.json]",
		Short: "Print the family tree in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.requireProvider(ctx, args, src)
			if err != nil {
				return err
			}
			return c.runShow(ctx, p, strict, members, plain)
		},
	}

	cmd.Flags().BoolVar(&members, "members", false, "also print the member table")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on parent-child cycles anywhere in the graph")
	src.register(cmd)

	return cmd
}

func (c *CLI) runShow(ctx context.Context, p provider.Provider, strict, members, plain bool) error {
	runner, err := c.newRunner(ctx, p, true)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	prog := newProgress(c.Logger)
	s, err := provider.Fetch(ctx, p)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Fetched %d members", len(s.Persons)))

	opts := c.defaultOptions()
	opts.Strict = strict
	result, err := runner.Compute(ctx, s, opts)
	if err != nil {
		return err
	}

	textOpts := []text.Option{text.WithLookup(result.Graph)}
	if !plain {
		textOpts = append(textOpts, text.Styled())
	}
	fmt.Println(text.Tree(result.Root, textOpts...))
	if members {
		fmt.Println()
		fmt.Println(text.Members(result.Graph, textOpts...))
	}

	printOrphans(result.Orphans)
	return nil
}
