package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/insignia/internal/render"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Links bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <vertex-id>",
		Short: "Render the neighborhood of a vertex as DOT",
		Long: `Render every edge incident to a vertex as a Graphviz digraph.

Examples:
  insignia graph User-0190... | dot -Tsvg > user.svg
  insignia graph Document-0190... --links
  insignia graph Session-0190... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts.RootOptions, cmd, func(ctx context.Context, e *env) error {
				return runGraph(ctx, opts, e, args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Links, "links", false, "also print the HTML link list")
	return cmd
}

func runGraph(ctx context.Context, opts *GraphOptions, e *env, vertexID string) error {
	view, err := render.New(e.graph).Render(ctx, vertexID)
	if err != nil {
		return e.fail("failed to render graph", err)
	}

	lines := []string{view.Graph}
	if opts.Links {
		lines = append(lines, view.Links)
	}
	return e.out.SuccessLines(view, lines)
}
