package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/stackplan/pkg/graphio"
	"github.com/example/stackplan/pkg/pipeline"
	"github.com/example/stackplan/pkg/render"
)

// graphCommand creates the graph export command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		maxDepth int
		manifest string
		marker   string
	)

	cmd := &cobra.Command{
		Use:   "graph [root]",
		Short: "Export the stack dependency graph",
		Long: `Export the stack dependency graph without computing an order.

Formats:
  dot   Graphviz DOT text (default)
  svg   Rendered SVG diagram
  json  Machine-readable node/edge list

Examples:
  stackplan graph                        # DOT to stdout
  stackplan graph -f svg -o graph.svg    # Rendered diagram
  stackplan graph -f json                # For tooling`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			// The export needs the constructed graph, so the plan cache is
			// not consulted.
			result, err := c.newRunner(true).Execute(cmd.Context(), pipeline.Options{
				Root:         root,
				MaxDepth:     maxDepth,
				ManifestName: manifest,
				MarkerName:   marker,
				NoCache:      true,
			})
			if err != nil {
				return err
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			switch format {
			case "dot":
				if _, err := fmt.Fprint(out, render.ToDOT(result.Graph)); err != nil {
					return err
				}
			case "svg":
				dot := render.ToDOT(result.Graph)
				svg, err := render.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
				if _, err := out.Write(svg); err != nil {
					return err
				}
			case "json":
				if err := graphio.Write(result.Graph, out); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format: %s (available: dot, svg, json)", format)
			}

			if output != "" {
				printSuccess("Exported dependency graph")
				printFile(output)
				printStats(result.Stacks, result.Edges, false)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum directory depth to scan")
	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest filename")
	cmd.Flags().StringVar(&marker, "marker", "", "marker filename for manifest-less stacks")

	return cmd
}
