package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/example/stackplan/pkg/observability"
	"github.com/example/stackplan/pkg/pipeline"
	"github.com/example/stackplan/pkg/render"
)

// orderOpts holds the command-line flags for the order command.
type orderOpts struct {
	format      string // output format: json or table
	output      string // output file path (stdout if empty)
	draw        string // DOT file path (disabled if empty)
	interactive bool   // open the interactive inspector
	noCache     bool   // disable the plan cache
	refresh     bool   // bypass the cache read
	maxDepth    int    // discovery depth limit
	manifest    string // manifest filename override
	marker      string // marker filename (enables marker stacks)
}

// orderCommand creates the order command, the primary entry point: scan a
// tree, validate the dependency graph, and print the deployment order.
func (c *CLI) orderCommand() *cobra.Command {
	var opts orderOpts

	cmd := &cobra.Command{
		Use:   "order [root]",
		Short: "Compute the deployment order for a tree of stacks",
		Long: `Compute the deployment order for a tree of stacks.

Scans root (default ".") for directories containing a dependency manifest,
builds the dependency graph, and prints the stacks in deployment order:
every stack appears after all of its dependencies.

Examples:
  stackplan order                         # Scan the current directory
  stackplan order ./environments/prod     # Scan a specific tree
  stackplan order --format table          # Human-readable output
  stackplan order --draw graph.dot        # Also export a Graphviz diagram`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return c.runOrder(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or table")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.draw, "draw", "", "write a Graphviz DOT diagram to this file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "inspect the order interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the plan cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached plan exists")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum directory depth to scan")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "manifest filename")
	cmd.Flags().StringVar(&opts.marker, "marker", "", "marker filename for manifest-less stacks")

	return cmd
}

func (c *CLI) runOrder(cmd *cobra.Command, root string, opts orderOpts) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	applyConfig(cmd, &opts, cfg)
	if opts.format == "" {
		opts.format = "json"
	}
	if opts.format != "json" && opts.format != "table" {
		return fmt.Errorf("unknown format: %s (available: json, table)", opts.format)
	}

	pipeOpts := pipeline.Options{
		Root:         root,
		MaxDepth:     opts.maxDepth,
		ManifestName: opts.manifest,
		MarkerName:   opts.marker,
		NoCache:      opts.noCache,
		Refresh:      opts.refresh,
	}
	if cfg.Cache.TTLHours > 0 {
		pipeOpts.CacheTTL = time.Duration(cfg.Cache.TTLHours) * time.Hour
	}

	// Diagram export and the inspector need the constructed graph, which a
	// cache hit skips.
	var recorder *render.Recorder
	if opts.draw != "" {
		recorder = render.NewRecorder()
		observability.SetGraphHooks(recorder)
		defer observability.Reset()
		pipeOpts.Refresh = true
	}
	if opts.interactive {
		pipeOpts.Refresh = true
	}

	prog := newProgress(loggerFromContext(cmd.Context()))
	result, err := c.newRunner(opts.noCache).Execute(cmd.Context(), pipeOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Ordered %d stacks", len(result.Order)))

	if opts.interactive {
		return c.inspectOrder(result)
	}

	if err := writeOrder(result, opts.format, opts.output); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote deployment order")
		printFile(opts.output)
		printStats(result.Stacks, result.Edges, result.CacheHit)
	}

	if recorder != nil {
		if err := os.WriteFile(opts.draw, []byte(recorder.DOT()), 0o644); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
		printFile(opts.draw)
	}

	return nil
}

// applyConfig fills flag values not set on the command line from the tree's
// config file.
func applyConfig(cmd *cobra.Command, opts *orderOpts, cfg Config) {
	if !cmd.Flags().Changed("max-depth") && cfg.Discovery.MaxDepth > 0 {
		opts.maxDepth = cfg.Discovery.MaxDepth
	}
	if !cmd.Flags().Changed("manifest") && cfg.Discovery.Manifest != "" {
		opts.manifest = cfg.Discovery.Manifest
	}
	if !cmd.Flags().Changed("marker") && cfg.Discovery.Marker != "" {
		opts.marker = cfg.Discovery.Marker
	}
	if !cmd.Flags().Changed("format") && cfg.Output.Format != "" {
		opts.format = cfg.Output.Format
	}
	if cfg.cacheDisabled() {
		opts.noCache = true
	}
}

// writeOrder renders the order in the requested format to path (or stdout).
func writeOrder(result *pipeline.Result, format, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "table":
		fmt.Fprint(out, orderTable(result))
		return nil
	default:
		data, err := json.Marshal(result.Order)
		if err != nil {
			return fmt.Errorf("encode order: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
}

// inspectOrder opens the interactive deployment order inspector.
func (c *CLI) inspectOrder(result *pipeline.Result) error {
	model := newOrderModel(result)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("inspector: %w", err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method so os.Stdout can be
// used as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
