// Package pipeline runs the complete stack ordering flow: discover stack
// directories, ingest their manifests into a dependency graph, resolve and
// validate the graph, and produce the deployment order.
//
// The pipeline is the single entry point shared by the CLI and the serve API,
// so both produce identical orders and identical errors for the same tree.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Root: "."})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Order)
package pipeline

import (
	"time"

	"github.com/example/stackplan/pkg/discover"
	"github.com/example/stackplan/pkg/errors"
	"github.com/example/stackplan/pkg/graph"
	"github.com/example/stackplan/pkg/manifest"
)

// DefaultCacheTTL bounds how long a computed order is reused. Orders are
// keyed by manifest content, so a stale entry can only occur when directories
// appear or vanish without a manifest edit.
const DefaultCacheTTL = 24 * time.Hour

// Options configures a pipeline run.
type Options struct {
	// Root is the directory to scan for stacks. Empty means ".".
	Root string

	// MaxDepth bounds the discovery walk. Zero means discover.DefaultMaxDepth.
	MaxDepth int

	// ManifestName overrides the manifest filename. Empty means
	// manifest.DefaultFilename.
	ManifestName string

	// MarkerName enables marker-file stacks (directories without a manifest).
	// Empty disables the marker variant.
	MarkerName string

	// NoCache disables cache reads and writes for this run.
	NoCache bool

	// Refresh skips the cache read but still stores the fresh result.
	Refresh bool

	// CacheTTL overrides DefaultCacheTTL. Zero means the default.
	CacheTTL time.Duration
}

// ValidateAndSetDefaults fills zero-value options with their defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Root == "" {
		o.Root = "."
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = discover.DefaultMaxDepth
	}
	if o.ManifestName == "" {
		o.ManifestName = manifest.DefaultFilename
	}
	if err := errors.ValidateManifestFilename(o.ManifestName); err != nil {
		return err
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// Stats records per-stage timings for a run.
type Stats struct {
	DiscoverTime time.Duration
	BuildTime    time.Duration
	SortTime     time.Duration
	Total        time.Duration
}

// Result is the outcome of one pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Root is the absolute-ish root the run scanned (as given in Options).
	Root string

	// Order is the deployment order: dependencies before dependents.
	Order []string

	// Stacks is the number of discovered stack directories.
	Stacks int

	// Edges is the number of dependency edges ingested.
	Edges int

	// CacheHit reports whether Order came from the cache. Graph is nil on a
	// cache hit.
	CacheHit bool

	// Graph is the constructed dependency graph, available for export.
	Graph *graph.Graph

	Stats Stats
}

// StackSpec is an in-memory stack declaration, used by callers that already
// hold the manifest data (the serve API) instead of a directory tree.
type StackSpec struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// OrderSpecs computes the deployment order for a set of in-memory stack
// declarations. A dependency "exists" when it names a declared stack, so the
// same unknown-dependency and cycle validation applies as for directory
// trees.
func OrderSpecs(specs []StackSpec) ([]string, error) {
	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		if err := errors.ValidateStackName(s.Name); err != nil {
			return nil, err
		}
		declared[s.Name] = true
	}

	g := graph.New()
	for _, s := range specs {
		g.GetOrCreate(s.Name, true)
	}
	for _, s := range specs {
		for _, dep := range s.Dependencies {
			if err := errors.ValidateStackName(dep); err != nil {
				return nil, err
			}
			g.GetOrCreate(dep, declared[dep])
			if err := g.AddDependency(s.Name, dep); err != nil {
				return nil, err
			}
		}
	}

	if _, err := g.Resolve(); err != nil {
		return nil, err
	}
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	return graph.Names(sorted), nil
}
