package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/example/stackplan/pkg/cache"
	"github.com/example/stackplan/pkg/discover"
	"github.com/example/stackplan/pkg/graph"
	"github.com/example/stackplan/pkg/manifest"
	"github.com/example/stackplan/pkg/observability"
)

// Runner executes pipeline runs with caching. It is stateless apart from the
// cache and logger; one Runner serves the CLI and the API alike.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching (NullCache), a nil
// logger falls back to log.Default.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// cachedPlan is the cache payload: everything a hit must restore.
type cachedPlan struct {
	Order []string `json:"order"`
	Edges int      `json:"edges"`
}

// Execute runs discover → ingest → resolve → sort and returns the deployment
// order. Results are cached by manifest content, so reruns over an unchanged
// tree skip graph construction entirely.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	result := &Result{
		RunID: uuid.NewString(),
		Root:  opts.Root,
	}

	// Stage 1: discover stack directories and read their manifests.
	discoverStart := time.Now()
	stacks, err := discover.Discover(opts.Root, discover.Options{
		MaxDepth:     opts.MaxDepth,
		ManifestName: opts.ManifestName,
		MarkerName:   opts.MarkerName,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	result.Stacks = len(stacks)

	manifests := make(map[string][]byte, len(stacks))
	for _, s := range stacks {
		if s.ManifestPath == "" {
			continue
		}
		data, err := os.ReadFile(s.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", s.ManifestPath, err)
		}
		manifests[s.Name] = data
	}
	result.Stats.DiscoverTime = time.Since(discoverStart)

	r.Logger.Debug("discovered stacks",
		"root", opts.Root,
		"stacks", len(stacks),
		"duration", result.Stats.DiscoverTime)

	// The key covers every input the order depends on: stack identities,
	// manifest content, and the walk configuration.
	keyParts := make([]any, 0, 2*len(stacks)+2)
	for _, s := range stacks {
		keyParts = append(keyParts, s.Name, cache.Hash(manifests[s.Name]))
	}
	keyParts = append(keyParts, opts.MaxDepth, opts.ManifestName)
	cacheKey := cache.Key("order", keyParts...)

	if !opts.NoCache && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var plan cachedPlan
			if err := json.Unmarshal(data, &plan); err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKey)
				result.Order = plan.Order
				result.Edges = plan.Edges
				result.CacheHit = true
				result.Stats.Total = time.Since(start)
				r.Logger.Info("using cached order",
					"stacks", result.Stacks,
					"duration", result.Stats.Total)
				return result, nil
			}
			// Corrupt entry: fall through and recompute.
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	// Stage 2: ingest manifests into the graph. Discovered stacks are created
	// up front so insertion order matches walk order regardless of how
	// manifests cross-reference each other.
	buildStart := time.Now()
	g := graph.New()
	for _, s := range stacks {
		g.GetOrCreate(s.Name, true)
	}
	for _, s := range stacks {
		if s.ManifestPath == "" {
			continue
		}
		deps, err := manifest.Parse(manifests[s.Name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.ManifestPath, err)
		}
		for _, dep := range deps {
			g.GetOrCreate(dep, discover.DirExists(opts.Root, dep))
			if err := g.AddDependency(s.Name, dep); err != nil {
				return nil, err
			}
		}
	}
	result.Graph = g
	result.Edges = g.EdgeCount()
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("built dependency graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 3: resolve and sort.
	sortStart := time.Now()
	if _, err := g.Resolve(); err != nil {
		return nil, err
	}
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	result.Order = graph.Names(sorted)
	result.Stats.SortTime = time.Since(sortStart)
	result.Stats.Total = time.Since(start)

	r.Logger.Info("computed deployment order",
		"stacks", len(result.Order),
		"duration", result.Stats.SortTime)

	if !opts.NoCache {
		if data, err := json.Marshal(cachedPlan{Order: result.Order, Edges: result.Edges}); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, opts.CacheTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
			}
		}
	}

	return result, nil
}
