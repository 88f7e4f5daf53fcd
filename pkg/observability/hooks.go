// Package observability provides hooks for graph, discovery, and cache events.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific backends. Consumers can register hooks at startup to receive events
// about graph construction, stack discovery, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps pkg/graph dependency-free from rendering and metrics backends
//   - Allows different consumers (DOT recorder, metrics, tracing)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    rec := render.NewRecorder()
//	    observability.SetGraphHooks(rec)
//	    // ... build the graph, then rec.DOT()
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Graph().OnNodeCreated(name, exists)
//	observability.Graph().OnEdgeAdded(from, to)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives events from dependency graph construction.
// The graph invokes these unconditionally; the default implementation is a no-op,
// so correctness never depends on a consumer being registered.
type GraphHooks interface {
	// OnNodeCreated records a node entering the graph.
	// exists reports whether a real stack directory backs the node at creation time.
	OnNodeCreated(name string, exists bool)

	// OnEdgeAdded records a dependency edge from one stack to another.
	OnEdgeAdded(from, to string)
}

// =============================================================================
// Discovery Hooks
// =============================================================================

// DiscoveryHooks receives events from stack discovery.
type DiscoveryHooks interface {
	// OnStackFound records a discovered stack directory.
	// manifest is the manifest path, or empty for marker-only stacks.
	OnStackFound(name, manifest string)

	// OnWalkComplete records the end of a discovery walk.
	OnWalkComplete(root string, stacks int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnNodeCreated(string, bool) {}
func (NoopGraphHooks) OnEdgeAdded(string, string) {}

// NoopDiscoveryHooks is a no-op implementation of DiscoveryHooks.
type NoopDiscoveryHooks struct{}

func (NoopDiscoveryHooks) OnStackFound(string, string)               {}
func (NoopDiscoveryHooks) OnWalkComplete(string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	graphHooks     GraphHooks     = NoopGraphHooks{}
	discoveryHooks DiscoveryHooks = NoopDiscoveryHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetGraphHooks registers custom graph construction hooks.
// This should be called once at application startup before any graph is built.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
	}
}

// SetDiscoveryHooks registers custom discovery hooks.
// This should be called once at application startup before any discovery walk.
func SetDiscoveryHooks(h DiscoveryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		discoveryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
}

// Discovery returns the registered discovery hooks.
func Discovery() DiscoveryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return discoveryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	graphHooks = NoopGraphHooks{}
	discoveryHooks = NoopDiscoveryHooks{}
	cacheHooks = NoopCacheHooks{}
}
