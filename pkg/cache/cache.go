// Package cache provides pluggable storage for computed deployment plans.
//
// Three backends are available:
//   - FileCache: per-user directory cache for CLI invocations
//   - RedisCache: shared cache for multi-instance serve deployments
//   - NullCache: caching disabled
//
// Keys are derived from the discovered manifest set (names, contents, and
// discovery options), so any change to a manifest invalidates the cached
// plan. See [Key] and [Hash].
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must treat a missing key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
