// Package cache stores rendered artifacts between runs.
//
// Rendering the same diagram twice produces the same bytes, so artifacts are
// keyed by a hash of the DOT source plus the render options (see [Keyer]).
// Three backends implement [Cache]:
//
//   - [FileCache] keeps entries as JSON files under the user cache directory
//     and is what the CLI uses.
//   - [RedisCache] shares entries between server instances.
//   - [NullCache] never stores anything (--no-cache).
//
// Backend errors are not fatal to callers: a failing Get is treated as a miss
// and a failing Set only loses the cached copy.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts stay cached when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
