// Package cache stores fetched tree documents between runs.
//
// The loader consults a [Cache] before issuing its single GET and stores
// successful bodies afterwards, so repeated renders of the same source do
// not hit the network. Three backends are provided:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several server replicas
//   - [NullCache]: stores nothing, for --no-cache
//
// Only successful (HTTP 200) responses are ever stored.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a fetched document stays fresh.
const DefaultTTL = 10 * time.Minute

// Cache is a byte store with per-entry expiry. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// SourceKey is the cache key for the document fetched from source.
func SourceKey(source string) string {
	return hashKey("source", source)
}
