// Package cache memoizes finished export documents.
//
// Only final artifacts are cached, never intermediate pipeline structures:
// every export computes its graph, geometry and colors from scratch, and
// the cache sits in front of the whole pipeline, keyed by a hash of the
// input snapshot, the options and the exporter version (see [Keyer]).
//
// Backends:
//   - [NullCache]: caches nothing (library default, --no-cache)
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for `flowlane serve` instances
//
// Any backend can be wrapped with [Compress] to store zstd-compressed
// entries.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
