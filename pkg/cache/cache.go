// Package cache stores resolved dependency trees between runs.
//
// Resolving a module's tree (and, when extensions are enabled, each
// extension's tree) is the only expensive step of a stackbundle run. The
// [Cache] interface lets [deps.CachedResolver] keep those trees in a local
// directory ([FileCache]), a shared Redis instance ([RedisCache]) or
// nowhere at all ([NullCache]).
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand; [ScopedKeyer] prefixes every key for multi-tenant setups.
//
// [deps.CachedResolver]: github.com/matzehuels/stackbundle/pkg/deps.CachedResolver
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLTree is the default lifetime of a cached dependency tree. Released
// artifacts never change, but SNAPSHOT versions and repository lists do.
const TTLTree = 24 * time.Hour
