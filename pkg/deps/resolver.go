package deps

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/stackbundle/pkg/cache"
)

// TreeResolver resolves an artifact and all of its transitive dependencies
// into a tree. It is the seam to the external artifact resolver: stackbundle
// never downloads anything itself.
type TreeResolver interface {
	ResolveTree(ctx context.Context, id Identity) (*Node, error)
}

// ResolverFunc adapts a function to [TreeResolver].
type ResolverFunc func(ctx context.Context, id Identity) (*Node, error)

// ResolveTree calls f.
func (f ResolverFunc) ResolveTree(ctx context.Context, id Identity) (*Node, error) {
	return f(ctx, id)
}

// CachedResolver wraps a [TreeResolver] with a [cache.Cache]. Trees are
// stored JSON-encoded under [cache.Keyer.TreeKey]; failures of the inner
// resolver marked [cache.Retryable] are retried with backoff.
//
// Cache read and write failures never fail a resolution; they only cost a
// call to the inner resolver.
type CachedResolver struct {
	Inner        TreeResolver
	Cache        cache.Cache
	Keyer        cache.Keyer
	TTL          time.Duration
	Repositories []string // part of the cache key only
	Refresh      bool     // skip cache reads, still write
}

// NewCachedResolver returns a CachedResolver with default keyer and TTL.
// A nil cache disables caching.
func NewCachedResolver(inner TreeResolver, c cache.Cache, repositories []string) *CachedResolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &CachedResolver{
		Inner:        inner,
		Cache:        c,
		Keyer:        cache.NewDefaultKeyer(),
		TTL:          cache.TTLTree,
		Repositories: repositories,
	}
}

// ResolveTree returns the cached tree for id or resolves and caches it.
func (r *CachedResolver) ResolveTree(ctx context.Context, id Identity) (*Node, error) {
	key := r.Keyer.TreeKey(id.String(), r.Repositories)

	if !r.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var tree Node
			if err := json.Unmarshal(data, &tree); err == nil {
				return &tree, nil
			}
			// undecodable entry, fall through to re-resolve
		}
	}

	var tree *Node
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		tree, err = r.Inner.ResolveTree(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tree); err == nil {
		_ = r.Cache.Set(ctx, key, data, r.TTL)
	}
	return tree, nil
}

var _ TreeResolver = (*CachedResolver)(nil)
