// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about resolution runs, extension merges and cache
// operations. The prom subpackage ships a Prometheus-backed implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New()
//	    m.Install()
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolution().OnResolveStart(ctx, moduleID, nodeCount)
//	// ... classify ...
//	observability.Resolution().OnResolveComplete(ctx, moduleID, counts, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolution Hooks
// =============================================================================

// BucketCounts summarises the outcome of one resolution run.
type BucketCounts struct {
	Shared    int
	NonShared int
	Optional  int
	Excluded  int
	Install   int
	Embedded  int
}

// ResolutionHooks receives events from the classpath resolver.
type ResolutionHooks interface {
	// OnResolveStart is called once per run before classification begins.
	OnResolveStart(ctx context.Context, moduleID string, nodeCount int)

	// OnNodeClassified is called for every node occurrence that lands in a
	// bucket ("shared", "nonshared", "optional", "excluded").
	OnNodeClassified(ctx context.Context, bucket string)

	// OnRebundle records a shared-resource side archive with the number of
	// copied entries. Zero-entry scans are reported too.
	OnRebundle(ctx context.Context, artifact string, entries int)

	// OnResolveComplete is called once per run, with the deduplicated counts.
	OnResolveComplete(ctx context.Context, moduleID string, counts BucketCounts, duration time.Duration, err error)
}

// =============================================================================
// Extension Hooks
// =============================================================================

// ExtensionHooks receives events from the extension merger.
type ExtensionHooks interface {
	OnExtensionApplied(ctx context.Context, id string)
	OnExtensionSkipped(ctx context.Context, id, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, backend string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, backend string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolutionHooks is a no-op implementation of ResolutionHooks.
type NoopResolutionHooks struct{}

func (NoopResolutionHooks) OnResolveStart(context.Context, string, int) {}
func (NoopResolutionHooks) OnNodeClassified(context.Context, string)    {}
func (NoopResolutionHooks) OnRebundle(context.Context, string, int)     {}
func (NoopResolutionHooks) OnResolveComplete(context.Context, string, BucketCounts, time.Duration, error) {
}

// NoopExtensionHooks is a no-op implementation of ExtensionHooks.
type NoopExtensionHooks struct{}

func (NoopExtensionHooks) OnExtensionApplied(context.Context, string)         {}
func (NoopExtensionHooks) OnExtensionSkipped(context.Context, string, string) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolutionHooks ResolutionHooks = NoopResolutionHooks{}
	extensionHooks  ExtensionHooks  = NoopExtensionHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	hooksMu         sync.RWMutex
)

// SetResolutionHooks registers custom resolution hooks.
// This should be called once at application startup before any resolution runs.
func SetResolutionHooks(h ResolutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolutionHooks = h
	}
}

// SetExtensionHooks registers custom extension hooks.
func SetExtensionHooks(h ExtensionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		extensionHooks = h
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

// Resolution returns the registered resolution hooks.
func Resolution() ResolutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolutionHooks
}

// Extension returns the registered extension hooks.
func Extension() ExtensionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return extensionHooks
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
	resolutionHooks = NoopResolutionHooks{}
	extensionHooks = NoopExtensionHooks{}
	cacheHooks = NoopCacheHooks{}
}
