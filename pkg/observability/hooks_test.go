package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolutionHooks{}
	r.OnResolveStart(ctx, "my-module", 12)
	r.OnNodeClassified(ctx, "shared")
	r.OnRebundle(ctx, "org.example:lib:1.0", 3)
	r.OnResolveComplete(ctx, "my-module", BucketCounts{Shared: 1}, time.Second, nil)

	e := NoopExtensionHooks{}
	e.OnExtensionApplied(ctx, "ext-a")
	e.OnExtensionSkipped(ctx, "ext-b", "unknown")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "file")
	c.OnCacheMiss(ctx, "redis")
	c.OnCacheSet(ctx, "file", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Resolution() should return NoopResolutionHooks by default")
	}
	if _, ok := Extension().(NoopExtensionHooks); !ok {
		t.Error("Extension() should return NoopExtensionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customResolution := &testResolutionHooks{}
	SetResolutionHooks(customResolution)
	if Resolution() != customResolution {
		t.Error("SetResolutionHooks should set custom hooks")
	}

	customExtension := &testExtensionHooks{}
	SetExtensionHooks(customExtension)
	if Extension() != customExtension {
		t.Error("SetExtensionHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Reset() should restore NoopResolutionHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolutionHooks{}
	SetResolutionHooks(custom)

	// Setting nil should be ignored
	SetResolutionHooks(nil)
	SetExtensionHooks(nil)
	SetCacheHooks(nil)

	if Resolution() != custom {
		t.Error("SetResolutionHooks(nil) should be ignored")
	}
	if _, ok := Extension().(NoopExtensionHooks); !ok {
		t.Error("SetExtensionHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testResolutionHooks struct{ NoopResolutionHooks }
type testExtensionHooks struct{ NoopExtensionHooks }
type testCacheHooks struct{ NoopCacheHooks }
