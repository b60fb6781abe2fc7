package classpath

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbundle/pkg/archive"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/observability"
)

func TestResolve_NonSharedRecursesIntoChildren(t *testing.T) {
	grandchild := n("org.example:c:1.0")
	child := n("org.example:b:1.0", grandchild)
	tree := root(child)

	s := resolve(t, Patterns{}, quietOptions(), tree)

	assert.Equal(t, []string{"org.example:b:1.0", "org.example:c:1.0"}, coords(s.NonShared))
	assert.Empty(t, s.Shared)
	assert.Empty(t, s.Optional)
	assert.Empty(t, s.Install)
	assert.Equal(t, BucketNone, s.BucketOf(tree), "root is never classified")
	assert.Equal(t, BucketNonShared, s.BucketOf(grandchild))
}

func TestResolve_NonSharedChildrenAreReclassified(t *testing.T) {
	shared := n("org.slf4j:slf4j-api:2.0.9")
	tree := root(n("org.example:b:1.0", shared))

	s := resolve(t, Patterns{Share: []string{"org.slf4j"}}, quietOptions(), tree)

	assert.Equal(t, []string{"org.example:b:1.0"}, coords(s.NonShared))
	assert.Equal(t, []string{"org.slf4j:slf4j-api:2.0.9"}, coords(s.Shared))
}

func TestResolve_SharedSkipsExcludedDescendants(t *testing.T) {
	kept := n("org.shared:kept:1.0")
	dropped := n("org.bad:dropped:1.0")
	tree := root(n("org.shared:lib:1.0", kept, dropped))

	s := resolve(t, Patterns{
		Share:          []string{"org.shared"},
		ExcludePackage: []string{"org.bad"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.shared:lib:1.0", "org.shared:kept:1.0"}, coords(s.Shared))
	assert.Empty(t, s.NonShared)
	assert.Empty(t, s.Optional)
	assert.Equal(t, []string{"org.shared:lib:1.0"}, coords(s.Install))
	assert.Equal(t, BucketExcluded, s.BucketOf(dropped))
}

func TestResolve_SharedFlattensWithoutReclassifying(t *testing.T) {
	// descendants of a shared node are shared even if no filter matches
	// them, and exclude-optional matches are skipped rather than made
	// optional
	deep := n("org.other:deep:1.0")
	opt := n("org.opt:skipped:1.0")
	tree := root(n("org.shared:lib:1.0", n("org.other:mid:1.0", deep), opt))

	s := resolve(t, Patterns{
		Share:           []string{"org.shared"},
		ExcludeOptional: []string{"org.opt"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.shared:lib:1.0", "org.other:mid:1.0", "org.other:deep:1.0"}, coords(s.Shared))
	assert.Empty(t, s.Optional)
	assert.Equal(t, BucketExcluded, s.BucketOf(opt))
}

func TestResolve_SharedDuplicatesKeepFirstOccurrence(t *testing.T) {
	tree := root(
		n("org.shared:a:1.0", n("org.common:util:2.0")),
		n("org.shared:b:1.0", n("org.common:util:2.0")),
	)

	s := resolve(t, Patterns{Share: []string{"org.shared", "org.common"}}, quietOptions(), tree)

	assert.Equal(t, []string{
		"org.shared:a:1.0",
		"org.common:util:2.0",
		"org.shared:b:1.0",
	}, coords(s.Shared))
}

func TestResolve_OptionalSkipsExcludedGrandchild(t *testing.T) {
	grandchild := n("org.bad:gc:1.0")
	child := n("org.opt:child:1.0", grandchild)
	tree := root(n("org.opt:lib:1.0", child))

	s := resolve(t, Patterns{
		ExcludeOptional: []string{"org.opt:lib"},
		ExcludePackage:  []string{"org.bad"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.opt:lib:1.0", "org.opt:child:1.0"}, coords(s.Optional))
	assert.Empty(t, s.Shared)
	assert.Empty(t, s.NonShared)
	assert.Equal(t, BucketExcluded, s.BucketOf(grandchild))
}

func TestResolve_OptionalFlatPassIgnoresShareFilter(t *testing.T) {
	tree := root(n("org.opt:lib:1.0", n("org.shared:x:1.0")))

	s := resolve(t, Patterns{
		ExcludeOptional: []string{"org.opt"},
		Share:           []string{"org.shared"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.opt:lib:1.0", "org.shared:x:1.0"}, coords(s.Optional))
	assert.Empty(t, s.Shared)
}

func TestResolve_ExcludeBeatsShare(t *testing.T) {
	sub := n("org.x:sub:1.0")
	node := n("org.x:lib:1.0", sub)
	tree := root(node)

	s := resolve(t, Patterns{
		Share:           []string{"org.x"},
		RequireBundle:   []string{"org.x"},
		ExcludeOptional: []string{"org.x"},
		ExcludePackage:  []string{"org.x:lib"},
	}, quietOptions(), tree)

	assert.Empty(t, s.Shared)
	assert.Empty(t, s.Optional)
	assert.Empty(t, s.NonShared)
	assert.Equal(t, []string{"org.x:lib:1.0"}, coords(s.Excluded))
	assert.Equal(t, BucketExcluded, s.BucketOf(node))
	assert.Equal(t, BucketExcluded, s.BucketOf(sub), "subtree of an excluded node is dropped")
}

func TestResolve_ExcludeOptionalBeatsShare(t *testing.T) {
	tree := root(n("org.x:lib:1.0"))

	s := resolve(t, Patterns{
		Share:           []string{"org.x"},
		ExcludeOptional: []string{"org.x"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.x:lib:1.0"}, coords(s.Optional))
	assert.Empty(t, s.Shared)
}

func TestResolve_EmptyFiltersMatchNothing(t *testing.T) {
	tree := root(n("org.a:a:1.0", n("org.b:b:1.0")), n("org.c:c:1.0"))

	s := resolve(t, Patterns{
		Share:           []string{},
		RequireBundle:   nil,
		ExcludePackage:  []string{""},
		ExcludeOptional: nil,
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.a:a:1.0", "org.b:b:1.0", "org.c:c:1.0"}, coords(s.NonShared))
	assert.Empty(t, s.Excluded)
	assert.Empty(t, s.Optional)
	assert.Empty(t, s.Shared)
}

func TestResolve_RequireBundleFilterShares(t *testing.T) {
	node := bundle("org.rb:lib:1.2.3")
	node.Headers = map[string]string{"Bundle-SymbolicName": "org.rb.lib;singleton:=true"}
	plain := n("org.rb:plain:4.5.6")
	tree := root(node, plain)

	opts := quietOptions()
	opts.ExistingRequireBundle = []string{`org.rb.lib;bundle-version="[1.0,2.0)"`}
	s := resolve(t, Patterns{RequireBundle: []string{"org.rb"}}, opts, tree)

	assert.Equal(t, []string{"org.rb:lib:1.2.3", "org.rb:plain:4.5.6"}, coords(s.Shared))
	assert.Equal(t, []string{
		`org.rb.lib;bundle-version="[1.0,2.0)"`,
		`org.rb.plain;bundle-version="[4.5.6,4.6.0)"`,
	}, s.RequireBundle, "existing clauses are kept, new names appended once")
}

func TestResolve_ShareFilterAloneAddsNoRequireBundle(t *testing.T) {
	s := resolve(t, Patterns{Share: []string{"org.a"}}, quietOptions(), root(n("org.a:a:1.0")))
	assert.Empty(t, s.RequireBundle)
}

func TestResolve_InstallOrder(t *testing.T) {
	// bundles are descended into (children first); plain jars are opaque
	leaf := n("org.dep:leaf:1.0")
	inner := bundle("org.dep:inner:1.0", leaf)
	skipped := n("org.opt:skip:1.0")
	jarChild := n("org.dep:jar-child:1.0")
	plain := n("org.dep:plain:1.0", jarChild)
	top := bundle("org.shared:top:1.0", inner, skipped, plain)

	s := resolve(t, Patterns{
		Share:           []string{"org.shared"},
		ExcludeOptional: []string{"org.opt"},
	}, quietOptions(), root(top))

	assert.Equal(t, []string{
		"org.dep:leaf:1.0",
		"org.dep:inner:1.0",
		"org.dep:plain:1.0",
		"org.shared:top:1.0",
	}, coords(s.Install))
}

func TestResolve_InstallDeduplicated(t *testing.T) {
	common := n("org.dep:common:1.0")
	tree := root(
		bundle("org.shared:a:1.0", common),
		bundle("org.shared:b:1.0", n("org.dep:common:1.0")),
	)

	s := resolve(t, Patterns{Share: []string{"org.shared"}}, quietOptions(), tree)

	assert.Equal(t, []string{"org.dep:common:1.0", "org.shared:a:1.0", "org.shared:b:1.0"}, coords(s.Install))
}

func TestResolve_PackagesByOwner(t *testing.T) {
	first := withPackages(n("org.shared:a:1.0"), "org.a", "org.common")
	second := withPackages(n("org.shared:b:1.0"), "org.b", "org.common")
	desc := withPackages(n("org.shared:desc:1.0"), "org.desc")
	first.Children = []*deps.Node{desc}
	opt := withPackages(n("org.opt:o:1.0"), "org.o")
	non := withPackages(n("org.non:n:1.0"), "org.n")

	s := resolve(t, Patterns{
		Share:           []string{"org.shared"},
		ExcludeOptional: []string{"org.opt"},
	}, quietOptions(), root(first, second, opt, non))

	assert.Same(t, first, s.PackagesByOwner["org.a"])
	assert.Same(t, first, s.PackagesByOwner["org.common"], "first writer wins")
	assert.Same(t, second, s.PackagesByOwner["org.b"])
	assert.Same(t, opt, s.PackagesByOwner["org.o"])
	assert.NotContains(t, s.PackagesByOwner, "org.desc", "flattened descendants are not indexed")
	assert.NotContains(t, s.PackagesByOwner, "org.n", "non-shared nodes are not indexed")
}

func TestResolve_PackageListingFailureIsNodeLocal(t *testing.T) {
	dir := t.TempDir()
	broken := n("org.shared:broken:1.0")
	broken.Provides = nil
	broken.File = filepath.Join(dir, "broken.jar")
	require.NoError(t, os.WriteFile(broken.File, []byte("not a jar"), 0644))
	ok := withPackages(n("org.shared:ok:1.0"), "org.ok")

	s := resolve(t, Patterns{Share: []string{"org.shared"}}, quietOptions(), root(broken, ok))

	assert.Equal(t, []string{"org.shared:broken:1.0", "org.shared:ok:1.0"}, coords(s.Shared))
	assert.Len(t, s.PackagesByOwner, 1)
	assert.Same(t, ok, s.PackagesByOwner["org.ok"])
}

func TestResolve_PackagesFromJar(t *testing.T) {
	dir := t.TempDir()
	lib := n("org.shared:lib:1.0")
	lib.Provides = nil
	withJar(t, dir, lib, archive.File{Name: "org/shared/api/Api.class"})

	s := resolve(t, Patterns{Share: []string{"org.shared"}}, quietOptions(), root(lib))

	assert.Same(t, lib, s.PackagesByOwner["org.shared.api"])
}

func TestResolve_EmbedsValidNonSharedLibraries(t *testing.T) {
	dir := t.TempDir()
	a := withJar(t, dir, n("org.a:a:1.0"))
	b := withJar(t, dir, n("org.b:b:1.0"))
	dup := withJar(t, dir, n("org.a:a:1.0"))
	pom := n("org.p:parent:pom:1.0")
	pom.File = a.File
	missing := n("org.m:missing:1.0")
	missing.File = filepath.Join(dir, "does-not-exist.jar")

	s := resolve(t, Patterns{}, quietOptions(), root(a, pom, missing, b, dup))

	assert.Equal(t, []string{".", "org.a.a.jar", "org.b.b.jar"}, s.BundleClassPath)
	assert.Equal(t, map[string]string{
		"org.a.a.jar": a.File,
		"org.b.b.jar": b.File,
	}, s.Embedded)
}

func TestResolve_DotPrefixAddedOnce(t *testing.T) {
	dir := t.TempDir()
	a := withJar(t, dir, n("org.a:a:1.0"))

	t.Run("empty classpath", func(t *testing.T) {
		s := resolve(t, Patterns{}, quietOptions(), root(a))
		assert.Equal(t, []string{".", "org.a.a.jar"}, s.BundleClassPath)
	})

	t.Run("existing classpath", func(t *testing.T) {
		opts := quietOptions()
		opts.ExistingClassPath = []string{".", "lib/own.jar"}
		s := resolve(t, Patterns{}, opts, root(a))
		assert.Equal(t, []string{".", "lib/own.jar", "org.a.a.jar"}, s.BundleClassPath)
	})

	t.Run("segment already present", func(t *testing.T) {
		opts := quietOptions()
		opts.ExistingClassPath = []string{"org.a.a.jar"}
		s := resolve(t, Patterns{}, opts, root(a))
		assert.Equal(t, []string{"org.a.a.jar"}, s.BundleClassPath)
		assert.Empty(t, s.Embedded)
	})

	t.Run("nothing to embed", func(t *testing.T) {
		s := resolve(t, Patterns{}, quietOptions(), root(n("org.x:x:1.0")))
		assert.Empty(t, s.BundleClassPath)
	})
}

func TestResolve_ExtensionsAreShared(t *testing.T) {
	ext := bundle("org.ext:feature:1.0", n("org.ext:dep:1.0"), n("org.bad:x:1.0"))
	tree := root(n("org.a:a:1.0"))

	s := resolve(t, Patterns{ExcludePackage: []string{"org.bad", "org.ext:feature"}}, quietOptions(), tree, ext, nil)

	assert.Equal(t, []string{"org.a:a:1.0"}, coords(s.NonShared))
	assert.Equal(t, []string{"org.ext:feature:1.0", "org.ext:dep:1.0"}, coords(s.Shared))
	assert.Equal(t, []string{"org.ext:dep:1.0", "org.ext:feature:1.0"}, coords(s.Install))
}

func TestResolve_CrossBucketConflicts(t *testing.T) {
	// the same artifact reached as non-shared, optional and shared
	tree := root(
		n("org.a:a:1.0", n("org.common:c:1.0")),
		n("org.opt:o:1.0", n("org.common:c:1.0"), n("org.common:d:1.0")),
		n("org.shared:s:1.0", n("org.common:c:1.0")),
		n("org.b:b:1.0", n("org.common:d:1.0")),
	)

	s := resolve(t, Patterns{
		Share:           []string{"org.shared"},
		ExcludeOptional: []string{"org.opt"},
	}, quietOptions(), tree)

	assert.Equal(t, []string{"org.shared:s:1.0", "org.common:c:1.0"}, coords(s.Shared))
	assert.Equal(t, []string{"org.opt:o:1.0", "org.common:d:1.0"}, coords(s.Optional))
	assert.Equal(t, []string{"org.a:a:1.0", "org.b:b:1.0"}, coords(s.NonShared))
}

func TestResolve_PartitionIsTotalAndDisjoint(t *testing.T) {
	tree := root(
		n("org.a:a:1.0", n("org.x:x:1.0", n("org.shared:deep:1.0", n("org.y:y:1.0")))),
		n("org.opt:o:1.0", n("org.bad:b:1.0", n("org.z:z:1.0"))),
		bundle("org.shared:s:1.0", n("org.opt:o2:1.0"), n("org.x:x:1.0")),
		n("org.bad:top:1.0", n("org.q:q:1.0")),
	)
	s := resolve(t, Patterns{
		Share:           []string{"org.shared"},
		ExcludeOptional: []string{"org.opt"},
		ExcludePackage:  []string{"org.bad"},
	}, quietOptions(), tree)

	for _, node := range tree.Descendants() {
		b := s.BucketOf(node)
		require.NotEqual(t, BucketNone, b, "node %s unclassified", node.ID)

		in := map[Bucket]bool{
			BucketShared:    identities(s.Shared)[node.ID],
			BucketNonShared: identities(s.NonShared)[node.ID],
			BucketOptional:  identities(s.Optional)[node.ID],
		}
		found := 0
		for bucket, ok := range in {
			if ok {
				found++
				assert.Equal(t, bucket, b, "node %s", node.ID)
			}
		}
		assert.LessOrEqual(t, found, 1, "node %s appears in %d buckets", node.ID, found)
		if found == 0 {
			assert.Equal(t, BucketExcluded, b, "node %s", node.ID)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	r := New(Patterns{}, quietOptions())

	_, err := r.Resolve(context.Background(), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeTreeResolution))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, root())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_ConcurrentRuns(t *testing.T) {
	r := New(Patterns{Share: []string{"org.shared"}}, quietOptions())

	var wg sync.WaitGroup
	results := make([]*State, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tree := root(n("org.shared:s:1.0", n("org.dep:d:1.0")), n("org.a:a:1.0"))
			s, err := r.Resolve(context.Background(), tree)
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		require.NotNil(t, s)
		assert.Equal(t, []string{"org.shared:s:1.0", "org.dep:d:1.0"}, coords(s.Shared))
		assert.Equal(t, []string{"org.a:a:1.0"}, coords(s.NonShared))
	}
}

type recordingHooks struct {
	observability.NoopResolutionHooks
	mu         sync.Mutex
	classified map[string]int
	counts     observability.BucketCounts
	started    int
}

func (h *recordingHooks) OnResolveStart(context.Context, string, int) { h.started++ }

func (h *recordingHooks) OnNodeClassified(_ context.Context, bucket string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.classified[bucket]++
}

func (h *recordingHooks) OnResolveComplete(_ context.Context, _ string, c observability.BucketCounts, _ time.Duration, _ error) {
	h.counts = c
}

func TestResolve_Hooks(t *testing.T) {
	hooks := &recordingHooks{classified: map[string]int{}}
	opts := quietOptions()
	opts.Hooks = hooks

	tree := root(
		n("org.shared:s:1.0", n("org.dep:d:1.0")),
		n("org.a:a:1.0"),
		n("org.a:a:1.0"),
		n("org.bad:b:1.0"),
	)
	resolve(t, Patterns{Share: []string{"org.shared"}, ExcludePackage: []string{"org.bad"}}, opts, tree)

	assert.Equal(t, 1, hooks.started)
	assert.Equal(t, map[string]int{"shared": 2, "nonshared": 2, "excluded": 1}, hooks.classified)
	assert.Equal(t, observability.BucketCounts{Shared: 2, NonShared: 1, Excluded: 1, Install: 1}, hooks.counts)
}
