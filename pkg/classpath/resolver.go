package classpath

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/observability"
)

// Resolver classifies dependency trees with a fixed set of patterns.
type Resolver struct {
	patterns Patterns
	opts     Options
}

// New returns a Resolver for the given patterns.
func New(patterns Patterns, opts Options) *Resolver {
	return &Resolver{patterns: patterns, opts: opts.WithDefaults()}
}

// Patterns returns the patterns the resolver compiles on every run.
func (r *Resolver) Patterns() Patterns { return r.patterns }

// Resolve classifies the children of root, then folds every extension tree
// in as a shared dependency, and returns the deduplicated result.
//
// Only a side-archive write failure aborts the run. Package listing and
// side-archive read failures are logged and the node contributes nothing
// for that operation.
func (r *Resolver) Resolve(ctx context.Context, root *deps.Node, extensions ...*deps.Node) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeTreeResolution, "no dependency tree for module %q", r.opts.ModuleID)
	}

	start := time.Now()
	hooks := r.opts.hooks()
	hooks.OnResolveStart(ctx, r.opts.ModuleID, root.Count())

	ru := &run{
		ctx:     ctx,
		opts:    r.opts,
		filters: r.patterns.Compile(),
		state:   newState(r.opts),
		logger:  r.opts.Logger,
		hooks:   hooks,
	}

	err := ru.walk(root, extensions)
	if err == nil {
		ru.finish()
	}
	hooks.OnResolveComplete(ctx, r.opts.ModuleID, ru.state.Counts(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return ru.state, nil
}

// run is the mutable state of a single Resolve call.
type run struct {
	ctx     context.Context
	opts    Options
	filters Filters
	state   *State
	logger  *log.Logger
	hooks   observability.ResolutionHooks
}

func (r *run) walk(root *deps.Node, extensions []*deps.Node) error {
	for _, child := range root.Children {
		if err := r.classify(child); err != nil {
			return err
		}
	}
	for _, ext := range extensions {
		if ext == nil {
			continue
		}
		r.logger.Debug("folding extension tree", "extension", ext.ID)
		if err := r.share(ext); err != nil {
			return err
		}
	}
	return nil
}

// classify applies the exclude-package, exclude-optional, share and
// non-shared rules in that order.
func (r *run) classify(n *deps.Node) error {
	switch {
	case r.filters.ExcludePackage.Matches(n):
		r.logger.Debug("excluding dependency", "node", n.ID)
		r.exclude(n, true)
		return nil
	case r.filters.ExcludeOptional.Matches(n):
		r.optional(n)
		return nil
	case r.filters.Share.Matches(n) || r.filters.RequireBundle.Matches(n):
		return r.share(n)
	default:
		r.add(&r.state.NonShared, n, BucketNonShared)
		for _, c := range n.Children {
			if err := r.classify(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// optional classifies n and then, in one flat pass, every descendant not
// matched by the exclude-package filter.
func (r *run) optional(n *deps.Node) {
	r.logger.Debug("optional dependency", "node", n.ID)
	r.indexPackages(n)
	r.add(&r.state.Optional, n, BucketOptional)

	for _, d := range n.Descendants() {
		if r.filters.ExcludePackage.Matches(d) {
			r.exclude(d, false)
			continue
		}
		r.add(&r.state.Optional, d, BucketOptional)
	}
}

// share classifies n as shared, flattens its descendants into the shared
// bucket and records the install order.
func (r *run) share(n *deps.Node) error {
	r.logger.Debug("shared dependency", "node", n.ID)
	r.add(&r.state.Shared, n, BucketShared)
	r.indexPackages(n)
	r.requireBundle(n)

	if r.opts.IncludeSharedResources {
		if err := r.rebundle(n); err != nil {
			return err
		}
	}

	for _, d := range n.Descendants() {
		if r.filters.ExcludePackage.Matches(d) || r.filters.ExcludeOptional.Matches(d) {
			r.exclude(d, false)
			continue
		}
		r.add(&r.state.Shared, d, BucketShared)
	}

	r.addInstall(n)
	return nil
}

// addInstall appends n after its filtered children. Only bundles are
// descended into; plain jars are installed as they are.
func (r *run) addInstall(n *deps.Node) {
	if n.Bundle {
		for _, c := range n.Children {
			if r.filters.ExcludePackage.Matches(c) || r.filters.ExcludeOptional.Matches(c) {
				continue
			}
			r.addInstall(c)
		}
	}
	r.state.Install = append(r.state.Install, n)
}

func (r *run) add(list *[]*deps.Node, n *deps.Node, b Bucket) {
	*list = append(*list, n)
	r.state.mark(n, b)
	r.hooks.OnNodeClassified(r.ctx, string(b))
}

// exclude records n as dropped. With subtree set, every node below n is
// marked excluded too.
func (r *run) exclude(n *deps.Node, subtree bool) {
	r.state.Excluded = append(r.state.Excluded, n)
	r.hooks.OnNodeClassified(r.ctx, string(BucketExcluded))
	if !subtree {
		r.state.mark(n, BucketExcluded)
		return
	}
	n.Walk(func(d *deps.Node) bool {
		r.state.mark(d, BucketExcluded)
		return true
	})
}

// indexPackages records n as owner of every package it provides that has
// no owner yet.
func (r *run) indexPackages(n *deps.Node) {
	pkgs, err := n.Packages()
	if err != nil {
		r.logger.Warn("cannot list packages", "node", n.ID, "err", err)
		return
	}
	for _, p := range pkgs {
		if _, ok := r.state.PackagesByOwner[p]; !ok {
			r.state.PackagesByOwner[p] = n
		}
	}
}

// embed adds a classpath segment backed by location. The first segment
// added to an empty classpath is preceded by ".".
func (r *run) embed(segment, location string) bool {
	if contains(r.state.BundleClassPath, segment) {
		return false
	}
	if len(r.state.BundleClassPath) == 0 {
		r.state.BundleClassPath = append(r.state.BundleClassPath, ".")
	}
	r.state.BundleClassPath = append(r.state.BundleClassPath, segment)
	r.state.Embedded[segment] = location
	return true
}

// finish deduplicates the buckets, settles cross-bucket conflicts and
// embeds the non-shared libraries.
func (r *run) finish() {
	s := r.state
	s.NonShared = Dedup(s.NonShared)
	s.Shared = Dedup(s.Shared)
	s.Install = Dedup(s.Install)
	s.Optional = Dedup(s.Optional)
	s.Excluded = Dedup(s.Excluded)
	reconcile(s)

	for _, n := range s.NonShared {
		if !n.IsValidLibrary() || n.Location() == "" {
			continue
		}
		if r.embed(n.ID.JarName(), n.Location()) {
			r.logger.Debug("embedding dependency", "node", n.ID, "segment", n.ID.JarName())
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
