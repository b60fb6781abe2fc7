package extension

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/classpath"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/observability"
)

// Skip reasons reported to hooks and logs.
const (
	SkipDuplicate     = "duplicate"
	SkipUnknown       = "unknown extension"
	SkipOtherModule   = "extends another module"
	SkipNoDependency  = "no dependency"
	SkipResolveFailed = "resolve failed"
)

// Merger applies enabled extensions.
type Merger struct {
	Registry *Registry
	Resolver deps.TreeResolver
	Logger   *log.Logger
	Hooks    observability.ExtensionHooks
}

// Merged is the result of [Merger.Merge].
type Merged struct {
	// Applied lists the ids of successfully applied extensions in
	// enabling order.
	Applied []string
	// Patterns is the module's patterns unioned with every applied
	// extension's patterns.
	Patterns classpath.Patterns
	// Trees holds the resolved tree of each applied extension, parallel
	// to Applied.
	Trees []*deps.Node
}

// AppliedHeader returns the applied ids joined by single spaces.
func (m *Merged) AppliedHeader() string {
	return strings.Join(m.Applied, " ")
}

// Merge resolves every enabled extension for moduleID and unions its
// patterns into base. Only context cancellation is returned as an error.
func (m *Merger) Merge(ctx context.Context, moduleID string, base classpath.Patterns, enabled []string) (*Merged, error) {
	logger := m.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := m.Hooks
	if hooks == nil {
		hooks = observability.Extension()
	}

	out := &Merged{Patterns: base}
	seen := make(map[string]bool, len(enabled))
	skip := func(id, reason string, keyvals ...any) {
		logger.Warn("skipping extension", append([]any{"extension", id, "reason", reason}, keyvals...)...)
		hooks.OnExtensionSkipped(ctx, id, reason)
	}

	for _, id := range enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if seen[id] {
			skip(id, SkipDuplicate)
			continue
		}
		seen[id] = true

		d, ok := m.Registry.Lookup(id)
		if !ok {
			skip(id, SkipUnknown)
			continue
		}
		if d.Extends != "" && d.Extends != moduleID {
			skip(id, SkipOtherModule, "extends", d.Extends)
			continue
		}
		if d.Dependency == nil {
			skip(id, SkipNoDependency)
			continue
		}
		if m.Resolver == nil {
			skip(id, SkipResolveFailed, "err", "no resolver configured")
			continue
		}

		tree, err := m.Resolver.ResolveTree(ctx, *d.Dependency)
		if err != nil || tree == nil {
			skip(id, SkipResolveFailed, "dependency", d.Dependency, "err", err)
			continue
		}

		out.Patterns = out.Patterns.Merge(d.Patterns)
		out.Applied = append(out.Applied, id)
		out.Trees = append(out.Trees, tree)
		hooks.OnExtensionApplied(ctx, id)
		logger.Info("applied extension", "extension", id, "dependency", d.Dependency, "nodes", tree.Count())
	}
	return out, nil
}
