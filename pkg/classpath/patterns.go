package classpath

import (
	"strings"

	"github.com/matzehuels/stackbundle/pkg/filter"
	"github.com/matzehuels/stackbundle/pkg/manifest"
)

// Patterns holds the raw pattern strings of the four filters.
type Patterns struct {
	Share           []string `toml:"share" json:"share,omitempty"`
	RequireBundle   []string `toml:"require_bundle" json:"require_bundle,omitempty"`
	ExcludePackage  []string `toml:"exclude_package" json:"exclude_package,omitempty"`
	ExcludeOptional []string `toml:"exclude_optional" json:"exclude_optional,omitempty"`
}

// PatternsFromInstructions reads the four filter headers.
func PatternsFromInstructions(in manifest.Instructions) Patterns {
	return Patterns{
		Share:           union(nil, in.ShareFilter),
		RequireBundle:   union(nil, in.RequireBundleFilter),
		ExcludePackage:  union(nil, in.ExcludePackageFilter),
		ExcludeOptional: union(nil, in.ExcludeOptionalFilter),
	}
}

// Merge returns the per-filter union of p and other. Order is preserved
// and duplicates are dropped.
func (p Patterns) Merge(other Patterns) Patterns {
	return Patterns{
		Share:           union(p.Share, other.Share),
		RequireBundle:   union(p.RequireBundle, other.RequireBundle),
		ExcludePackage:  union(p.ExcludePackage, other.ExcludePackage),
		ExcludeOptional: union(p.ExcludeOptional, other.ExcludeOptional),
	}
}

// Empty reports whether no filter has any pattern.
func (p Patterns) Empty() bool {
	return len(p.Share)+len(p.RequireBundle)+len(p.ExcludePackage)+len(p.ExcludeOptional) == 0
}

// Filters are the compiled form of [Patterns].
type Filters struct {
	Share           filter.Filter
	RequireBundle   filter.Filter
	ExcludePackage  filter.Filter
	ExcludeOptional filter.Filter
}

// Compile compiles all four filters from scratch.
func (p Patterns) Compile() Filters {
	return Filters{
		Share:           filter.CompileList(p.Share),
		RequireBundle:   filter.CompileList(p.RequireBundle),
		ExcludePackage:  filter.CompileList(p.ExcludePackage),
		ExcludeOptional: filter.CompileList(p.ExcludeOptional),
	}
}

func union(a, b []string) []string {
	var out []string
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, entry := range list {
			for _, s := range strings.Fields(entry) {
				if seen[s] {
					continue
				}
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
