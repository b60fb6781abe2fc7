package classpath

import (
	"sort"

	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/manifest"
	"github.com/matzehuels/stackbundle/pkg/versionrange"
)

// requireBundle appends a Require-Bundle clause for a shared node matched
// by the require-bundle filter.
func (r *run) requireBundle(n *deps.Node) {
	if !r.filters.RequireBundle.Matches(n) {
		return
	}
	name := manifest.SymbolicName(n.Headers)
	if name == "" {
		name = n.ID.SymbolicName()
	}
	version := n.Header("Bundle-Version")
	if version == "" {
		version = n.ID.Version
	}
	c := manifest.Clause{Names: []string{name}}
	if version != "" {
		c.Params = append(c.Params, manifest.Param{
			Key:   "bundle-version",
			Value: versionrange.ToRange(version, r.opts.VersionDigits),
		})
	}
	r.state.RequireBundle = MergeClauses(r.state.RequireBundle, []string{c.String()})
}

// exportsAsImports converts the Export-Package header of n into
// Import-Package clauses: package name plus a version range, directives
// and other attributes dropped.
func exportsAsImports(n *deps.Node, digits int) []string {
	var out []string
	for _, c := range manifest.ParseHeader(n.Header(manifest.KeyExportPackage)) {
		version, _ := c.Attr("version")
		for _, name := range c.Names {
			imp := manifest.Clause{Names: []string{name}}
			if version != "" {
				imp.Params = []manifest.Param{{Key: "version", Value: versionrange.ToRange(version, digits)}}
			}
			out = append(out, imp.String())
		}
	}
	return out
}

// ImportClauses builds Import-Package clauses for every indexed package
// whose owner ended up shared or optional. The version is the owner's
// exported package version when it declares one, its artifact version
// otherwise. Packages of optional owners are imported with
// resolution:=optional. The result is sorted by package name.
func ImportClauses(s *State, digits int) []string {
	shared := identities(s.Shared)
	optional := identities(s.Optional)

	pkgs := make([]string, 0, len(s.PackagesByOwner))
	for p := range s.PackagesByOwner {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)

	var out []string
	for _, p := range pkgs {
		owner := s.PackagesByOwner[p]
		isShared, isOptional := shared[owner.ID], optional[owner.ID]
		if !isShared && !isOptional {
			continue
		}
		c := manifest.Clause{Names: []string{p}}
		if v := exportedVersion(owner, p); v != "" {
			c.Params = append(c.Params, manifest.Param{Key: "version", Value: versionrange.ToRange(v, digits)})
		}
		if !isShared {
			c.Params = append(c.Params, manifest.Param{Key: "resolution", Value: "optional", Directive: true})
		}
		out = append(out, c.String())
	}
	return out
}

func exportedVersion(owner *deps.Node, pkg string) string {
	for _, c := range manifest.ParseHeader(owner.Header(manifest.KeyExportPackage)) {
		for _, name := range c.Names {
			if name != pkg {
				continue
			}
			if v, ok := c.Attr("version"); ok {
				return v
			}
		}
	}
	return owner.ID.Version
}

// MergeClauses appends every clause of add whose first name is not yet
// present in dst.
func MergeClauses(dst, add []string) []string {
	names := make(map[string]bool, len(dst))
	for _, c := range dst {
		names[clauseName(c)] = true
	}
	for _, c := range add {
		name := clauseName(c)
		if names[name] {
			continue
		}
		names[name] = true
		dst = append(dst, c)
	}
	return dst
}

func clauseName(c string) string {
	parsed := manifest.ParseClause(c)
	if len(parsed.Names) == 0 {
		return c
	}
	return parsed.Names[0]
}
