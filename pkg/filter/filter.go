// Package filter compiles whitespace-separated coordinate patterns into
// predicates over dependency nodes.
//
// A pattern is up to four colon-separated glob segments matched against
// groupId, artifactId, version and classifier:
//
//	org.slf4j            every artifact of the group
//	*:guava              any group, artifact guava
//	com.acme.*:*:1.*     versions 1.x of every com.acme.* group
//	*:*:*:tests          test-jars
//
// Missing trailing segments are wildcards. Segment globs support *, ?,
// [class] and {alt,ernatives}; a segment that is not a valid glob is
// compared literally. Matching is case-sensitive and anchored per segment.
// A filter matches a node if any of its patterns match; a filter with no
// patterns matches nothing.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/matzehuels/stackbundle/pkg/deps"
)

const segments = 4

// Filter is a compiled pattern list. The zero value matches nothing.
// Filters are immutable and safe for concurrent use.
type Filter struct {
	source   []string
	patterns [][segments]string
}

// Compile tokenizes src on whitespace and compiles each token. It never
// fails.
func Compile(src string) Filter {
	return CompileList(strings.Fields(src))
}

// CompileList compiles a list of pattern strings. Each entry may itself
// hold several whitespace-separated patterns; blank entries are ignored.
func CompileList(patterns []string) Filter {
	var f Filter
	for _, entry := range patterns {
		for _, p := range strings.Fields(entry) {
			f.source = append(f.source, p)
			f.patterns = append(f.patterns, split(p))
		}
	}
	return f
}

// split right-pads with "*" and folds any extra segments into the
// classifier.
func split(pattern string) [segments]string {
	parts := strings.SplitN(pattern, ":", segments)
	var out [segments]string
	for i := range out {
		if i < len(parts) && parts[i] != "" {
			out[i] = parts[i]
		} else {
			out[i] = "*"
		}
	}
	return out
}

// Matches reports whether any pattern matches the node's coordinate.
func (f Filter) Matches(n *deps.Node) bool {
	if n == nil || len(f.patterns) == 0 {
		return false
	}
	return f.matchParts([segments]string{n.ID.GroupID, n.ID.ArtifactID, n.ID.Version, n.ID.Classifier})
}

// MatchCoordinate matches a "groupId:artifactId[:version[:classifier]]"
// string. Missing parts are empty.
func (f Filter) MatchCoordinate(coord string) bool {
	if len(f.patterns) == 0 {
		return false
	}
	var parts [segments]string
	copy(parts[:], strings.SplitN(coord, ":", segments))
	return f.matchParts(parts)
}

func (f Filter) matchParts(parts [segments]string) bool {
	for _, p := range f.patterns {
		if matchAll(p, parts) {
			return true
		}
	}
	return false
}

func matchAll(pattern, parts [segments]string) bool {
	for i := range pattern {
		if !matchSegment(pattern[i], parts[i]) {
			return false
		}
	}
	return true
}

func matchSegment(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[{\\") {
		return pattern == s
	}
	ok, err := doublestar.Match(pattern, s)
	if err != nil {
		return pattern == s
	}
	return ok
}

// Patterns returns the source patterns in order.
func (f Filter) Patterns() []string {
	return append([]string(nil), f.source...)
}

// Empty reports whether the filter has no patterns.
func (f Filter) Empty() bool { return len(f.patterns) == 0 }

// String returns the patterns joined by single spaces.
func (f Filter) String() string { return strings.Join(f.source, " ") }
