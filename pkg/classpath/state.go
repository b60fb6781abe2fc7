package classpath

import (
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/observability"
)

// Bucket names the classification of a node.
type Bucket string

const (
	BucketNone      Bucket = ""
	BucketShared    Bucket = "shared"
	BucketNonShared Bucket = "nonshared"
	BucketOptional  Bucket = "optional"
	BucketExcluded  Bucket = "excluded"
)

// State is the outcome of one resolution run. It is owned by the caller
// once Resolve returns.
type State struct {
	// PackagesByOwner maps a Java package to the first classified node
	// that provides it.
	PackagesByOwner map[string]*deps.Node

	Shared    []*deps.Node
	NonShared []*deps.Node
	Optional  []*deps.Node
	Install   []*deps.Node
	// Excluded lists nodes dropped by the exclude filters. Identities that
	// ended up in another bucket are not listed.
	Excluded []*deps.Node

	BundleClassPath []string
	RequireBundle   []string
	ImportPackage   []string

	// Embedded maps a classpath segment to the file or URL to embed under
	// that name.
	Embedded map[string]string

	buckets map[*deps.Node]Bucket
}

func newState(opts Options) *State {
	return &State{
		PackagesByOwner: make(map[string]*deps.Node),
		BundleClassPath: append([]string(nil), opts.ExistingClassPath...),
		RequireBundle:   append([]string(nil), opts.ExistingRequireBundle...),
		ImportPackage:   append([]string(nil), opts.ExistingImports...),
		Embedded:        make(map[string]string),
		buckets:         make(map[*deps.Node]Bucket),
	}
}

// BucketOf returns how the walk classified this node occurrence. Nodes the
// walk never reached (the root, or nodes not in the tree) report
// BucketNone.
func (s *State) BucketOf(n *deps.Node) Bucket {
	return s.buckets[n]
}

// Counts returns the sizes of the deduplicated buckets.
func (s *State) Counts() observability.BucketCounts {
	return observability.BucketCounts{
		Shared:    len(s.Shared),
		NonShared: len(s.NonShared),
		Optional:  len(s.Optional),
		Excluded:  len(s.Excluded),
		Install:   len(s.Install),
		Embedded:  len(s.Embedded),
	}
}

// mark records the first bucket seen for a node occurrence.
func (s *State) mark(n *deps.Node, b Bucket) bool {
	if _, ok := s.buckets[n]; ok {
		return false
	}
	s.buckets[n] = b
	return true
}
