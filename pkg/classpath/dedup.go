package classpath

import "github.com/matzehuels/stackbundle/pkg/deps"

// Dedup drops every node whose identity was already seen, keeping the
// first occurrence and the relative order. Applying it twice is a no-op.
func Dedup(nodes []*deps.Node) []*deps.Node {
	if len(nodes) == 0 {
		return nodes
	}
	seen := make(map[deps.Identity]bool, len(nodes))
	out := make([]*deps.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// reconcile makes the buckets disjoint by identity. The same artifact can
// be reached through branches that classify it differently; shared wins
// over optional, both win over non-shared, and any classification wins
// over exclusion.
func reconcile(s *State) {
	shared := identities(s.Shared)
	s.Optional = without(s.Optional, shared)
	optional := identities(s.Optional)
	s.NonShared = without(s.NonShared, shared, optional)
	nonShared := identities(s.NonShared)
	s.Excluded = without(s.Excluded, shared, optional, nonShared)

	for n := range s.buckets {
		switch {
		case shared[n.ID]:
			s.buckets[n] = BucketShared
		case optional[n.ID]:
			s.buckets[n] = BucketOptional
		case nonShared[n.ID]:
			s.buckets[n] = BucketNonShared
		default:
			s.buckets[n] = BucketExcluded
		}
	}
}

func identities(nodes []*deps.Node) map[deps.Identity]bool {
	m := make(map[deps.Identity]bool, len(nodes))
	for _, n := range nodes {
		m[n.ID] = true
	}
	return m
}

func without(nodes []*deps.Node, sets ...map[deps.Identity]bool) []*deps.Node {
	out := make([]*deps.Node, 0, len(nodes))
	for _, n := range nodes {
		drop := false
		for _, set := range sets {
			if set[n.ID] {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, n)
		}
	}
	return out
}
