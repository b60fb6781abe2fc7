package cache

import "sort"

// Keyer builds cache keys for the values stackbundle caches.
type Keyer interface {
	// TreeKey identifies a resolved dependency tree. The repository list is
	// part of the key because different repositories can resolve the same
	// coordinate to different trees.
	TreeKey(coordinate string, repositories []string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey hashes the coordinate together with the sorted repository list.
func (DefaultKeyer) TreeKey(coordinate string, repositories []string) string {
	repos := append([]string(nil), repositories...)
	sort.Strings(repos)
	return hashKey("tree", coordinate, repos)
}
