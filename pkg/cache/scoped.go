package cache

// ScopedKeyer wraps a Keyer with a prefix so several environments (for
// example a staging and a production repository set) can share one Redis
// instance without seeing each other's trees.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreeKey generates a prefixed key for dependency tree caching.
func (k *ScopedKeyer) TreeKey(coordinate string, repositories []string) string {
	return k.prefix + k.inner.TreeKey(coordinate, repositories)
}
