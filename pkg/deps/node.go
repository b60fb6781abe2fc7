package deps

import (
	"fmt"
	"os"

	"github.com/matzehuels/stackbundle/pkg/archive"
)

// Node is one resolved artifact in a dependency tree together with its
// resolved children.
//
// Nodes are built once by a [TreeResolver] and are read-only afterwards;
// nothing in stackbundle mutates a tree it did not build. The tree is
// assumed to be acyclic.
type Node struct {
	ID Identity `json:"id" yaml:"id"`

	// File is the local path of the resolved artifact. Empty when the
	// resolver did not download it (e.g. POM-only dependencies).
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// URL is the artifact's origin, kept for diagnostics and reports.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Bundle is set when the artifact already carries module metadata.
	Bundle bool `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	// Headers holds the artifact's own manifest entries.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Provides optionally pre-computes the package list. When nil the
	// packages are read from File on demand.
	Provides []string `json:"packages,omitempty" yaml:"packages,omitempty"`

	Children []*Node `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// EnumerationError reports that a node's package list could not be read.
type EnumerationError struct {
	ID  Identity
	Err error
}

// Error implements the error interface.
func (e *EnumerationError) Error() string {
	return fmt.Sprintf("list packages of %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *EnumerationError) Unwrap() error { return e.Err }

// Header returns the manifest entry for key, or "" if absent.
// Lookup is case-sensitive.
func (n *Node) Header(key string) string {
	if n == nil || n.Headers == nil {
		return ""
	}
	return n.Headers[key]
}

// IsValidLibrary reports whether the node can be embedded: it has a real
// file on disk and is not a POM.
func (n *Node) IsValidLibrary() bool {
	if n == nil || n.File == "" || n.ID.IsPOM() {
		return false
	}
	info, err := os.Stat(n.File)
	return err == nil && info.Mode().IsRegular()
}

// Location returns the file-or-URL value recorded when the node is
// embedded: File if set, URL otherwise.
func (n *Node) Location() string {
	if n.File != "" {
		return n.File
	}
	return n.URL
}

// Packages returns the Java packages the artifact provides. A node without
// a file provides nothing. I/O failures are reported as *EnumerationError.
func (n *Node) Packages() ([]string, error) {
	if n.Provides != nil {
		return n.Provides, nil
	}
	if n.File == "" || n.ID.IsPOM() {
		return nil, nil
	}
	pkgs, err := archive.ListPackages(n.File)
	if err != nil {
		return nil, &EnumerationError{ID: n.ID, Err: err}
	}
	return pkgs, nil
}

// Descendants returns every node below n in pre-order, excluding n itself.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Walk visits n and its subtree in pre-order. Returning false from fn skips
// the subtree of the node just visited.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the tree rooted at n, including n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Find returns the first node in pre-order whose identity equals id.
func (n *Node) Find(id Identity) (*Node, bool) {
	var found *Node
	n.Walk(func(d *Node) bool {
		if found != nil {
			return false
		}
		if d.ID == id {
			found = d
			return false
		}
		return true
	})
	return found, found != nil
}
