package classpath

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbundle/pkg/archive"
	"github.com/matzehuels/stackbundle/pkg/deps"
)

// n builds a node without an artifact file. Packages default to empty so
// no archive is ever opened.
func n(coord string, children ...*deps.Node) *deps.Node {
	return &deps.Node{ID: deps.MustParseIdentity(coord), Provides: []string{}, Children: children}
}

func bundle(coord string, children ...*deps.Node) *deps.Node {
	node := n(coord, children...)
	node.Bundle = true
	return node
}

func withPackages(node *deps.Node, pkgs ...string) *deps.Node {
	node.Provides = pkgs
	return node
}

// withJar backs node with a real jar in dir.
func withJar(t *testing.T, dir string, node *deps.Node, files ...archive.File) *deps.Node {
	t.Helper()
	if len(files) == 0 {
		files = []archive.File{{Name: "x/X.class"}}
	}
	path := filepath.Join(dir, node.ID.ArtifactID+"-"+node.ID.Version+".jar")
	require.NoError(t, archive.Write(path, files))
	node.File = path
	return node
}

func root(children ...*deps.Node) *deps.Node {
	return n("org.example:module:1.0.0", children...)
}

func quietOptions() Options {
	return Options{
		ModuleID:      "test-module",
		VersionDigits: 2,
		Logger:        log.New(io.Discard),
	}
}

func resolve(t *testing.T, p Patterns, opts Options, tree *deps.Node, ext ...*deps.Node) *State {
	t.Helper()
	s, err := New(p, opts).Resolve(context.Background(), tree, ext...)
	require.NoError(t, err)
	return s
}

func coords(nodes []*deps.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.ID.Coordinate())
	}
	return out
}
