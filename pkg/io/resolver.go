package io

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbundle/pkg/archive"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
	"github.com/matzehuels/stackbundle/pkg/manifest"
)

var fixtureExts = []string{".json", ".yaml", ".yml"}

// DirResolver resolves trees from fixture files in a directory.
type DirResolver struct {
	Dir    string
	Logger *log.Logger
}

// NewDirResolver returns a resolver reading fixtures from dir.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{Dir: dir}
}

// ResolveTree implements [deps.TreeResolver]. A versioned fixture
// ("groupId_artifactId_version") is preferred over an unversioned one.
func (r *DirResolver) ResolveTree(ctx context.Context, id deps.Identity) (*deps.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := r.fixture(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no tree fixture for %s in %s", id.Key(), r.Dir)
	}
	tree, err := ImportTree(path)
	if err != nil {
		return nil, err
	}
	tree.Walk(func(n *deps.Node) bool {
		r.complete(n)
		return true
	})
	return tree, nil
}

func (r *DirResolver) fixture(id deps.Identity) (string, bool) {
	base := id.GroupID + "_" + id.ArtifactID
	var names []string
	if id.Version != "" {
		names = append(names, base+"_"+id.Version)
	}
	names = append(names, base)

	for _, name := range names {
		for _, ext := range fixtureExts {
			path := filepath.Join(r.Dir, name+ext)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}
	return "", false
}

// complete resolves relative file paths and reads missing headers from the
// jar manifest. The tree was just decoded, so it is still ours to modify.
func (r *DirResolver) complete(n *deps.Node) {
	if n.File != "" && !filepath.IsAbs(n.File) {
		n.File = filepath.Join(r.Dir, n.File)
	}
	if n.Headers != nil || !n.IsValidLibrary() {
		return
	}

	data, err := archive.ReadEntry(n.File, archive.ManifestPath)
	if err != nil {
		if !stderrors.Is(err, os.ErrNotExist) {
			r.logger().Warn("cannot read manifest", "node", n.ID, "err", err)
		}
		return
	}
	headers, err := manifest.ParseManifest(bytes.NewReader(data))
	if err != nil {
		r.logger().Warn("malformed manifest", "node", n.ID, "err", err)
		return
	}
	n.Headers = headers
	if manifest.SymbolicName(headers) != "" {
		n.Bundle = true
	}
}

func (r *DirResolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

var _ deps.TreeResolver = (*DirResolver)(nil)
