package classpath

import (
	stderrors "errors"
	"path/filepath"

	"github.com/matzehuels/stackbundle/pkg/archive"
	"github.com/matzehuels/stackbundle/pkg/deps"
	"github.com/matzehuels/stackbundle/pkg/errors"
)

// rebundle copies the shared-resource entries of n into
// "{WorkDir}/{g}.{a}-resources.jar" and embeds that archive. On success the
// node's exported packages are added to Import-Package so the re-bundled
// resources still resolve their types.
//
// Nothing happens when no entry matches. A node whose archive cannot be
// read is skipped; a side archive that cannot be written fails the run.
func (r *run) rebundle(n *deps.Node) error {
	if !n.IsValidLibrary() {
		return nil
	}

	segment := n.ID.ResourcesJarName()
	dst := filepath.Join(r.opts.WorkDir, segment)
	copied, err := archive.CopyMatching(n.File, dst, r.opts.SharedResourcePaths)

	var readErr *archive.ReadError
	switch {
	case stderrors.As(err, &readErr):
		r.logger.Warn("cannot scan shared resources", "node", n.ID, "err", err)
		return nil
	case err != nil:
		return errors.Wrap(errors.ErrCodeRebundle, err, "re-bundle shared resources of %s", n.ID)
	}

	r.hooks.OnRebundle(r.ctx, n.ID.String(), copied)
	if copied == 0 {
		return nil
	}

	r.logger.Debug("re-bundled shared resources", "node", n.ID, "entries", copied, "segment", segment)
	r.embed(segment, dst)
	r.state.ImportPackage = MergeClauses(r.state.ImportPackage, exportsAsImports(n, r.opts.VersionDigits))
	return nil
}
