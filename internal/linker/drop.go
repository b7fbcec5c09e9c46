package linker

import (
	"os"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

// DropResult describes a dropped package.
type DropResult struct {
	Name    string
	File    string
	RepoDir string
	// RepoKept is true when another record still uses the same clone.
	RepoKept bool
}

// Drop forgets an unbound package and deletes its clone.
func (e *Engine) Drop(name string) (*DropResult, error) {
	file, rec, err := e.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	if rec.Bound() {
		return nil, lnrerrors.Newf(lnrerrors.ErrAlreadyBound,
			"package %q is bound; unbind it before dropping", name)
	}

	repoDir, err := e.layout.ContainedRepoPath(rec.RepoName)
	if err != nil {
		return nil, err
	}
	res := &DropResult{Name: name, File: file.Label, RepoDir: repoDir}

	shared, err := e.repoSharedWith(name, rec.RepoName)
	if err != nil {
		return nil, err
	}

	if err := file.Delete(name); err != nil {
		return nil, err
	}

	if shared {
		res.RepoKept = true
	} else if err := os.RemoveAll(res.RepoDir); err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "removing %s", res.RepoDir)
	}

	e.logger.Info().Str("package", name).Bool("repoKept", res.RepoKept).Msg("Dropped package")
	return res, nil
}

// repoSharedWith reports whether a record other than name (in either file)
// uses repoName.
func (e *Engine) repoSharedWith(name, repoName string) (bool, error) {
	for _, f := range e.store.Files() {
		recs, err := f.Records()
		if err != nil {
			return false, err
		}
		for other, r := range recs {
			if r.RepoName == repoName && other != name {
				return true, nil
			}
		}
	}
	return false, nil
}
