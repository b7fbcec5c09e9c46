package linker

import (
	"os"
	"path/filepath"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/fetcher"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/manifest"
	"github.com/lnr-labs/lnr/internal/platform"
	"github.com/lnr-labs/lnr/internal/project"
	"github.com/lnr-labs/lnr/internal/state"
	"github.com/rs/zerolog"
)

// Engine runs link operations against one project root.
type Engine struct {
	layout   project.Layout
	store    *state.Store
	manifest *manifest.Manifest
	fetcher  *fetcher.Fetcher
	logger   zerolog.Logger
}

// Options configures an Engine.
type Options struct {
	Layout project.Layout
	// Cloner is used by Fetch and Install. Defaults to a git cloner.
	Cloner fetcher.Cloner
}

// New returns an Engine for opts.Layout.
func New(opts Options) *Engine {
	cloner := opts.Cloner
	if cloner == nil {
		cloner = fetcher.GitCloner{Depth: 1}
	}
	return &Engine{
		layout:   opts.Layout,
		store:    state.NewStore(opts.Layout.StatePath(), opts.Layout.LocalStatePath()),
		manifest: manifest.Open(opts.Layout.ManifestPath()),
		fetcher:  fetcher.New(opts.Layout.CachePath(), cloner),
		logger:   logging.GetLogger("linker"),
	}
}

// Layout returns the project layout the engine works on.
func (e *Engine) Layout() project.Layout {
	return e.layout
}

// Store returns the state store.
func (e *Engine) Store() *state.Store {
	return e.store
}

func (e *Engine) memberDir(member string) string {
	if member == "" {
		return e.layout.Root
	}
	return filepath.Join(e.layout.Root, filepath.FromSlash(member))
}

func (e *Engine) memberManifest(member string) *manifest.Manifest {
	if member == "" {
		return e.manifest
	}
	return manifest.OpenDir(e.memberDir(member))
}

// addManifestStep journals an edit of m; the undo writes back the bytes the
// manifest had when the step ran.
func (j *journal) addManifestStep(name string, m *manifest.Manifest, edit func() error) {
	var snapshot []byte
	j.add(name,
		func() error {
			data, err := m.Snapshot()
			if err != nil {
				return err
			}
			snapshot = data
			return edit()
		},
		func() error {
			if snapshot == nil {
				return nil
			}
			return m.Restore(snapshot)
		})
}

// addLinkSteps journals the filesystem part of a bind for one member: park
// whatever occupies the module path, then link it to repoDir. It reports
// whether a real installed copy will be backed up.
func (e *Engine) addLinkSteps(j *journal, member, name, repoDir string) (bool, error) {
	modulePath, err := e.layout.ContainedModulePath(e.memberDir(member), name)
	if err != nil {
		return false, err
	}
	backupPath := e.layout.BackupPath(member, name)

	kind, err := platform.Inspect(modulePath)
	if err != nil {
		return false, lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "inspecting %s", modulePath)
	}

	backedUp := false
	switch kind {
	case platform.KindDir:
		backedUp = true
		j.add("backup "+modulePath,
			func() error {
				return wrapFS(platform.Move(modulePath, backupPath), "backing up %s", modulePath)
			},
			func() error { return platform.Move(backupPath, modulePath) })
	case platform.KindSymlink:
		raw, err := os.Readlink(modulePath)
		if err != nil {
			return false, lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "reading link %s", modulePath)
		}
		j.add("unlink "+modulePath,
			func() error {
				return wrapFS(platform.RemoveSymlink(modulePath), "removing link %s", modulePath)
			},
			func() error { return os.Symlink(raw, modulePath) })
	case platform.KindFile:
		return false, lnrerrors.Newf(lnrerrors.ErrFilesystem, "%s is a file, expected a package directory", modulePath)
	}

	j.add("link "+modulePath,
		func() error {
			return wrapFS(platform.CreateSymlink(repoDir, modulePath), "linking %s", modulePath)
		},
		func() error { return platform.RemoveSymlink(modulePath) })

	return backedUp, nil
}

func wrapFS(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, format, args...)
}
