package linker

import (
	"os"
	"sort"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/manifest"
	"github.com/lnr-labs/lnr/internal/platform"
)

// VersionSource selects where unbind takes the version to write back.
type VersionSource int

const (
	// SourceOld restores the version recorded at bind time.
	SourceOld VersionSource = iota
	// SourcePackage uses the version declared in the cached clone's package.json.
	SourcePackage
	// SourceExplicit uses UnbindOptions.Version.
	SourceExplicit
)

// UnbindOptions selects the version written back on unbind.
type UnbindOptions struct {
	Source  VersionSource
	Version string
}

// NewUnbindOptions builds UnbindOptions from the unbind flags. Precedence
// is fixed: an explicit version beats --package-version, which beats
// --old-version (the default). The explicit values "o" and "p" are aliases
// for the old and package sources.
func NewUnbindOptions(oldVersion, packageVersion bool, explicit string) UnbindOptions {
	switch {
	case explicit == "o":
		return UnbindOptions{Source: SourceOld}
	case explicit == "p":
		return UnbindOptions{Source: SourcePackage}
	case explicit != "":
		return UnbindOptions{Source: SourceExplicit, Version: explicit}
	case packageVersion:
		return UnbindOptions{Source: SourcePackage}
	default:
		return UnbindOptions{Source: SourceOld}
	}
}

// UnbindResult describes a completed unbind.
type UnbindResult struct {
	Name    string
	Group   manifest.Group
	Version string // "" when the manifest entry was removed
	// Restored is true when the backed-up installed copy was moved back.
	Restored bool
	// NeedsInstall is true when node_modules has to be materialized by the
	// package manager.
	NeedsInstall bool
	Workspaces   []string
}

type memberUnbinding struct {
	member  string
	version string
	remove  bool
	restore bool
}

// Unbind points name back at a published version.
func (e *Engine) Unbind(name string, opts UnbindOptions) (*UnbindResult, error) {
	defer logging.LogOperationStart(e.logger, "unbind "+name)()

	file, rec, err := e.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	if !rec.Bound() {
		return nil, lnrerrors.Newf(lnrerrors.ErrNotBound, "package %q is not bound", name)
	}
	prior := rec.PriorVersion()

	version, err := e.targetVersion(rec.RepoName, prior, opts)
	if err != nil {
		return nil, err
	}

	pureRestore := version == prior
	removeEntry := pureRestore && prior == ""
	if !removeEntry {
		if err := ValidateVersion(version); err != nil {
			return nil, err
		}
	}

	members := make([]memberUnbinding, 0, len(rec.Workspaces))
	for _, member := range sortedKeys(rec.Workspaces) {
		memberPrior := rec.Workspaces[member]
		mu := memberUnbinding{member: member, version: version}
		if opts.Source == SourceOld || version == memberPrior {
			mu.version = memberPrior
			mu.restore = true
			mu.remove = memberPrior == ""
		}
		if !mu.remove {
			if err := ValidateVersion(mu.version); err != nil {
				return nil, err
			}
		}
		members = append(members, mu)
	}

	group := manifest.GroupFor(rec.IsDev())
	updated := rec
	updated.NodeVersion = nil
	updated.Workspaces = nil

	j := newJournal(e.logger.With().Str("package", name).Str("op", "unbind").Logger())

	j.add("record "+file.Label,
		func() error { return file.Write(name, updated) },
		func() error { return file.Write(name, rec) })

	j.addManifestStep("manifest", e.manifest, func() error {
		return writeBack(e.manifest, group, name, version, removeEntry)
	})
	for _, mu := range members {
		m := e.memberManifest(mu.member)
		j.addManifestStep("manifest "+mu.member, m, func() error {
			g, _, found, err := m.FindDependency(name)
			if err != nil {
				return err
			}
			if !found {
				g = group
			}
			return writeBack(m, g, name, mu.version, mu.remove)
		})
	}

	restored, err := e.addUnlinkSteps(j, "", name, pureRestore)
	if err != nil {
		return nil, err
	}
	for _, mu := range members {
		if _, err := e.addUnlinkSteps(j, mu.member, name, mu.restore); err != nil {
			return nil, err
		}
	}

	if err := j.commit(); err != nil {
		return nil, err
	}

	res := &UnbindResult{
		Name:         name,
		Group:        group,
		Restored:     restored,
		NeedsInstall: !restored && !removeEntry,
	}
	if !removeEntry {
		res.Version = version
	}
	for _, mu := range members {
		res.Workspaces = append(res.Workspaces, mu.member)
	}

	e.logger.Info().Str("package", name).Str("version", version).Bool("restored", restored).Msg("Unbound package")
	return res, nil
}

func (e *Engine) targetVersion(repoName, prior string, opts UnbindOptions) (string, error) {
	switch opts.Source {
	case SourceExplicit:
		return opts.Version, nil
	case SourcePackage:
		repoDir := e.layout.RepoPath(repoName)
		if !platform.DirExists(repoDir) {
			return "", lnrerrors.Newf(lnrerrors.ErrMissingLocalRepo,
				"local repository %s is missing; cannot read its version", repoDir)
		}
		return manifest.OpenDir(repoDir).PackageVersion()
	default:
		return prior, nil
	}
}

func writeBack(m *manifest.Manifest, group manifest.Group, name, version string, remove bool) error {
	if remove {
		return m.RemoveDependency(group, name)
	}
	return m.SetDependency(group, name, version)
}

// addUnlinkSteps journals the filesystem part of an unbind for one member:
// drop the link, then either move the backup back (restore) or discard it.
// Only a symlink is ever removed; a real directory found at the module path
// is left alone. It reports whether the backup will be restored.
func (e *Engine) addUnlinkSteps(j *journal, member, name string, restore bool) (bool, error) {
	modulePath, err := e.layout.ContainedModulePath(e.memberDir(member), name)
	if err != nil {
		return false, err
	}
	backupPath := e.layout.BackupPath(member, name)

	kind, err := platform.Inspect(modulePath)
	if err != nil {
		return false, lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "inspecting %s", modulePath)
	}

	switch kind {
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
	case platform.KindMissing:
	default:
		e.logger.Warn().Str("path", modulePath).Msg("Module path is not a link, leaving it in place")
		return false, nil
	}

	hasBackup := platform.DirExists(backupPath)
	if !hasBackup {
		return false, nil
	}

	if restore {
		j.add("restore "+modulePath,
			func() error {
				return wrapFS(platform.Move(backupPath, modulePath), "restoring %s", modulePath)
			},
			func() error { return platform.Move(modulePath, backupPath) })
		return true, nil
	}

	// The parked copy no longer matches the manifest. Nothing can undo this
	// step, so it runs last for this member.
	j.add("discard backup "+backupPath,
		func() error {
			return wrapFS(os.RemoveAll(backupPath), "removing stale backup %s", backupPath)
		},
		nil)
	return false, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
