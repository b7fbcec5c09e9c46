package project

import (
	"path/filepath"

	"github.com/lnr-labs/lnr/internal/branding"
)

const (
	// ManifestFile is the dependency manifest in the project root.
	ManifestFile = "package.json"

	// DefaultCacheDir is the managed cache directory name under the root.
	DefaultCacheDir = "lnr"

	// DefaultModulesDir is the dependency-resolution directory name.
	DefaultModulesDir = "node_modules"

	// backupDir holds installed copies moved aside by bind, under the cache.
	backupDir = "node_modules"

	// workspacesDir holds the backups of workspace members, under the cache.
	workspacesDir = "workspaces"
)

// Layout resolves every path lnr touches inside a project root.
type Layout struct {
	Root       string
	CacheDir   string // name of the managed cache directory, relative to Root
	ModulesDir string // name of the dependency-resolution directory
}

// NewLayout returns a Layout for root with the given directory names. Empty
// names fall back to the defaults.
func NewLayout(root, cacheDir, modulesDir string) Layout {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	if modulesDir == "" {
		modulesDir = DefaultModulesDir
	}
	return Layout{Root: root, CacheDir: cacheDir, ModulesDir: modulesDir}
}

// StatePath returns the path of the shared state file.
func (l Layout) StatePath() string {
	return filepath.Join(l.Root, branding.StateFile())
}

// LocalStatePath returns the path of the private state file.
func (l Layout) LocalStatePath() string {
	return filepath.Join(l.Root, branding.LocalStateFile())
}

// LockPath returns the path of the advisory lock file.
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, branding.LockFile())
}

// ManifestPath returns the path of the root package.json.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.Root, ManifestFile)
}

// CachePath returns the absolute managed cache directory.
func (l Layout) CachePath() string {
	return filepath.Join(l.Root, l.CacheDir)
}

// RepoPath returns the cache directory for a cloned repository.
func (l Layout) RepoPath(repoName string) string {
	return filepath.Join(l.CachePath(), repoName)
}

// ModulePath returns the dependency-resolution path for a package name
// inside dir (the root or a workspace member).
func (l Layout) ModulePath(dir, name string) string {
	return filepath.Join(dir, l.ModulesDir, filepath.FromSlash(name))
}

// BackupPath returns where bind parks the installed copy of name. member is
// the workspace member directory relative to the root ("" for the root).
func (l Layout) BackupPath(member, name string) string {
	if member == "" {
		return filepath.Join(l.CachePath(), backupDir, filepath.FromSlash(name))
	}
	return filepath.Join(l.CachePath(), workspacesDir, filepath.FromSlash(member), backupDir, filepath.FromSlash(name))
}

// FileReference returns the manifest value pointing at a cached repository,
// relative to dir (the root or a workspace member), e.g. "file:./lnr/left-pad-fork".
func (l Layout) FileReference(dir, repoName string) string {
	rel, err := filepath.Rel(dir, l.RepoPath(repoName))
	if err != nil {
		rel = l.RepoPath(repoName)
	}
	rel = filepath.ToSlash(rel)
	if !filepath.IsAbs(rel) && rel[0] != '.' {
		rel = "./" + rel
	}
	return "file:" + rel
}
