package project

import (
	"path/filepath"
	"regexp"
	"strings"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/platform"
)

// maxPackageNameLength is the npm registry limit.
const maxPackageNameLength = 214

var packageNamePattern = regexp.MustCompile(`^(@[a-z0-9~-][a-z0-9._~-]*/)?[a-z0-9~-][a-z0-9._~-]*$`)

// reservedRepoNames resolve to the cache itself or to the backup trees
// inside it.
var reservedRepoNames = map[string]bool{
	".":           true,
	"..":          true,
	backupDir:     true,
	workspacesDir: true,
}

// ValidatePackageName accepts npm package names, optionally scoped
// ("@scope/name").
func ValidatePackageName(name string) error {
	if len(name) > maxPackageNameLength || !packageNamePattern.MatchString(name) {
		return lnrerrors.Newf(lnrerrors.ErrInvalidInput, "%q is not a valid package name", name)
	}
	return nil
}

// ValidateRepoName accepts a single directory name that does not collide
// with the cache's own bookkeeping directories.
func ValidateRepoName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || reservedRepoNames[name] {
		return lnrerrors.Newf(lnrerrors.ErrInvalidInput, "%q is not a valid repository directory name", name)
	}
	return nil
}

// ContainedRepoPath returns RepoPath(repoName) after checking it names a
// directory strictly inside the cache.
func (l Layout) ContainedRepoPath(repoName string) (string, error) {
	if err := ValidateRepoName(repoName); err != nil {
		return "", err
	}
	path := l.RepoPath(repoName)
	if !strictlyWithin(path, l.CachePath()) {
		return "", lnrerrors.Newf(lnrerrors.ErrInvalidInput, "%s is outside %s", path, l.CachePath())
	}
	return path, nil
}

// ContainedModulePath returns ModulePath(dir, name) after checking that dir
// lies inside the project and the path stays inside dir's modules
// directory.
func (l Layout) ContainedModulePath(dir, name string) (string, error) {
	if err := ValidatePackageName(name); err != nil {
		return "", err
	}
	if !platform.IsWithin(dir, l.Root) {
		return "", lnrerrors.Newf(lnrerrors.ErrInvalidInput, "%s is outside the project %s", dir, l.Root)
	}
	path := l.ModulePath(dir, name)
	if !strictlyWithin(path, filepath.Join(dir, l.ModulesDir)) {
		return "", lnrerrors.Newf(lnrerrors.ErrInvalidInput, "%s is outside %s", path, filepath.Join(dir, l.ModulesDir))
	}
	return path, nil
}

func strictlyWithin(path, dir string) bool {
	return platform.IsWithin(path, dir) && filepath.Clean(path) != filepath.Clean(dir)
}
