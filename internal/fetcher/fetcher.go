// Package fetcher clones dependency repositories into the managed cache.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/project"
)

// tmpSuffix is appended to the target dir while a clone is in flight.
const tmpSuffix = ".tmp"

// Cloner clones url into dir. dir does not exist when Clone is called.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// GitCloner runs the git binary.
type GitCloner struct {
	Binary string
	Depth  int // 0 clones full history
}

// Clone runs `git clone [--depth=N] url dir`.
func (g GitCloner) Clone(ctx context.Context, url, dir string) error {
	binary := g.Binary
	if binary == "" {
		binary = "git"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s is required but not found in PATH", binary)
	}

	args := []string{"clone"}
	if g.Depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(g.Depth))
	}
	args = append(args, url, dir)

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone: %w\n%s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Result describes a fetched repository.
type Result struct {
	RepoName string
	Dir      string
	Cloned   bool // false when the directory already existed
}

// Fetcher places clones under CacheDir.
type Fetcher struct {
	CacheDir string
	Cloner   Cloner
}

// New returns a Fetcher for cacheDir using cloner.
func New(cacheDir string, cloner Cloner) *Fetcher {
	return &Fetcher{CacheDir: cacheDir, Cloner: cloner}
}

// RepoName derives the cache directory name from a repository URL: the last
// path segment with any trailing "/" and ".git" removed.
func RepoName(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	trimmed = strings.TrimRight(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	idx := strings.LastIndexAny(trimmed, "/:\\")
	name := trimmed[idx+1:]

	if err := project.ValidateRepoName(name); err != nil {
		return "", lnrerrors.Wrapf(err, lnrerrors.ErrInvalidInput, "cannot derive a repository name from %q", url)
	}
	return name, nil
}

// Fetch clones url into the cache. An existing directory with the derived
// name counts as success without touching it. The clone lands in a
// temporary directory and is renamed into place only when git succeeds.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Result, error) {
	name, err := RepoName(url)
	if err != nil {
		return Result{}, err
	}
	return f.FetchAs(ctx, url, name)
}

// FetchAs clones url into the cache directory name. Install uses it to
// restore a clone under the repo_name already recorded for a package.
func (f *Fetcher) FetchAs(ctx context.Context, url, name string) (Result, error) {
	logger := logging.GetLogger("fetcher")

	if err := project.ValidateRepoName(name); err != nil {
		return Result{}, err
	}
	res := Result{RepoName: name, Dir: filepath.Join(f.CacheDir, name)}

	if _, err := os.Stat(res.Dir); err == nil {
		logger.Info().Str("dir", res.Dir).Msg("Repository already present, skipping clone")
		return res, nil
	}

	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		return Result{}, lnrerrors.Wrap(err, lnrerrors.ErrFilesystem, "creating cache directory")
	}

	tmpDir := res.Dir + tmpSuffix
	// Leftover from an interrupted clone.
	_ = os.RemoveAll(tmpDir)

	logger.Info().Str("url", url).Str("dir", res.Dir).Msg("Cloning repository")
	if err := f.Cloner.Clone(ctx, url, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return Result{}, lnrerrors.Wrapf(err, lnrerrors.ErrFetchFailed, "fetching %s", url)
	}

	if err := os.Rename(tmpDir, res.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return Result{}, lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "finalizing clone of %s", url)
	}

	res.Cloned = true
	return res, nil
}
