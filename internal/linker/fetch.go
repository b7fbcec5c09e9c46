package linker

import (
	"context"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/manifest"
	"github.com/lnr-labs/lnr/internal/platform"
	"github.com/lnr-labs/lnr/internal/project"
	"github.com/lnr-labs/lnr/internal/state"
)

// FetchOptions controls Fetch.
type FetchOptions struct {
	// Local records the package in lnr-local.json instead of lnr.json.
	Local bool
	// Bind binds the package right after recording it.
	Bind bool
	// Dev is passed to Bind.
	Dev *bool
}

// FetchResult describes a fetched package.
type FetchResult struct {
	Name     string
	RepoName string
	RepoDir  string
	File     string
	Cloned   bool
	// Recorded is false when the package was already recorded.
	Recorded bool
	Bind     *BindResult
}

// Fetch clones url into the cache and records it under the package name
// read from the clone's package.json, falling back to the repository name.
func (e *Engine) Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error) {
	fetched, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	name := fetched.RepoName
	if m := manifest.OpenDir(fetched.Dir); m.Exists() {
		if pkg, err := m.PackageName(); err == nil && pkg != "" {
			name = pkg
		} else if err != nil {
			e.logger.Warn().Err(err).Str("dir", fetched.Dir).Msg("Cannot read package name, using repository name")
		}
	}
	if err := project.ValidatePackageName(name); err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrInvalidInput, "%s declares an unusable package name", fetched.Dir)
	}

	scope := state.Shared
	if opts.Local {
		scope = state.Local
	}
	rec := state.Record{RepoName: fetched.RepoName, RepoURL: url}
	recorded, err := e.store.Insert(scope, name, rec)
	if err != nil {
		return nil, err
	}

	res := &FetchResult{
		Name:     name,
		RepoName: fetched.RepoName,
		RepoDir:  fetched.Dir,
		File:     e.store.File(scope).Label,
		Cloned:   fetched.Cloned,
		Recorded: recorded,
	}
	e.logger.Info().Str("package", name).Str("file", res.File).Bool("recorded", recorded).Msg("Fetched package")

	if opts.Bind {
		bound, err := e.Bind(name, BindOptions{Dev: opts.Dev})
		switch {
		case err == nil:
			res.Bind = bound
		case !recorded && lnrerrors.IsErrorCode(err, lnrerrors.ErrAlreadyBound):
			// Re-fetching a bound package is a no-op.
		default:
			return res, err
		}
	}
	return res, nil
}

// InstallOptions controls Install.
type InstallOptions struct {
	// FetchOnly restores missing clones without relinking.
	FetchOnly bool
}

// InstallResult describes what Install did.
type InstallResult struct {
	Fetched  []string
	Relinked []string
	// Skipped lists packages whose clone is missing and cannot be restored
	// because no repo_url is recorded.
	Skipped []string
}

// Install brings a fresh checkout in line with the state files: missing
// clones are fetched again from their recorded repo_url and bound packages
// get their node_modules links back. package.json is never edited; a bound
// record whose manifest entry is not a file: reference is left for status
// to report.
func (e *Engine) Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	defer logging.LogOperationStart(e.logger, "install")()

	res := &InstallResult{}

	seen := make(map[string]bool)
	for _, f := range e.store.Files() {
		recs, err := f.Records()
		if err != nil {
			return nil, err
		}
		names, err := f.Names()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			rec := recs[name]

			repoDir := e.layout.RepoPath(rec.RepoName)
			if !platform.DirExists(repoDir) {
				if rec.RepoURL == "" {
					e.logger.Warn().Str("package", name).Msg("Clone missing and no repo_url recorded")
					res.Skipped = append(res.Skipped, name)
					continue
				}
				if _, err := e.fetcher.FetchAs(ctx, rec.RepoURL, rec.RepoName); err != nil {
					return res, err
				}
				res.Fetched = append(res.Fetched, name)
			}

			if opts.FetchOnly || !rec.Bound() {
				continue
			}
			relinked, err := e.relink(name, rec, repoDir)
			if err != nil {
				return res, err
			}
			if relinked {
				res.Relinked = append(res.Relinked, name)
			}
		}
	}
	return res, nil
}

// relink recreates the node_modules links of a bound package. A module path
// already linked into the clone is left alone.
func (e *Engine) relink(name string, rec state.Record, repoDir string) (bool, error) {
	members := append([]string{""}, sortedKeys(rec.Workspaces)...)

	j := newJournal(e.logger.With().Str("package", name).Str("op", "install").Logger())
	changed := false
	for _, member := range members {
		modulePath := e.layout.ModulePath(e.memberDir(member), name)
		if link, _ := e.classifyLink(modulePath, repoDir); link == LinkBound {
			continue
		}
		if _, err := e.addLinkSteps(j, member, name, repoDir); err != nil {
			return false, err
		}
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := j.commit(); err != nil {
		return false, err
	}
	return true, nil
}
