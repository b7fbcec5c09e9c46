package linker

import (
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/manifest"
	"github.com/lnr-labs/lnr/internal/platform"
	"github.com/lnr-labs/lnr/internal/state"
)

// BindOptions selects how a package is bound.
type BindOptions struct {
	// Dev forces the dependency group. Nil inherits the group the manifest
	// already declares, defaulting to prod.
	Dev *bool
	// Recursive also binds the package in every workspace member that
	// declares it.
	Recursive bool
}

// BindResult describes a completed bind.
type BindResult struct {
	Name         string
	File         string
	RepoDir      string
	Group        manifest.Group
	PriorVersion string
	BackedUp     bool
	Workspaces   []string
}

type memberBinding struct {
	member string
	group  manifest.Group
	prior  string
}

// Bind points name at its cached clone.
func (e *Engine) Bind(name string, opts BindOptions) (*BindResult, error) {
	defer logging.LogOperationStart(e.logger, "bind "+name)()

	file, rec, err := e.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	if rec.Bound() {
		return nil, lnrerrors.Newf(lnrerrors.ErrAlreadyBound,
			"package %q is already bound; unbind it first", name)
	}

	repoDir := e.layout.RepoPath(rec.RepoName)
	if !platform.DirExists(repoDir) {
		return nil, lnrerrors.Newf(lnrerrors.ErrMissingLocalRepo,
			"local repository %s for %q is missing; fetch it again", repoDir, name)
	}

	declaredGroup, prior, found, err := e.manifest.FindDependency(name)
	if err != nil {
		return nil, err
	}
	if found && manifest.IsFileReference(prior) {
		return nil, lnrerrors.Newf(lnrerrors.ErrConflict,
			"package.json already points %q at %s; run status to inspect the drift", name, prior)
	}

	group := manifest.Prod
	switch {
	case opts.Dev != nil:
		group = manifest.GroupFor(*opts.Dev)
	case found:
		group = declaredGroup
	}

	var members []memberBinding
	if opts.Recursive {
		members, err = e.planMembers(name)
		if err != nil {
			return nil, err
		}
	}

	updated := rec
	updated.NodeVersion = state.StringPtr(prior)
	updated.Dev = state.BoolPtr(group == manifest.Dev)
	if len(members) > 0 {
		updated.Workspaces = make(map[string]string, len(members))
		for _, mb := range members {
			updated.Workspaces[mb.member] = mb.prior
		}
	}

	j := newJournal(e.logger.With().Str("package", name).Str("op", "bind").Logger())

	j.add("record "+file.Label,
		func() error { return file.Write(name, updated) },
		func() error { return file.Write(name, rec) })

	j.addManifestStep("manifest", e.manifest, func() error {
		return pointManifest(e.manifest, name, group, found, declaredGroup, e.layout.FileReference(e.layout.Root, rec.RepoName))
	})
	for _, mb := range members {
		m := e.memberManifest(mb.member)
		j.addManifestStep("manifest "+mb.member, m, func() error {
			return pointManifest(m, name, mb.group, true, mb.group, e.layout.FileReference(e.memberDir(mb.member), rec.RepoName))
		})
	}

	backedUp, err := e.addLinkSteps(j, "", name, repoDir)
	if err != nil {
		return nil, err
	}
	for _, mb := range members {
		if _, err := e.addLinkSteps(j, mb.member, name, repoDir); err != nil {
			return nil, err
		}
	}

	if err := j.commit(); err != nil {
		return nil, err
	}

	e.logger.Info().Str("package", name).Str("group", group.String()).Str("repo", repoDir).Msg("Bound package")

	res := &BindResult{
		Name:         name,
		File:         file.Label,
		RepoDir:      repoDir,
		Group:        group,
		PriorVersion: prior,
		BackedUp:     backedUp,
	}
	for _, mb := range members {
		res.Workspaces = append(res.Workspaces, mb.member)
	}
	return res, nil
}

// pointManifest sets name to ref in group and drops an entry left behind in
// the other group.
func pointManifest(m *manifest.Manifest, name string, group manifest.Group, found bool, declared manifest.Group, ref string) error {
	if err := m.SetDependency(group, name, ref); err != nil {
		return err
	}
	if found && declared != group {
		return m.RemoveDependency(declared, name)
	}
	return nil
}

// planMembers lists the workspace members whose manifest declares name.
func (e *Engine) planMembers(name string) ([]memberBinding, error) {
	members, err := e.manifest.Workspaces()
	if err != nil {
		return nil, err
	}

	var out []memberBinding
	for _, member := range members {
		group, prior, found, err := e.memberManifest(member).FindDependency(name)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if manifest.IsFileReference(prior) {
			return nil, lnrerrors.Newf(lnrerrors.ErrConflict,
				"%s/package.json already points %q at %s", member, name, prior)
		}
		out = append(out, memberBinding{member: member, group: group, prior: prior})
	}
	return out, nil
}
