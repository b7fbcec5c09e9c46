package linker

import (
	"fmt"

	"github.com/lnr-labs/lnr/internal/manifest"
	"github.com/lnr-labs/lnr/internal/platform"
	"github.com/lnr-labs/lnr/internal/state"
)

// LinkState classifies what sits at a package's module path.
type LinkState string

const (
	// LinkBound is a symlink resolving into the package's cached clone.
	LinkBound LinkState = "bound"
	// LinkForeign is a symlink pointing anywhere else.
	LinkForeign LinkState = "foreign"
	// LinkInstalled is a real directory, normally put there by a package manager.
	LinkInstalled LinkState = "installed"
	// LinkMissing means nothing is installed.
	LinkMissing LinkState = "missing"
)

// StatusOptions controls how much Status inspects.
type StatusOptions struct {
	// Verbose also inspects the workspace members recorded by recursive binds.
	Verbose bool
}

// PackageStatus is the observed state of one recorded package.
type PackageStatus struct {
	Name   string
	File   string
	Record state.Record
	Bound  bool
	Group  manifest.Group

	Link       LinkState
	LinkTarget string

	RepoDir     string
	RepoPresent bool
	RepoVersion string
	// RepoSatisfies is set when both the recorded version and the clone's
	// version parse; it reports whether the clone falls inside the
	// recorded range.
	RepoSatisfies *bool

	ManifestValue string
	ManifestFound bool

	Members []MemberStatus
	Drift   []string
}

// MemberStatus is the link state of a package inside a workspace member.
type MemberStatus struct {
	Member string
	Link   LinkState
}

// StatusReport is the result of Status.
type StatusReport struct {
	Packages   []PackageStatus
	Duplicates []string
}

// HasDrift reports whether any package disagrees across state, manifest and
// filesystem.
func (r *StatusReport) HasDrift() bool {
	if len(r.Duplicates) > 0 {
		return true
	}
	for _, p := range r.Packages {
		if len(p.Drift) > 0 {
			return true
		}
	}
	return false
}

// Status reports every recorded package in lnr.json then lnr-local.json.
// It never mutates anything.
func (e *Engine) Status(opts StatusOptions) (*StatusReport, error) {
	report := &StatusReport{}

	dups, err := e.store.Duplicates()
	if err != nil {
		return nil, err
	}
	report.Duplicates = dups
	dupSet := make(map[string]bool, len(dups))
	for _, d := range dups {
		dupSet[d] = true
	}

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
			// The shared record is the one operations act on.
			if seen[name] {
				continue
			}
			seen[name] = true
			ps := e.packageStatus(f.Label, name, recs[name], opts)
			if dupSet[name] {
				ps.Drift = append(ps.Drift, "recorded in both state files")
			}
			report.Packages = append(report.Packages, ps)
		}
	}
	return report, nil
}

func (e *Engine) packageStatus(file, name string, rec state.Record, opts StatusOptions) PackageStatus {
	ps := PackageStatus{
		Name:    name,
		File:    file,
		Record:  rec,
		Bound:   rec.Bound(),
		Group:   manifest.GroupFor(rec.IsDev()),
		RepoDir: e.layout.RepoPath(rec.RepoName),
	}

	ps.RepoPresent = platform.DirExists(ps.RepoDir)
	if ps.RepoPresent {
		repoManifest := manifest.OpenDir(ps.RepoDir)
		if repoManifest.Exists() {
			if v, err := repoManifest.PackageVersion(); err == nil {
				ps.RepoVersion = v
			}
		}
	} else {
		ps.Drift = append(ps.Drift, fmt.Sprintf("local repository %s is missing", ps.RepoDir))
	}

	if ps.Bound {
		if ok, parsed := satisfies(rec.PriorVersion(), ps.RepoVersion); parsed {
			ps.RepoSatisfies = &ok
		}
	}

	ps.Link, ps.LinkTarget = e.classifyLink(e.layout.ModulePath(e.layout.Root, name), ps.RepoDir)
	switch {
	case ps.Bound && ps.Link != LinkBound:
		ps.Drift = append(ps.Drift, fmt.Sprintf("bound but %s is %s", e.layout.ModulesDir+"/"+name, ps.Link))
	case !ps.Bound && ps.Link == LinkBound:
		ps.Drift = append(ps.Drift, "unbound but still linked to the local repository")
	}

	g, value, found, err := e.manifest.FindDependency(name)
	if err != nil {
		ps.Drift = append(ps.Drift, "package.json unreadable: "+err.Error())
	} else {
		ps.ManifestFound = found
		ps.ManifestValue = value
		if found && !ps.Bound {
			ps.Group = g
		}
		isRef := found && manifest.IsFileReference(value)
		switch {
		case ps.Bound && !isRef:
			ps.Drift = append(ps.Drift, "bound but package.json does not reference the local repository")
		case !ps.Bound && isRef:
			ps.Drift = append(ps.Drift, "unbound but package.json still references "+value)
		}
		if ps.Bound && isRef && g != ps.Group {
			// unbind writes back into the recorded group.
			if recorded, ok, err := e.manifest.Dependency(ps.Group, name); err == nil && !(ok && manifest.IsFileReference(recorded)) {
				ps.Drift = append(ps.Drift, fmt.Sprintf("bound as %s but package.json lists it under %s", ps.Group, g.Key()))
			}
		}
	}

	if opts.Verbose {
		for _, member := range sortedKeys(rec.Workspaces) {
			link, _ := e.classifyLink(e.layout.ModulePath(e.memberDir(member), name), ps.RepoDir)
			ps.Members = append(ps.Members, MemberStatus{Member: member, Link: link})
			if ps.Bound && link != LinkBound {
				ps.Drift = append(ps.Drift, fmt.Sprintf("workspace %s is %s", member, link))
			}
		}
	}

	return ps
}

func (e *Engine) classifyLink(modulePath, repoDir string) (LinkState, string) {
	kind, err := platform.Inspect(modulePath)
	if err != nil {
		return LinkMissing, ""
	}
	switch kind {
	case platform.KindSymlink:
		target, err := platform.ReadSymlinkTarget(modulePath)
		if err != nil {
			return LinkForeign, ""
		}
		if platform.IsWithin(target, repoDir) {
			return LinkBound, target
		}
		return LinkForeign, target
	case platform.KindDir:
		return LinkInstalled, ""
	case platform.KindFile:
		return LinkForeign, ""
	default:
		return LinkMissing, ""
	}
}
