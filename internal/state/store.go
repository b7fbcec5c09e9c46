package state

import (
	"path/filepath"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/project"
)

// Scope selects one of the two state files.
type Scope int

const (
	// Shared is lnr.json, committed with the project.
	Shared Scope = iota
	// Local is lnr-local.json, private to one checkout.
	Local
)

// Store is the single logical namespace over both state files.
type Store struct {
	shared *File
	local  *File
}

// NewStore returns a Store over the shared and local state file paths.
func NewStore(sharedPath, localPath string) *Store {
	return &Store{
		shared: NewFile(filepath.Base(sharedPath), sharedPath),
		local:  NewFile(filepath.Base(localPath), localPath),
	}
}

// File returns the backing file for scope.
func (s *Store) File(scope Scope) *File {
	if scope == Local {
		return s.local
	}
	return s.shared
}

// Files returns both backing files in lookup order.
func (s *Store) Files() []*File {
	return []*File{s.shared, s.local}
}

// Resolve finds the record for name, checking the shared file before the
// local one. It fails with ErrNotFound when neither holds name.
func (s *Store) Resolve(name string) (*File, Record, error) {
	for _, f := range s.Files() {
		rec, err := f.Read(name)
		if err != nil {
			return nil, Record{}, err
		}
		if rec != nil {
			return f, *rec, nil
		}
	}
	return nil, Record{}, lnrerrors.Newf(lnrerrors.ErrNotFound,
		"package %q is not recorded in %s or %s", name, s.shared.Label, s.local.Label)
}

// Insert records name in the file for scope. A name already recorded in the
// other file is a conflict; an existing record in the same file is left
// untouched and reported through the returned bool. Names and repository
// directories are validated first.
func (s *Store) Insert(scope Scope, name string, rec Record) (bool, error) {
	if err := project.ValidatePackageName(name); err != nil {
		return false, err
	}
	if err := project.ValidateRepoName(rec.RepoName); err != nil {
		return false, err
	}

	target := s.File(scope)
	other := s.File(otherScope(scope))

	existing, err := other.Read(name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, lnrerrors.Newf(lnrerrors.ErrConflict,
			"package %q is already recorded in %s", name, other.Label).WithDetail("file", other.Label)
	}

	existing, err = target.Read(name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if err := target.Write(name, rec); err != nil {
		return false, err
	}
	return true, nil
}

// Duplicates returns the names recorded in both files, sorted.
func (s *Store) Duplicates() ([]string, error) {
	sharedNames, err := s.shared.Names()
	if err != nil {
		return nil, err
	}
	localRecs, err := s.local.Records()
	if err != nil {
		return nil, err
	}

	var dups []string
	for _, name := range sharedNames {
		if _, ok := localRecs[name]; ok {
			dups = append(dups, name)
		}
	}
	return dups, nil
}

func otherScope(scope Scope) Scope {
	if scope == Local {
		return Shared
	}
	return Local
}
