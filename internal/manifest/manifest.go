package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Group is a dependency group in package.json.
type Group int

const (
	// Prod is the "dependencies" group.
	Prod Group = iota
	// Dev is the "devDependencies" group.
	Dev
)

// FileRefPrefix marks a local-path dependency value.
const FileRefPrefix = "file:"

// Key returns the package.json key of the group.
func (g Group) Key() string {
	if g == Dev {
		return "devDependencies"
	}
	return "dependencies"
}

// String returns a short label for output.
func (g Group) String() string {
	if g == Dev {
		return "dev"
	}
	return "prod"
}

// GroupFor maps a dev flag to its group.
func GroupFor(dev bool) Group {
	if dev {
		return Dev
	}
	return Prod
}

// IsFileReference reports whether a dependency value is a local-path reference.
func IsFileReference(value string) bool {
	return strings.HasPrefix(value, FileRefPrefix)
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Manifest is a package.json on disk. Every call re-reads the file.
type Manifest struct {
	Path string
}

// Open returns a Manifest for the package.json at path. The file is not read
// until an operation needs it.
func Open(path string) *Manifest {
	return &Manifest{Path: path}
}

// OpenDir returns the Manifest for dir/package.json.
func OpenDir(dir string) *Manifest {
	return Open(filepath.Join(dir, "package.json"))
}

// Exists reports whether the manifest file exists.
func (m *Manifest) Exists() bool {
	info, err := os.Stat(m.Path)
	return err == nil && !info.IsDir()
}

func (m *Manifest) read() ([]byte, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrManifest, "reading %s", m.Path)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, lnrerrors.Newf(lnrerrors.ErrManifest, "%s is not a valid JSON object", m.Path)
	}
	return data, nil
}

func (m *Manifest) write(data []byte, reformat bool) error {
	if reformat {
		data = pretty.PrettyOptions(data, prettyOptions)
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(m.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := renameio.WriteFile(m.Path, data, mode); err != nil {
		return lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "writing %s", m.Path)
	}
	return nil
}

// FindDependency looks name up in the prod group, then the dev group.
func (m *Manifest) FindDependency(name string) (Group, string, bool, error) {
	data, err := m.read()
	if err != nil {
		return Prod, "", false, err
	}
	for _, g := range []Group{Prod, Dev} {
		res := gjson.GetBytes(data, depPath(g, name))
		if res.Exists() {
			return g, res.String(), true, nil
		}
	}
	return Prod, "", false, nil
}

// Dependency returns the value declared for name in group.
func (m *Manifest) Dependency(group Group, name string) (string, bool, error) {
	data, err := m.read()
	if err != nil {
		return "", false, err
	}
	res := gjson.GetBytes(data, depPath(group, name))
	return res.String(), res.Exists(), nil
}

// SetDependency creates or overwrites name in group.
func (m *Manifest) SetDependency(group Group, name, value string) error {
	data, err := m.read()
	if err != nil {
		return err
	}
	path := depPath(group, name)
	existed := gjson.GetBytes(data, path).Exists()

	out, err := sjson.SetBytes(data, path, value)
	if err != nil {
		return lnrerrors.Wrapf(err, lnrerrors.ErrManifest, "setting %s.%s", group.Key(), name)
	}
	return m.write(out, !existed)
}

// RemoveDependency deletes name from group. Removing an absent entry is a
// no-op.
func (m *Manifest) RemoveDependency(group Group, name string) error {
	data, err := m.read()
	if err != nil {
		return err
	}
	path := depPath(group, name)
	if !gjson.GetBytes(data, path).Exists() {
		return nil
	}

	out, err := sjson.DeleteBytes(data, path)
	if err != nil {
		return lnrerrors.Wrapf(err, lnrerrors.ErrManifest, "removing %s.%s", group.Key(), name)
	}
	return m.write(out, true)
}

// PackageName returns the manifest's own "name" field.
func (m *Manifest) PackageName() (string, error) {
	return m.stringField("name")
}

// PackageVersion returns the manifest's own "version" field.
func (m *Manifest) PackageVersion() (string, error) {
	return m.stringField("version")
}

func (m *Manifest) stringField(key string) (string, error) {
	data, err := m.read()
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, key).String(), nil
}

// Workspaces expands the "workspaces" globs (array form or the yarn
// {"packages": [...]} form) into member directories relative to the
// manifest's directory. Only directories holding a package.json are kept.
func (m *Manifest) Workspaces() ([]string, error) {
	data, err := m.read()
	if err != nil {
		return nil, err
	}

	ws := gjson.GetBytes(data, "workspaces")
	if ws.IsObject() {
		ws = ws.Get("packages")
	}
	if !ws.IsArray() {
		return nil, nil
	}

	root := filepath.Dir(m.Path)
	seen := map[string]bool{}
	var members []string
	for _, pattern := range ws.Array() {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern.String())))
		if err != nil {
			return nil, lnrerrors.Wrapf(err, lnrerrors.ErrManifest, "expanding workspace pattern %q", pattern.String())
		}
		for _, match := range matches {
			if !OpenDir(match).Exists() {
				continue
			}
			rel, err := filepath.Rel(root, match)
			if err != nil || rel == "." {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !seen[rel] {
				seen[rel] = true
				members = append(members, rel)
			}
		}
	}
	sort.Strings(members)
	return members, nil
}

func depPath(group Group, name string) string {
	return group.Key() + "." + escapeKey(name)
}

// escapeKey escapes characters with meaning in gjson/sjson paths, such as
// the "." and "@" that appear in scoped package names.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', ':', ',', '[', ']', '{', '}', '"':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Snapshot returns the raw manifest bytes so an edit can be undone exactly.
func (m *Manifest) Snapshot() ([]byte, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, lnrerrors.Wrapf(err, lnrerrors.ErrManifest, "reading %s", m.Path)
	}
	return data, nil
}

// Restore writes back bytes taken with Snapshot.
func (m *Manifest) Restore(data []byte) error {
	return m.write(data, false)
}
