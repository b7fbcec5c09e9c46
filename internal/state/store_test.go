package state

import (
	"os"
	"path/filepath"
	"testing"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"lnr.json", "lnr-local.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{\n  \"packages\": {}\n}\n"), 0644))
	}
	return NewStore(filepath.Join(dir, "lnr.json"), filepath.Join(dir, "lnr-local.json")), dir
}

func TestRecordRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	f := store.File(Shared)

	tests := []struct {
		name string
		rec  Record
	}{
		{"unbound", Record{RepoName: "left-pad-fork"}},
		{"bound prod", Record{RepoName: "left-pad-fork", NodeVersion: StringPtr("1.3.0"), Dev: BoolPtr(false)}},
		{"bound without prior entry", Record{RepoName: "x", NodeVersion: StringPtr("")}},
		{"dev with url", Record{RepoName: "y", Dev: BoolPtr(true), RepoURL: "git@github.com:acme/y.git"}},
		{"workspaces", Record{RepoName: "z", NodeVersion: StringPtr("^2.0.0"), Workspaces: map[string]string{"packages/web": "^2.0.0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.Write("pkg", tt.rec))
			got, err := f.Read("pkg")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.rec, *got)
		})
	}
}

func TestWriteIsStableAndPretty(t *testing.T) {
	store, dir := newTestStore(t)
	f := store.File(Shared)

	require.NoError(t, f.Write("zeta", Record{RepoName: "zeta"}))
	require.NoError(t, f.Write("alpha", Record{RepoName: "alpha", NodeVersion: StringPtr("1.0.0")}))

	data, err := os.ReadFile(filepath.Join(dir, "lnr.json"))
	require.NoError(t, err)

	want := `{
  "packages": {
    "alpha": {
      "repo_name": "alpha",
      "node_version": "1.0.0"
    },
    "zeta": {
      "repo_name": "zeta"
    }
  }
}
`
	assert.Equal(t, want, string(data))
}

func TestUnknownTopLevelKeysSurvive(t *testing.T) {
	store, dir := newTestStore(t)
	path := filepath.Join(dir, "lnr.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"comment":"managed by lnr","packages":{}}`), 0644))

	require.NoError(t, store.File(Shared).Write("a", Record{RepoName: "a"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"comment":"managed by lnr","packages":{"a":{"repo_name":"a"}}}`, string(data))
}

func TestNullNodeVersionReadsAsUnbound(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lnr.json"),
		[]byte(`{"packages":{"a":{"repo_name":"a","node_version":null}}}`), 0644))

	rec, err := store.File(Shared).Read("a")
	require.NoError(t, err)
	assert.False(t, rec.Bound())
}

func TestCorruptState(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{packages:"},
		{"missing packages", `{}`},
		{"record without repo", `{"packages":{"a":{}}}`},
		{"wrong type", `{"packages":{"a":{"repo_name":"a","dev":"yes"}}}`},
		{"repo name with slash", `{"packages":{"a":{"repo_name":"../etc"}}}`},
		{"repo name is parent", `{"packages":{"a":{"repo_name":".."}}}`},
		{"repo name is cache", `{"packages":{"a":{"repo_name":"."}}}`},
		{"repo name is backup dir", `{"packages":{"a":{"repo_name":"node_modules"}}}`},
		{"repo name is workspace backups", `{"packages":{"a":{"repo_name":"workspaces"}}}`},
		{"package name escapes", `{"packages":{"../victim":{"repo_name":"victim"}}}`},
		{"package name uppercase", `{"packages":{"Left-Pad":{"repo_name":"left-pad"}}}`},
		{"workspace outside root", `{"packages":{"a":{"repo_name":"a","workspaces":{"packages/../../x":"1.0.0"}}}}`},
		{"workspace absolute", `{"packages":{"a":{"repo_name":"a","workspaces":{"/etc":"1.0.0"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newTestStore(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "lnr.json"), []byte(tt.content), 0644))

			_, err := store.File(Shared).Read("a")
			require.Error(t, err)
			assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrCorruptState), "got %v", err)
		})
	}
}

func TestMissingFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	f := NewFile("lnr-local.json", filepath.Join(dir, "lnr-local.json"))

	rec, err := f.Read("a")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, f.Write("a", Record{RepoName: "a"}))
	assert.FileExists(t, filepath.Join(dir, "lnr-local.json"))
}

func TestResolvePrefersShared(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.File(Local).Write("a", Record{RepoName: "local-a"}))
	require.NoError(t, store.File(Shared).Write("a", Record{RepoName: "shared-a"}))
	require.NoError(t, store.File(Local).Write("b", Record{RepoName: "local-b"}))

	f, rec, err := store.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "lnr.json", f.Label)
	assert.Equal(t, "shared-a", rec.RepoName)

	f, rec, err = store.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "lnr-local.json", f.Label)
	assert.Equal(t, "local-b", rec.RepoName)

	_, _, err = store.Resolve("c")
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrNotFound))

	dups, err := store.Duplicates()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, dups)
}

func TestInsertGuardsAgainstDuplicates(t *testing.T) {
	store, _ := newTestStore(t)

	created, err := store.Insert(Local, "a", Record{RepoName: "a"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Insert(Local, "a", Record{RepoName: "other"})
	require.NoError(t, err)
	assert.False(t, created, "existing record in the same file is kept")
	rec, err := store.File(Local).Read("a")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.RepoName)

	_, err = store.Insert(Shared, "a", Record{RepoName: "a"})
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrConflict))
}

func TestInsertRejectsUnsafeNames(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"../victim", Record{RepoName: "victim"}},
		{"@scope/../x", Record{RepoName: "x"}},
		{"", Record{RepoName: "x"}},
		{"left-pad", Record{RepoName: ".."}},
		{"left-pad", Record{RepoName: "node_modules"}},
		{"left-pad", Record{RepoName: "a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name+" "+tt.rec.RepoName, func(t *testing.T) {
			store, _ := newTestStore(t)
			_, err := store.Insert(Shared, tt.name, tt.rec)
			assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrInvalidInput), "got %v", err)

			names, err := store.File(Shared).Names()
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestWorkspacesRecordedByRecursiveBindAreValid(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lnr.json"),
		[]byte(`{"packages":{"@acme/ui":{"repo_name":"ui","node_version":"","workspaces":{"packages/web":"^1.0.0","apps/site":""}}}}`), 0644))

	rec, err := store.File(Shared).Read("@acme/ui")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec.Workspaces, 2)
}

func TestDeleteAndNames(t *testing.T) {
	store, _ := newTestStore(t)
	f := store.File(Shared)
	require.NoError(t, f.Write("b", Record{RepoName: "b"}))
	require.NoError(t, f.Write("a", Record{RepoName: "a"}))

	names, err := f.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, f.Delete("a"))
	require.NoError(t, f.Delete("missing"))

	names, err = f.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}
