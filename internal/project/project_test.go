package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lnr.json"), []byte(emptyState), 0644))
	nested := filepath.Join(root, "packages", "app", "src")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := Locate(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	got, err = Locate(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestLocateNotInitialized(t *testing.T) {
	_, err := Locate(t.TempDir())
	require.Error(t, err)
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrNotInitialized))
}

func TestLocateIgnoresDirectoryMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "lnr.json"), 0755))

	_, err := Locate(root)
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrNotInitialized))
}

func TestInit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules"), 0644))
	layout := NewLayout(root, "", "")

	require.NoError(t, Init(layout))

	for _, f := range []string{layout.StatePath(), layout.LocalStatePath()} {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"packages":{}}`, string(data))
	}
	assert.DirExists(t, layout.CachePath())

	gitignore, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "node_modules\n/lnr-local.json\n/lnr/\n/.lnr.lock\n", string(gitignore))

	err = Init(layout)
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrConflict))
}

func TestAddToGitignoreIsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, AddToGitignore(root, "/lnr/"))
	require.NoError(t, AddToGitignore(root, "/lnr/"))

	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "/lnr/\n", string(data))
}

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("/work/app", "", "")

	assert.Equal(t, "/work/app/lnr/left-pad-fork", l.RepoPath("left-pad-fork"))
	assert.Equal(t, "/work/app/node_modules/@acme/core", l.ModulePath(l.Root, "@acme/core"))
	assert.Equal(t, "/work/app/lnr/node_modules/@acme/core", l.BackupPath("", "@acme/core"))
	assert.Equal(t, "/work/app/lnr/workspaces/packages/web/node_modules/left-pad", l.BackupPath("packages/web", "left-pad"))
	assert.Equal(t, "file:./lnr/left-pad-fork", l.FileReference(l.Root, "left-pad-fork"))
	assert.Equal(t, "file:../../lnr/left-pad-fork", l.FileReference("/work/app/packages/web", "left-pad-fork"))
}

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"left-pad", true},
		{"@acme/core", true},
		{"lodash.merge", true},
		{"~tilde", true},
		{"", false},
		{"..", false},
		{"../victim", false},
		{"@acme/../x", false},
		{"@acme/", false},
		{"Left-Pad", false},
		{".hidden", false},
		{"a/b", false},
		{"a\\b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrInvalidInput))
		})
	}
}

func TestValidateRepoName(t *testing.T) {
	for _, name := range []string{"left-pad-fork", "Repo.Name", "x"} {
		assert.NoError(t, ValidateRepoName(name), name)
	}
	for _, name := range []string{"", ".", "..", "node_modules", "workspaces", "a/b", `a\b`} {
		assert.True(t, lnrerrors.IsErrorCode(ValidateRepoName(name), lnrerrors.ErrInvalidInput), name)
	}
}

func TestContainedPaths(t *testing.T) {
	l := NewLayout("/work/app", "", "")

	path, err := l.ContainedRepoPath("left-pad-fork")
	require.NoError(t, err)
	assert.Equal(t, "/work/app/lnr/left-pad-fork", path)

	_, err = l.ContainedRepoPath("..")
	assert.Error(t, err)

	path, err = l.ContainedModulePath("/work/app/packages/web", "@acme/core")
	require.NoError(t, err)
	assert.Equal(t, "/work/app/packages/web/node_modules/@acme/core", path)

	_, err = l.ContainedModulePath(l.Root, "../victim")
	assert.Error(t, err)

	_, err = l.ContainedModulePath("/work/other", "left-pad")
	assert.Error(t, err)
}

func TestLockIsExclusive(t *testing.T) {
	layout := NewLayout(t.TempDir(), "", "")

	release, err := Lock(context.Background(), layout)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = Lock(ctx, layout)
	require.Error(t, err)
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrLocked))

	release()

	release2, err := Lock(context.Background(), layout)
	require.NoError(t, err)
	release2()
}
