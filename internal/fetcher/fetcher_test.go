package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloner struct {
	calls []string
	err   error
}

func (f *fakeCloner) Clone(_ context.Context, url, dir string) error {
	f.calls = append(f.calls, url)
	if f.err != nil {
		// Leave a partial directory behind like a failed git clone would.
		_ = os.MkdirAll(dir, 0755)
		return f.err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"left-pad"}`), 0644)
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/acme/left-pad-fork.git", "left-pad-fork", false},
		{"https://github.com/acme/left-pad-fork", "left-pad-fork", false},
		{"https://github.com/acme/left-pad-fork/", "left-pad-fork", false},
		{"git@github.com:acme/left-pad-fork.git", "left-pad-fork", false},
		{"git@host:repo.git", "repo", false},
		{"/srv/git/local-repo", "local-repo", false},
		{"", "", true},
		{"https://", "", true},
		{"https://github.com/acme/node_modules.git", "", true},
		{"https://github.com/acme/..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := RepoName(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchClonesIntoCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "lnr")
	cloner := &fakeCloner{}
	f := New(cache, cloner)

	res, err := f.Fetch(context.Background(), "https://github.com/acme/left-pad-fork.git")
	require.NoError(t, err)

	assert.True(t, res.Cloned)
	assert.Equal(t, "left-pad-fork", res.RepoName)
	assert.Equal(t, filepath.Join(cache, "left-pad-fork"), res.Dir)
	assert.FileExists(t, filepath.Join(res.Dir, "package.json"))
	assert.NoDirExists(t, res.Dir+tmpSuffix)
}

func TestFetchIsIdempotentByDirectory(t *testing.T) {
	cache := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(cache, "left-pad-fork"), 0755))
	cloner := &fakeCloner{}

	res, err := New(cache, cloner).Fetch(context.Background(), "https://github.com/acme/left-pad-fork.git")
	require.NoError(t, err)

	assert.False(t, res.Cloned)
	assert.Empty(t, cloner.calls)
}

func TestFetchFailureCleansUp(t *testing.T) {
	cache := t.TempDir()
	cloner := &fakeCloner{err: errors.New("repository not found")}

	_, err := New(cache, cloner).Fetch(context.Background(), "https://github.com/acme/missing.git")
	require.Error(t, err)
	assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrFetchFailed))
	assert.Contains(t, err.Error(), "repository not found")

	assert.NoDirExists(t, filepath.Join(cache, "missing"))
	assert.NoDirExists(t, filepath.Join(cache, "missing"+tmpSuffix))
}

func TestFetchAsUsesGivenName(t *testing.T) {
	cache := t.TempDir()
	cloner := &fakeCloner{}
	f := New(cache, cloner)

	res, err := f.FetchAs(context.Background(), "https://example.com/acme/renamed.git", "left-pad-fork")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "left-pad-fork"), res.Dir)
	assert.True(t, res.Cloned)

	for _, name := range []string{"../escape", "..", "workspaces"} {
		_, err = f.FetchAs(context.Background(), "https://example.com/x.git", name)
		assert.True(t, lnrerrors.IsErrorCode(err, lnrerrors.ErrInvalidInput), name)
	}
	assert.Len(t, cloner.calls, 1)
}
