package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default; cobra keeps parsed values
// on the package-level command tree between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	xdg.Reload()
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		xdg.Reload()
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newProject initializes a project with left-pad recorded and cloned.
func newProject(t *testing.T) string {
	t.Helper()
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "app", "dependencies": {"left-pad": "1.3.0"}}`)

	_, err := run(t, "-C", root, "init")
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "lnr.json"), `{"packages": {"left-pad": {"repo_name": "left-pad-fork"}}}`)
	writeFile(t, filepath.Join(root, "lnr", "left-pad-fork", "package.json"), `{"name": "left-pad", "version": "1.3.1"}`)
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "index.js"), "module.exports = 1\n")
	return root
}

func TestInitTwiceConflicts(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	out, err := run(t, "-C", root, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized lnr")
	assert.FileExists(t, filepath.Join(root, "lnr.json"))
	assert.FileExists(t, filepath.Join(root, "lnr-local.json"))

	_, err = run(t, "-C", root, "init")
	assert.Equal(t, 12, lnrerrors.ExitCode(err))
}

func TestCommandsOutsideProject(t *testing.T) {
	isolate(t)
	_, err := run(t, "-C", t.TempDir(), "status")
	assert.Equal(t, 2, lnrerrors.ExitCode(err))
}

func TestBindStatusUnbind(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "-C", root, "bind", "left-pad")
	require.NoError(t, err)
	assert.Contains(t, out, "Bound left-pad (prod)")
	assert.Contains(t, out, "Installed copy moved aside")

	out, err = run(t, "-C", root, "status", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "left-pad")
	assert.Contains(t, out, "bound")
	assert.Contains(t, out, "1.3.1")
	assert.NotContains(t, out, "Drift")

	_, err = run(t, "-C", root, "doctor")
	require.NoError(t, err)

	_, err = run(t, "-C", root, "bind", "left-pad")
	assert.Equal(t, 4, lnrerrors.ExitCode(err))

	_, err = run(t, "-C", root, "unbind", "left-pad", "--explicit-version", "latest")
	assert.Equal(t, 7, lnrerrors.ExitCode(err))

	out, err = run(t, "-C", root, "unbind", "left-pad")
	require.NoError(t, err)
	assert.Contains(t, out, "Unbound left-pad at 1.3.0")
	assert.Contains(t, out, "Installed copy restored.")

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name": "app", "dependencies": {"left-pad": "1.3.0"}}`, string(data))
}

func TestUnbindToPackageVersionNeedsInstall(t *testing.T) {
	root := newProject(t)

	_, err := run(t, "-C", root, "bind", "left-pad", "--dev")
	require.NoError(t, err)

	out, err := run(t, "-C", root, "unbind", "left-pad", "-p")
	require.NoError(t, err)
	assert.Contains(t, out, "Unbound left-pad at 1.3.1 (dev)")
	assert.Contains(t, out, "Run 'npm install'")
}

func TestMutuallyExclusiveFlags(t *testing.T) {
	root := newProject(t)

	_, err := run(t, "-C", root, "bind", "left-pad", "--dev", "--prod")
	assert.Error(t, err)

	_, err = run(t, "-C", root, "unbind", "left-pad", "--old-version", "--explicit-version", "1.0.0")
	assert.Error(t, err)
}

func TestDoctorReportsDrift(t *testing.T) {
	root := newProject(t)

	_, err := run(t, "-C", root, "bind", "left-pad")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "node_modules", "left-pad")))

	out, err := run(t, "-C", root, "doctor")
	assert.Equal(t, 15, lnrerrors.ExitCode(err))
	assert.Contains(t, out, "left-pad: bound but")

	out, err = run(t, "-C", root, "install")
	require.NoError(t, err)
	assert.Contains(t, out, "Relinked: left-pad")

	_, err = run(t, "-C", root, "doctor")
	assert.NoError(t, err)
}

func TestDrop(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "-C", root, "drop", "left-pad")
	require.NoError(t, err)
	assert.Contains(t, out, "Dropped left-pad from lnr.json")
	assert.NoDirExists(t, filepath.Join(root, "lnr", "left-pad-fork"))

	_, err = run(t, "-C", root, "drop", "left-pad")
	assert.Equal(t, 3, lnrerrors.ExitCode(err))
}

func TestConfigCommands(t *testing.T) {
	isolate(t)

	_, err := run(t, "config", "set", "package_manager", "pnpm")
	require.NoError(t, err)

	out, err := run(t, "config", "get", "package_manager")
	require.NoError(t, err)
	assert.Equal(t, "pnpm\n", out)

	_, err = run(t, "config", "get", "nope")
	assert.Equal(t, 14, lnrerrors.ExitCode(err))
}

func TestVersion(t *testing.T) {
	isolate(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc", "today"

	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc","date":"today"}`, out)
}
