package config

import (
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestCurrentDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	isolateConfigHome(t)

	Load()
	s := Current()

	assert.Equal(t, "git", s.GitBinary)
	assert.Equal(t, 1, s.CloneDepth)
	assert.Equal(t, "lnr", s.CacheDir)
	assert.Equal(t, "node_modules", s.ModulesDir)
	assert.Equal(t, "npm", s.PackageManager)
	assert.Equal(t, 5*time.Second, s.LockTimeout)
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	isolateConfigHome(t)
	t.Setenv("LNR_CLONE_DEPTH", "0")
	t.Setenv("LNR_PACKAGE_MANAGER", "yarn")

	Load()
	s := Current()

	assert.Equal(t, 0, s.CloneDepth)
	assert.Equal(t, "yarn", s.PackageManager)
}

func isolateConfigHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey(KeyCloneDepth))
	assert.True(t, IsKnownKey("git_binary"))
	assert.False(t, IsKnownKey("catalog_url"))
	assert.Len(t, Keys(), 6)
}
