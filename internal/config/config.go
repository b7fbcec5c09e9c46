package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/lnr-labs/lnr/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyGitBinary      = "git_binary"
	KeyCloneDepth     = "clone_depth"
	KeyCacheDir       = "cache_dir"
	KeyModulesDir     = "modules_dir"
	KeyPackageManager = "package_manager"
	KeyLockTimeout    = "lock_timeout"
)

// Keys returns every configuration key lnr reads, in display order.
func Keys() []string {
	return []string{KeyGitBinary, KeyCloneDepth, KeyCacheDir, KeyModulesDir, KeyPackageManager, KeyLockTimeout}
}

// IsKnownKey reports whether key is one of Keys.
func IsKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Settings is the resolved configuration handed to the rest of the program.
type Settings struct {
	GitBinary      string
	CloneDepth     int
	CacheDir       string
	ModulesDir     string
	PackageManager string
	LockTimeout    time.Duration
}

// Dir returns the lnr config directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, branding.CLIName())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyGitBinary, "git")
	viper.SetDefault(KeyCloneDepth, 1)
	viper.SetDefault(KeyCacheDir, "lnr")
	viper.SetDefault(KeyModulesDir, "node_modules")
	viper.SetDefault(KeyPackageManager, "npm")
	viper.SetDefault(KeyLockTimeout, "5s")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the settings resolved from file, environment and defaults.
func Current() Settings {
	return Settings{
		GitBinary:      viper.GetString(KeyGitBinary),
		CloneDepth:     viper.GetInt(KeyCloneDepth),
		CacheDir:       viper.GetString(KeyCacheDir),
		ModulesDir:     viper.GetString(KeyModulesDir),
		PackageManager: viper.GetString(KeyPackageManager),
		LockTimeout:    viper.GetDuration(KeyLockTimeout),
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
