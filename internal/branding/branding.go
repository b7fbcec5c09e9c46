// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded with //go:embed; editing it and rebuilding is
// enough to rename the tool and the project files it manages.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	EnvPrefix      string `yaml:"env_prefix"`
	GoModule       string `yaml:"go_module"`
	StateFile      string `yaml:"state_file"`
	LocalStateFile string `yaml:"local_state_file"`
	LockFile       string `yaml:"lock_file"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:        "lnr",
			DisplayName:    "lnr",
			Description:    "Work against local clones of your dependencies",
			EnvPrefix:      "LNR",
			GoModule:       "github.com/lnr-labs/lnr",
			StateFile:      "lnr.json",
			LocalStateFile: "lnr-local.json",
			LockFile:       ".lnr.lock",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "lnr").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "LNR").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// StateFile returns the shared state file name, which doubles as the
// project root marker (e.g., "lnr.json").
func StateFile() string { load(); return defaults.StateFile }

// LocalStateFile returns the private, git-ignored state file name.
func LocalStateFile() string { load(); return defaults.LocalStateFile }

// LockFile returns the name of the advisory lock file in the project root.
func LockFile() string { load(); return defaults.LockFile }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("cache_dir") → "LNR_CACHE_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
