// Package config manages user-level settings stored at
// $XDG_CONFIG_HOME/lnr/config.yaml, overridable through LNR_* environment
// variables. Settings cover the git binary and clone depth used by fetch,
// the project directory names and the advisory lock timeout.
package config
