// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "ikiflow"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultHistoryPath returns the per-user session history file.
func DefaultHistoryPath() string {
	return filepath.Join(XDGDataHome(), appDir, "history.json")
}

// DefaultPrefsPath returns the path for the SQLite preference store.
func DefaultPrefsPath() string {
	return filepath.Join(XDGDataHome(), appDir, "prefs.db")
}

// DefaultLockPath returns the single-instance lock file.
func DefaultLockPath() string {
	return filepath.Join(XDGDataHome(), appDir, "ikiflow.lock")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}
