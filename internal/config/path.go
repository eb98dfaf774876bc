// Package config turns viper settings into typed configuration for qflow
// components.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the config and data directories.
const AppName = "qflow"

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// ConfigDir returns $XDG_CONFIG_HOME/qflow, falling back to ~/.config/qflow.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	return ExpandPath(filepath.Join("~", ".config", AppName))
}

// DefaultDatabasePath returns $XDG_DATA_HOME/qflow/qflow.db, falling back to
// ~/.local/share/qflow/qflow.db.
func DefaultDatabasePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName, AppName+".db")
	}
	return ExpandPath(filepath.Join("~", ".local", "share", AppName, AppName+".db"))
}

// TokenFile is where the interactive OAuth flow stores its token.
func TokenFile() string {
	return filepath.Join(ConfigDir(), "sheets-token.json")
}
