// Package config turns viper settings into the typed configuration the
// triage commands run with.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default locations, before ExpandPath.
const (
	DefaultConfigDir   = "~/.config/triage"
	DefaultStoragePath = "~/.local/share/triage/triage.db"
	DefaultTokenFile   = "~/.config/triage/token"
	DefaultLogFile     = "~/.local/share/triage/dashboard.log"
	DefaultSheetsToken = "~/.config/triage/sheets-token.json"
	DefaultCertDir     = "~/.config/triage/certs"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// EnsureParent creates the directory that will hold path.
func EnsureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o750)
}
