package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalSettingsFile overrides the global settings when present in the working directory
	LocalSettingsFile = ".ytsum.jsonc"
)

var (
	// ConfigDir is the global configuration directory (~/.ytsum)
	ConfigDir string

	// DatabasePath is the SQLite database file for submission history
	DatabasePath string

	// SettingsFile is the global JSONC settings file
	SettingsFile string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string
)

const defaultSettings = `{
  // Base URL of the summarization backend. API_BASE overrides it.
  "api_base": "",

  // Upper bound for one summarize call (Go duration, e.g. "90s", "3m")
  "request_timeout": "120s",

  // Record settled submissions in ytsum.db
  "history_enabled": true,

  // Default output for "ytsum summarize": text, json, yaml or summary
  "output": ""
}
`

// Initialize sets up the configuration directory and files
// It creates ~/.ytsum/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".ytsum"))
}

// InitializeAt is Initialize rooted at dir instead of the home directory
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "ytsum.db")
	SettingsFile = filepath.Join(ConfigDir, "config.jsonc")
	LogFile = filepath.Join(ConfigDir, "ytsum.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(SettingsFile, []byte(defaultSettings), FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(LocalSettingsFile); err == nil {
		return LocalSettingsFile
	}
	return SettingsFile
}
