// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

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

// DefaultLessonPath builds the default lesson file path for a slug.
func DefaultLessonPath(slug string) string {
	return filepath.Join(XDGConfigHome(), "sketchtrace", "lessons", slug+".toml")
}

// DefaultLessonDir returns the default directory for lesson files.
func DefaultLessonDir() string {
	return filepath.Join(XDGConfigHome(), "sketchtrace", "lessons")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "sketchtrace", "sketchtrace.db")
}

// DefaultRecordingDir returns the default directory for stroke recordings.
func DefaultRecordingDir() string {
	return filepath.Join(XDGDataHome(), "sketchtrace", "recordings")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "sketchtrace", "config.toml")
}
