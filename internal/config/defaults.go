package config

import (
	"os"
	"path/filepath"

	"media-scribe/internal/domain"
)

// DefaultSettingsPath returns ~/.media-transcriber/settings.json.
func DefaultSettingsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".media-transcriber", "settings.json")
}

// DefaultSettings returns baseline preferences for first launch. An empty
// model means the provider default.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Model:             "",
		IncludeTimestamps: true,
	}
}

// SettingsFile returns the configured settings file or the default location.
func (c *Config) SettingsFile() string {
	if c.SettingsPath != "" {
		return c.SettingsPath
	}
	return DefaultSettingsPath()
}
