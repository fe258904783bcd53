package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the user-level NuGet.config path
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nuget", "NuGet", "NuGet.Config")
}

// FindNuGetConfig returns the NuGet.config that applies to a project in
// projectDir: the nearest one at or above it, then the user config. It
// returns "" when neither exists.
func FindNuGetConfig(projectDir string) string {
	if path := FindConfigFileFrom(projectDir); path != "" {
		return path
	}
	if path := UserConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadForProject loads the NuGet.config found by FindNuGetConfig, or
// returns nil when there is none.
func LoadForProject(projectDir string) (*NuGetConfig, error) {
	path := FindNuGetConfig(projectDir)
	if path == "" {
		return nil, nil
	}
	return LoadNuGetConfig(path)
}
