package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/internal/jsonorder"
)

// GlobalSettingsFileName is the solution-level settings file.
const GlobalSettingsFileName = "global.json"

// GlobalSettings is a parsed global.json.
type GlobalSettings struct {
	// ProjectSearchPaths are relative to the settings directory.
	ProjectSearchPaths []string
	PackagesPath       string
	FilePath           string
}

// Directory returns the directory holding global.json.
func (g *GlobalSettings) Directory() string {
	return filepath.Dir(g.FilePath)
}

// LoadGlobalSettings reads global.json from dir.
func LoadGlobalSettings(dir string) (*GlobalSettings, error) {
	path := filepath.Join(dir, GlobalSettingsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read global settings"), "path", path)
	}

	root, err := jsonorder.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalid(path, "", err)
	}
	if root.Kind != jsonorder.Object {
		return nil, invalid(path, "", fmt.Errorf("expected object, got %s", root.Kind))
	}

	settings := &GlobalSettings{FilePath: path}
	if projects := root.Get("projects"); projects != nil {
		if projects.Kind != jsonorder.Array {
			return nil, invalid(path, "projects", fmt.Errorf("expected array, got %s", projects.Kind))
		}
		for _, item := range projects.Items {
			if item.Kind != jsonorder.String {
				return nil, invalid(path, "projects", fmt.Errorf("expected string, got %s", item.Kind))
			}
			settings.ProjectSearchPaths = append(settings.ProjectSearchPaths, item.String)
		}
	}
	if packages := root.Get("packages"); packages != nil && packages.Kind == jsonorder.String {
		settings.PackagesPath = packages.String
	}
	return settings, nil
}

// FindGlobalSettings walks up from dir looking for global.json. It returns
// nil without error when none exists.
func FindGlobalSettings(dir string) (*GlobalSettings, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, GlobalSettingsFileName)); err == nil {
			return LoadGlobalSettings(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
