// Package project loads project.json manifests and the global.json settings
// that tell the resolver where sibling projects live.
package project

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/internal/jsonorder"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/version"
)

// FileName is the project manifest file name.
const FileName = "project.json"

var (
	// ErrProjectNotFound is returned when no manifest exists at a path.
	ErrProjectNotFound = zerr.New("project file not found")
	// ErrInvalidProject is returned when a manifest cannot be understood.
	ErrInvalidProject = zerr.New("invalid project file")
)

// defaultVersion is used when a manifest omits "version".
var defaultVersion = version.NewVersion(1, 0, 0)

// Project is a loaded project manifest.
type Project struct {
	Name             string
	Version          *version.NuGetVersion
	ProjectFilePath  string
	Dependencies     []library.Dependency
	TargetFrameworks []*TargetFrameworkInformation
}

// TargetFrameworkInformation holds the dependencies declared for one
// framework. Framework assemblies appear as platform references.
type TargetFrameworkInformation struct {
	Framework    *frameworks.NuGetFramework
	Dependencies []library.Dependency
}

// ProjectDirectory returns the directory holding the manifest.
func (p *Project) ProjectDirectory() string {
	return filepath.Dir(p.ProjectFilePath)
}

// TargetFramework returns the declared information for framework, or nil
// when the project does not target it.
func (p *Project) TargetFramework(framework *frameworks.NuGetFramework) *TargetFrameworkInformation {
	for _, tfi := range p.TargetFrameworks {
		if tfi.Framework.Equals(framework) {
			return tfi
		}
	}
	return nil
}

// DependenciesFor returns the shared dependencies followed by those declared
// for framework.
func (p *Project) DependenciesFor(framework *frameworks.NuGetFramework) []library.Dependency {
	deps := make([]library.Dependency, 0, len(p.Dependencies))
	deps = append(deps, p.Dependencies...)
	if tfi := p.TargetFramework(framework); tfi != nil {
		deps = append(deps, tfi.Dependencies...)
	}
	return deps
}

// Load reads a project from a project.json path or from the directory
// holding one.
func Load(path string) (*Project, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerr.With(ErrProjectNotFound, "path", path)
		}
		return nil, zerr.Wrap(err, "failed to read project file")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := filepath.Base(filepath.Dir(abs))
	return Parse(bytes.NewReader(data), name, abs)
}

// Parse reads a project manifest. The project name is not part of the
// document; callers pass the name of the directory holding it.
func Parse(r io.Reader, name, projectFilePath string) (*Project, error) {
	root, err := jsonorder.Decode(r)
	if err != nil {
		return nil, invalid(projectFilePath, "", err)
	}
	if root.Kind != jsonorder.Object {
		return nil, invalid(projectFilePath, "", fmt.Errorf("expected object, got %s", root.Kind))
	}

	p := &Project{
		Name:            name,
		Version:         defaultVersion,
		ProjectFilePath: projectFilePath,
	}

	if v := root.Get("version"); v != nil {
		if v.Kind != jsonorder.String {
			return nil, invalid(projectFilePath, "version", fmt.Errorf("expected string, got %s", v.Kind))
		}
		ver, err := version.Parse(v.String)
		if err != nil {
			return nil, invalid(projectFilePath, "version", err)
		}
		p.Version = ver
	}

	if p.Dependencies, err = parseDependencies(root.Get("dependencies"), "dependencies"); err != nil {
		return nil, invalid(projectFilePath, "dependencies", err)
	}

	if fws := root.Get("frameworks"); fws != nil {
		if fws.Kind != jsonorder.Object {
			return nil, invalid(projectFilePath, "frameworks", fmt.Errorf("expected object, got %s", fws.Kind))
		}
		for _, m := range fws.Members {
			tfi, err := parseTargetFramework(m.Key, m.Value)
			if err != nil {
				return nil, invalid(projectFilePath, "frameworks."+m.Key, err)
			}
			p.TargetFrameworks = append(p.TargetFrameworks, tfi)
		}
	}

	return p, nil
}

func parseTargetFramework(key string, value *jsonorder.Value) (*TargetFrameworkInformation, error) {
	fw, err := frameworks.ParseFramework(key)
	if err != nil {
		return nil, err
	}
	tfi := &TargetFrameworkInformation{Framework: fw}
	if value.Kind == jsonorder.Null {
		return tfi, nil
	}
	if value.Kind != jsonorder.Object {
		return nil, fmt.Errorf("expected object, got %s", value.Kind)
	}

	if tfi.Dependencies, err = parseDependencies(value.Get("dependencies"), "dependencies"); err != nil {
		return nil, err
	}

	fxDeps, err := parseDependencies(value.Get("frameworkAssemblies"), "frameworkAssemblies")
	if err != nil {
		return nil, err
	}
	for _, dep := range fxDeps {
		dep.Range.IsPlatformReference = true
		tfi.Dependencies = append(tfi.Dependencies, dep)
	}
	return tfi, nil
}

// parseDependencies reads a dependencies object. A value is either a
// version range string or {"version": ..., "type": ...}.
func parseDependencies(value *jsonorder.Value, section string) ([]library.Dependency, error) {
	if value == nil || value.Kind == jsonorder.Null {
		return nil, nil
	}
	if value.Kind != jsonorder.Object {
		return nil, fmt.Errorf("%s: expected object, got %s", section, value.Kind)
	}

	deps := make([]library.Dependency, 0, len(value.Members))
	for _, m := range value.Members {
		if m.Key == "" {
			return nil, fmt.Errorf("%s: empty dependency name", section)
		}

		var rangeText, typeText string
		switch m.Value.Kind {
		case jsonorder.String:
			rangeText = m.Value.String
		case jsonorder.Object:
			if v := m.Value.Get("version"); v != nil && v.Kind == jsonorder.String {
				rangeText = v.String
			}
			if t := m.Value.Get("type"); t != nil && t.Kind == jsonorder.String {
				typeText = t.String
			}
		default:
			return nil, fmt.Errorf("%s.%s: expected string or object, got %s", section, m.Key, m.Value.Kind)
		}

		var vr *version.VersionRange
		if rangeText != "" {
			parsed, err := version.ParseRange(rangeText)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", section, m.Key, err)
			}
			vr = parsed
		}

		depType, err := library.ParseDependencyType(typeText)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", section, m.Key, err)
		}

		deps = append(deps, library.Dependency{
			Range: library.NewRange(m.Key, vr),
			Type:  depType,
		})
	}
	return deps, nil
}

func invalid(path, key string, err error) error {
	wrapped := zerr.With(zerr.Wrap(err, ErrInvalidProject.Error()), "path", path)
	if key != "" {
		wrapped = zerr.With(wrapped, "key", key)
	}
	return wrapped
}
