package packaging

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/version"
)

// Nuspec represents the parts of a .nuspec manifest the resolver reads.
type Nuspec struct {
	XMLName  xml.Name       `xml:"package"`
	Metadata NuspecMetadata `xml:"metadata"`
}

// NuspecMetadata represents the metadata section.
type NuspecMetadata struct {
	ID          string `xml:"id"`
	Version     string `xml:"version"`
	Description string `xml:"description"`
	Authors     string `xml:"authors"`
	Serviceable bool   `xml:"serviceable"`

	Dependencies        *DependenciesElement `xml:"dependencies"`
	FrameworkAssemblies []FrameworkAssembly  `xml:"frameworkAssemblies>frameworkAssembly"`
}

// DependenciesElement represents the dependencies container.
type DependenciesElement struct {
	Groups []DependencyGroup `xml:"group"`
	// Legacy: dependencies without groups (applies to all frameworks)
	Dependencies []Dependency `xml:"dependency"`
}

// DependencyGroup represents dependencies for a specific framework.
type DependencyGroup struct {
	TargetFramework string       `xml:"targetFramework,attr"`
	Dependencies    []Dependency `xml:"dependency"`
}

// Dependency represents a package dependency.
type Dependency struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

// FrameworkAssembly is a reference to an assembly installed with the
// framework. TargetFramework may list several frameworks separated by
// commas; empty means every framework.
type FrameworkAssembly struct {
	AssemblyName    string `xml:"assemblyName,attr"`
	TargetFramework string `xml:"targetFramework,attr"`
}

// ParsedDependencyGroup is a dependency group with its framework parsed.
type ParsedDependencyGroup struct {
	TargetFramework *frameworks.NuGetFramework
	Dependencies    []ParsedDependency
}

// ParsedDependency is a dependency with its version range parsed. A nil
// VersionRange accepts any version.
type ParsedDependency struct {
	ID           string
	VersionRange *version.VersionRange
}

// ParseNuspec parses a .nuspec XML document.
func ParseNuspec(r io.Reader) (*Nuspec, error) {
	var nuspec Nuspec
	if err := xml.NewDecoder(r).Decode(&nuspec); err != nil {
		return nil, fmt.Errorf("parse nuspec: %w", err)
	}
	if nuspec.Metadata.ID == "" {
		return nil, fmt.Errorf("parse nuspec: missing id")
	}
	return &nuspec, nil
}

// Version returns the parsed package version.
func (n *Nuspec) Version() (*version.NuGetVersion, error) {
	ver, err := version.Parse(n.Metadata.Version)
	if err != nil {
		return nil, fmt.Errorf("nuspec %s: %w", n.Metadata.ID, err)
	}
	return ver, nil
}

// DependencyGroups returns all dependency groups with parsed frameworks.
// Ungrouped dependencies form a group for AnyFramework.
func (n *Nuspec) DependencyGroups() ([]ParsedDependencyGroup, error) {
	if n.Metadata.Dependencies == nil {
		return nil, nil
	}

	var groups []ParsedDependencyGroup
	if len(n.Metadata.Dependencies.Dependencies) > 0 {
		deps, err := parseDependencies(n.Metadata.Dependencies.Dependencies)
		if err != nil {
			return nil, err
		}
		groups = append(groups, ParsedDependencyGroup{TargetFramework: frameworks.AnyFramework, Dependencies: deps})
	}

	for _, group := range n.Metadata.Dependencies.Groups {
		fw := frameworks.AnyFramework
		if group.TargetFramework != "" {
			parsed, err := frameworks.ParseFramework(group.TargetFramework)
			if err != nil {
				return nil, fmt.Errorf("parse target framework %q: %w", group.TargetFramework, err)
			}
			fw = parsed
		}

		deps, err := parseDependencies(group.Dependencies)
		if err != nil {
			return nil, err
		}
		groups = append(groups, ParsedDependencyGroup{TargetFramework: fw, Dependencies: deps})
	}
	return groups, nil
}

// DependenciesFor returns the dependencies of the group nearest to target.
func (n *Nuspec) DependenciesFor(target *frameworks.NuGetFramework) ([]ParsedDependency, error) {
	groups, err := n.DependencyGroups()
	if err != nil || len(groups) == 0 {
		return nil, err
	}

	available := make([]*frameworks.NuGetFramework, len(groups))
	for i, g := range groups {
		available[i] = g.TargetFramework
	}
	nearest := frameworks.GetNearest(target, available)
	if nearest == nil {
		return nil, nil
	}
	for _, g := range groups {
		if g.TargetFramework == nearest {
			return g.Dependencies, nil
		}
	}
	return nil, nil
}

// FrameworkAssembliesFor returns the framework assembly names that apply to
// target.
func (n *Nuspec) FrameworkAssembliesFor(target *frameworks.NuGetFramework) []string {
	var names []string
	for _, fa := range n.Metadata.FrameworkAssemblies {
		if fa.TargetFramework == "" {
			names = append(names, fa.AssemblyName)
			continue
		}
		for _, tfm := range strings.Split(fa.TargetFramework, ",") {
			fw, err := frameworks.ParseFramework(tfm)
			if err == nil && fw.IsCompatible(target) {
				names = append(names, fa.AssemblyName)
				break
			}
		}
	}
	return names
}

func parseDependencies(deps []Dependency) ([]ParsedDependency, error) {
	parsed := make([]ParsedDependency, 0, len(deps))
	for _, dep := range deps {
		pd := ParsedDependency{ID: dep.ID}
		if dep.Version != "" {
			vr, err := version.ParseRange(dep.Version)
			if err != nil {
				return nil, fmt.Errorf("parse version range %q for %q: %w", dep.Version, dep.ID, err)
			}
			pd.VersionRange = vr
		}
		parsed = append(parsed, pd)
	}
	return parsed, nil
}
