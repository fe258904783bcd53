package providers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/project"
)

var (
	frameworkV35 = frameworks.FrameworkVersion{Major: 3, Minor: 5}
	frameworkV40 = frameworks.FrameworkVersion{Major: 4}
)

// ProjectProvider resolves names to project.json manifests found on the
// project search paths.
type ProjectProvider struct {
	resolver *project.Resolver
	logger   observability.Logger
}

// NewProjectProvider creates a provider over resolver.
func NewProjectProvider(resolver *project.Resolver, opts ...Option) *ProjectProvider {
	o := buildOptions(opts)
	return &ProjectProvider{resolver: resolver, logger: o.logger}
}

func (p *ProjectProvider) Name() string { return "project" }

// AttemptedPaths lists the manifest locations probed for a name.
func (p *ProjectProvider) AttemptedPaths(*frameworks.NuGetFramework) []string {
	paths := make([]string, 0, len(p.resolver.SearchPaths()))
	for _, sp := range p.resolver.SearchPaths() {
		paths = append(paths, filepath.Join(sp, "{name}", project.FileName))
	}
	return paths
}

// Describe loads the project called r.Name. The version range is not
// checked: a project on disk always satisfies a reference to it.
//
// Desktop targets get implicit references to mscorlib and System, plus
// System.Core from 3.5 and Microsoft.CSharp from 4.0. A project without a
// framework compatible with the target is returned with Resolved false.
func (p *ProjectProvider) Describe(_ context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error) {
	if r.IsPlatformReference {
		return nil, nil
	}
	proj, ok, err := p.resolver.TryResolve(r.Name)
	if err != nil || !ok {
		return nil, err
	}

	resolved := true
	targetFramework := framework
	if len(proj.TargetFrameworks) > 0 {
		available := make([]*frameworks.NuGetFramework, 0, len(proj.TargetFrameworks))
		for _, tfi := range proj.TargetFrameworks {
			available = append(available, tfi.Framework)
		}
		targetFramework = frameworks.GetNearest(framework, available)
		if targetFramework == nil {
			p.logger.Debug("Project {Project} does not support {Framework}", proj.Name, framework.String())
			resolved = false
		}
	}

	var deps []library.Dependency
	if targetFramework != nil {
		deps = proj.DependenciesFor(targetFramework)
	} else {
		deps = append(deps, proj.Dependencies...)
	}
	deps = append(deps, implicitReferences(framework, deps)...)

	return &library.Description{
		Requested:    r,
		Identity:     &library.Identity{Name: proj.Name, Version: proj.Version},
		Dependencies: deps,
		Path:         proj.ProjectFilePath,
		Kind:         library.KindProject,
		Framework:    framework,
		Resolved:     resolved,
	}, nil
}

// Initialize has nothing to resolve for projects.
func (p *ProjectProvider) Initialize(context.Context, []*library.Description, *frameworks.NuGetFramework, string) {
}

func implicitReferences(framework *frameworks.NuGetFramework, declared []library.Dependency) []library.Dependency {
	if !framework.IsDesktop() {
		return nil
	}

	names := []string{"mscorlib", "System"}
	if framework.Version.Compare(frameworkV35) >= 0 {
		names = append(names, "System.Core")
	}
	if framework.Version.Compare(frameworkV40) >= 0 {
		names = append(names, "Microsoft.CSharp")
	}

	var refs []library.Dependency
	for _, name := range names {
		if declaresPlatformReference(declared, name) {
			continue
		}
		refs = append(refs, library.Dependency{
			Range: library.Range{Name: name, IsPlatformReference: true},
			Type:  library.DefaultDependencyType,
		})
	}
	return refs
}

func declaresPlatformReference(deps []library.Dependency, name string) bool {
	for _, d := range deps {
		if d.Range.IsPlatformReference && strings.EqualFold(d.Range.Name, name) {
			return true
		}
	}
	return false
}
