package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/version"
)

// PlatformContext answers questions about the reference assemblies
// installed on the machine.
type PlatformContext interface {
	// HasReferenceAssemblies reports whether any are installed.
	HasReferenceAssemblies() bool
	// ReferenceAssemblyPath locates assembly name for framework.
	ReferenceAssemblyPath(framework *frameworks.NuGetFramework, name string) (path string, ver *version.NuGetVersion, ok bool)
}

// NoPlatform has no reference assemblies. It is the default away from
// Windows.
type NoPlatform struct{}

func (NoPlatform) HasReferenceAssemblies() bool { return false }

func (NoPlatform) ReferenceAssemblyPath(*frameworks.NuGetFramework, string) (string, *version.NuGetVersion, bool) {
	return "", nil, false
}

// DirectoryPlatform finds reference assemblies under a root laid out as
// {root}/{identifier}/v{version}/{name}.dll, with facades in a Facades
// subdirectory. This is the layout of
// "Reference Assemblies/Microsoft/Framework".
type DirectoryPlatform struct {
	Root string
}

// HasReferenceAssemblies reports whether Root exists.
func (d DirectoryPlatform) HasReferenceAssemblies() bool {
	info, err := os.Stat(d.Root)
	return err == nil && info.IsDir()
}

// ReferenceAssemblyPath probes the framework directory, then its facades.
// Reference assemblies of a framework carry its major version as their
// assembly version, so 4.5.1 assemblies report 4.0.0.0.
func (d DirectoryPlatform) ReferenceAssemblyPath(framework *frameworks.NuGetFramework, name string) (string, *version.NuGetVersion, bool) {
	for _, dir := range d.directories(framework) {
		path := filepath.Join(dir, name+".dll")
		if _, err := os.Stat(path); err == nil {
			return path, version.MustParse(fmt.Sprintf("%d.0.0.0", framework.Version.Major)), true
		}
	}
	return "", nil, false
}

func (d DirectoryPlatform) directories(framework *frameworks.NuGetFramework) []string {
	identifier := framework.Framework
	if identifier == frameworks.DNX {
		identifier = frameworks.NetFramework
	}
	dir := filepath.Join(d.Root, identifier, "v"+framework.Version.String())
	return []string{dir, filepath.Join(dir, "Facades")}
}

// PlatformReferenceProvider resolves fx/ references against a
// PlatformContext.
type PlatformReferenceProvider struct {
	platform PlatformContext
}

// NewPlatformReferenceProvider creates a provider over platform. A nil
// platform behaves like NoPlatform.
func NewPlatformReferenceProvider(platform PlatformContext) *PlatformReferenceProvider {
	if platform == nil {
		platform = NoPlatform{}
	}
	return &PlatformReferenceProvider{platform: platform}
}

func (p *PlatformReferenceProvider) Name() string { return "platform" }

// AttemptedPaths lists the directories probed when the platform is
// directory based.
func (p *PlatformReferenceProvider) AttemptedPaths(framework *frameworks.NuGetFramework) []string {
	if d, ok := p.platform.(DirectoryPlatform); ok && framework.IsDesktop() {
		return d.directories(framework)
	}
	return nil
}

// Describe returns nil for non-desktop targets, for machines without
// reference assemblies, and for assemblies that are not installed or do not
// satisfy the requested range.
func (p *PlatformReferenceProvider) Describe(_ context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error) {
	if !r.IsPlatformReference || !framework.IsDesktop() || !p.platform.HasReferenceAssemblies() {
		return nil, nil
	}
	path, ver, ok := p.platform.ReferenceAssemblyPath(framework, r.Name)
	if !ok {
		return nil, nil
	}
	if r.VersionRange != nil && !r.VersionRange.Satisfies(ver) {
		return nil, nil
	}
	return &library.Description{
		Requested: r,
		Identity:  &library.Identity{Name: r.Name, Version: ver, IsPlatformReference: true},
		Path:      path,
		Kind:      library.KindReferenceAssembly,
		Framework: framework,
		Resolved:  true,
	}, nil
}

// Initialize has nothing to resolve for reference assemblies.
func (p *PlatformReferenceProvider) Initialize(context.Context, []*library.Description, *frameworks.NuGetFramework, string) {
}

// UnresolvedProvider matches every name with an unresolved description so
// that a walk always has a node for it.
type UnresolvedProvider struct{}

func (UnresolvedProvider) Name() string { return "unresolved" }

func (UnresolvedProvider) AttemptedPaths(*frameworks.NuGetFramework) []string { return nil }

// Describe returns a description with Resolved false and no dependencies.
func (UnresolvedProvider) Describe(_ context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error) {
	return library.NewUnresolved(r, framework), nil
}

func (UnresolvedProvider) Initialize(context.Context, []*library.Description, *frameworks.NuGetFramework, string) {
}
