package providers

import (
	"context"
	"errors"
	"slices"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/packaging"
	"github.com/willibrandon/gorestore/version"
)

// PackageProvider resolves package dependencies against a feed.
//
// With a lock file, a library recorded in the target for the requested
// framework is pinned to its recorded version and dependency edges. If the
// feed no longer holds that version, or holds it with a different hash, the
// description is returned with Resolved false.
type PackageProvider struct {
	feed   PackageFeed
	lock   *lockfile.LockFile
	logger observability.Logger
}

// NewPackageProvider creates a provider over feed.
func NewPackageProvider(feed PackageFeed, opts ...Option) *PackageProvider {
	o := buildOptions(opts)
	return &PackageProvider{feed: feed, lock: o.lock, logger: o.logger}
}

// Name identifies the provider in metrics and traces.
func (p *PackageProvider) Name() string {
	if p.feed.IsRemote() {
		return "remote"
	}
	return "local"
}

// IsRemote reports whether the provider belongs to the remote tier.
func (p *PackageProvider) IsRemote() bool {
	return p.feed.IsRemote()
}

// AttemptedPaths returns the feed source.
func (p *PackageProvider) AttemptedPaths(*frameworks.NuGetFramework) []string {
	return []string{p.feed.Source()}
}

// Describe finds the best version of r in the feed. Platform references
// are never packages.
func (p *PackageProvider) Describe(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error) {
	if r.IsPlatformReference {
		return nil, nil
	}

	if locked := p.lockedLibrary(r.Name, framework); locked != nil {
		return p.describeLocked(ctx, r, framework, locked)
	}

	versions, err := p.feed.FindByID(ctx, r.Name)
	if err != nil {
		return nil, err
	}
	best := bestVersion(versions, r.VersionRange)
	if best == nil {
		return nil, nil
	}
	return p.describeVersion(ctx, r, framework, best)
}

func (p *PackageProvider) lockedLibrary(name string, framework *frameworks.NuGetFramework) *lockfile.TargetLibrary {
	if p.lock == nil {
		return nil
	}
	target := p.lock.Target(framework, "")
	if target == nil {
		return nil
	}
	return target.Library(name)
}

func (p *PackageProvider) describeLocked(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework, locked *lockfile.TargetLibrary) (*library.Description, error) {
	desc := &library.Description{
		Requested: r,
		Identity:  &library.Identity{Name: locked.Name, Version: locked.Version},
		Kind:      library.KindPackage,
		Framework: framework,
		Resolved:  true,
	}
	for _, dep := range locked.Dependencies {
		desc.Dependencies = append(desc.Dependencies, library.Dependency{
			Range: library.Range{Name: dep.ID, VersionRange: dep.VersionRange},
			Type:  library.DefaultDependencyType,
		})
	}
	for _, name := range locked.FrameworkAssemblies {
		desc.Dependencies = append(desc.Dependencies, library.Dependency{
			Range: library.Range{Name: name, IsPlatformReference: true},
			Type:  library.DefaultDependencyType,
		})
	}

	versions, err := p.feed.FindByID(ctx, locked.Name)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(versions, locked.Version.Equals) {
		p.logger.Warn("Locked package {Package} {Version} is missing from {Source}", locked.Name, locked.Version.String(), p.feed.Source())
		desc.Resolved = false
		return desc, nil
	}

	content, err := p.feed.OpenContent(ctx, locked.Name, locked.Version)
	if err != nil {
		return nil, err
	}
	desc.Path = content.Path
	if lib := p.lock.Library(locked.Name, locked.Version); lib != nil && lib.Sha512 != "" && lib.Sha512 != content.Sha512 {
		p.logger.Warn("Locked package {Package} {Version} does not match its recorded hash", locked.Name, locked.Version.String())
		desc.Resolved = false
	}
	return desc, nil
}

func (p *PackageProvider) describeVersion(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework, ver *version.NuGetVersion) (*library.Description, error) {
	nuspec, err := p.readManifest(ctx, r.Name, ver)
	if err != nil {
		return nil, err
	}
	content, err := p.feed.OpenContent(ctx, r.Name, ver)
	if err != nil {
		return nil, err
	}

	deps, err := nuspec.DependenciesFor(framework)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrInvalidManifest.Error()), "id", r.Name)
	}
	frameworkAssemblies := nuspec.FrameworkAssembliesFor(framework)

	name := nuspec.Metadata.ID
	if name == "" {
		name = r.Name
	}
	desc := &library.Description{
		Requested: r,
		Identity:  &library.Identity{Name: name, Version: ver},
		Path:      content.Path,
		Kind:      library.KindPackage,
		Framework: framework,
		Resolved:  true,
	}
	for _, dep := range deps {
		desc.Dependencies = append(desc.Dependencies, library.Dependency{
			Range: library.Range{Name: dep.ID, VersionRange: dep.VersionRange},
			Type:  library.DefaultDependencyType,
		})
	}
	for _, assembly := range frameworkAssemblies {
		desc.Dependencies = append(desc.Dependencies, library.Dependency{
			Range: library.Range{Name: assembly, IsPlatformReference: true},
			Type:  library.DefaultDependencyType,
		})
	}

	if packaging.ClaimsAssemblies(content.Files) && len(frameworkAssemblies) == 0 &&
		packaging.SelectAssets(content.Files, framework, "").IsEmpty() {
		p.logger.Debug("{Package} {Version} has no assemblies for {Framework}", name, ver.String(), framework.String())
		desc.Resolved = false
	}
	return desc, nil
}

func (p *PackageProvider) readManifest(ctx context.Context, id string, ver *version.NuGetVersion) (*packaging.Nuspec, error) {
	rc, err := p.feed.OpenManifest(ctx, id, ver)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	nuspec, err := packaging.ParseNuspec(rc)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, ErrInvalidManifest.Error()), "id", id), "version", ver.String())
	}
	return nuspec, nil
}

// Initialize records hash, file list, serviceable flag and framework
// assemblies on every package this provider described. Packages the feed
// cannot open are left without details. It stops early once ctx is done.
func (p *PackageProvider) Initialize(ctx context.Context, resolved []*library.Description, _ *frameworks.NuGetFramework, _ string) {
	for _, desc := range resolved {
		if ctx.Err() != nil {
			return
		}
		if desc.Kind != library.KindPackage || desc.Identity == nil {
			continue
		}
		id, ver := desc.Identity.Name, desc.Identity.Version

		content, err := p.feed.OpenContent(ctx, id, ver)
		if err != nil {
			if !errors.Is(err, ErrPackageNotFound) {
				p.logger.Warn("Unable to read content of {Package} {Version}: {Error}", id, ver.String(), err)
			}
			continue
		}

		details := &library.PackageDetails{Sha512: content.Sha512, Files: content.Files}
		if nuspec, err := p.readManifest(ctx, id, ver); err == nil {
			details.IsServiceable = nuspec.Metadata.Serviceable
		} else {
			p.logger.Warn("Unable to read manifest of {Package} {Version}: {Error}", id, ver.String(), err)
		}
		for _, dep := range desc.Dependencies {
			if dep.Range.IsPlatformReference {
				details.FrameworkAssemblies = append(details.FrameworkAssemblies, dep.Range.Name)
			}
		}
		desc.Package = details
	}
}

// bestVersion applies the range's best-match rule. Without a range the
// highest version wins.
func bestVersion(versions []*version.NuGetVersion, vr *version.VersionRange) *version.NuGetVersion {
	if vr != nil {
		return vr.FindBestMatch(versions)
	}
	var best *version.NuGetVersion
	for _, v := range versions {
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
