package lockfile

import (
	"maps"
	"slices"
	"strings"

	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/packaging"
	"github.com/willibrandon/gorestore/project"
)

// Builder converts walk results into a lock file.
type Builder struct {
	// Locked is copied into the built lock file.
	Locked bool
}

// NewBuilder creates a lock file builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build records every package of graphs. Descriptions are read, never
// modified. Libraries are sorted by name then version; target libraries by
// name.
func (b *Builder) Build(p *project.Project, searchPaths []string, graphs []*resolver.WalkResult) *LockFile {
	lf := &LockFile{
		Locked:                      b.Locked,
		Version:                     FormatVersion,
		GlobalSearchPaths:           slices.Sorted(slices.Values(searchPaths)),
		ProjectFileDependencyGroups: DependencyGroups(p),
	}

	libraries := make(map[string]*Library)
	for _, graph := range graphs {
		if graph == nil {
			continue
		}
		target := &Target{Framework: graph.Framework, RuntimeIdentifier: graph.RuntimeIdentifier}
		for _, desc := range graph.Libraries {
			if desc.Kind != library.KindPackage || desc.Package == nil {
				continue
			}
			key := desc.Identity.Key()
			if _, ok := libraries[key]; !ok {
				libraries[key] = &Library{
					Name:          desc.Identity.Name,
					Version:       desc.Identity.Version,
					IsServiceable: desc.Package.IsServiceable,
					Sha512:        desc.Package.Sha512,
					Files:         slices.Clone(desc.Package.Files),
				}
			}
			target.Libraries = append(target.Libraries, buildTargetLibrary(desc, graph))
		}
		slices.SortStableFunc(target.Libraries, func(a, b *TargetLibrary) int {
			return compareNames(a.Name, b.Name)
		})
		lf.Targets = append(lf.Targets, target)
	}

	lf.Libraries = slices.SortedFunc(maps.Values(libraries), func(a, b *Library) int {
		if c := compareNames(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Version.Compare(b.Version)
	})
	return lf
}

func buildTargetLibrary(desc *library.Description, graph *resolver.WalkResult) *TargetLibrary {
	tl := &TargetLibrary{Name: desc.Identity.Name, Version: desc.Identity.Version}
	for _, dep := range desc.Dependencies {
		if dep.Range.IsPlatformReference {
			tl.FrameworkAssemblies = append(tl.FrameworkAssemblies, dep.Range.Name)
			continue
		}
		tl.Dependencies = append(tl.Dependencies, PackageDependency{ID: dep.Range.Name, VersionRange: dep.Range.VersionRange})
	}

	if !desc.Resolved {
		return tl
	}
	assets := packaging.SelectAssets(desc.Package.Files, graph.Framework, graph.RuntimeIdentifier)
	tl.CompileTimeAssemblies = fileItems(assets.Compile)
	tl.RuntimeAssemblies = fileItems(assets.Runtime)
	tl.ResourceAssemblies = fileItems(assets.Resource)
	tl.NativeLibraries = fileItems(assets.Native)
	return tl
}

func fileItems(assets []packaging.Asset) []FileItem {
	if len(assets) == 0 {
		return nil
	}
	items := make([]FileItem, 0, len(assets))
	for _, a := range assets {
		item := FileItem{Path: a.Path}
		for _, name := range slices.Sorted(maps.Keys(a.Properties)) {
			item.Properties = append(item.Properties, Property{Name: name, Value: a.Properties[name]})
		}
		items = append(items, item)
	}
	return items
}

func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
