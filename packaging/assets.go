package packaging

import (
	"path"
	"sort"
	"strings"

	"github.com/willibrandon/gorestore/frameworks"
)

// PlaceholderFile marks a framework folder that intentionally ships no
// assemblies.
const PlaceholderFile = "_._"

// PropertyLocale is the asset property carrying a resource assembly culture.
const PropertyLocale = "locale"

// Asset is a package file selected for a framework.
type Asset struct {
	Path       string
	Properties map[string]string
}

// AssetSelection holds the assets of one package for one framework and
// runtime.
type AssetSelection struct {
	Compile  []Asset
	Runtime  []Asset
	Resource []Asset
	Native   []Asset
}

// IsEmpty reports whether no compile or runtime asset was selected.
func (s *AssetSelection) IsEmpty() bool {
	return len(s.Compile) == 0 && len(s.Runtime) == 0
}

// ClaimsAssemblies reports whether files contain anything under lib/ or ref/.
func ClaimsAssemblies(files []string) bool {
	for _, f := range files {
		f = normalizePath(f)
		if strings.HasPrefix(f, "lib/") || strings.HasPrefix(f, "ref/") {
			return true
		}
	}
	return false
}

// SelectAssets picks the compile, runtime, resource and native assets of a
// package for framework. Runtime-specific folders under runtimes/{rid}/ win
// over runtime-agnostic ones, trying runtimeIdentifier and then its
// fallbacks. Compile assets come from ref/ when present, otherwise from the
// selected lib/ folder.
func SelectAssets(files []string, framework *frameworks.NuGetFramework, runtimeIdentifier string) *AssetSelection {
	normalized := make([]string, len(files))
	for i, f := range files {
		normalized[i] = normalizePath(f)
	}
	sort.Strings(normalized)

	sel := &AssetSelection{}
	fallbacks := RuntimeFallbacks(runtimeIdentifier)

	var libItems []groupItem
	for _, rid := range fallbacks {
		if items, ok := nearestItems(groupByFramework(normalized, "runtimes/"+rid+"/lib/"), framework); ok {
			libItems = items
			break
		}
	}
	if libItems == nil {
		libItems, _ = nearestItems(groupByFramework(normalized, "lib/"), framework)
	}

	for _, item := range libItems {
		if locale, ok := item.resourceLocale(); ok {
			sel.Resource = append(sel.Resource, Asset{
				Path:       item.path,
				Properties: map[string]string{PropertyLocale: locale},
			})
			continue
		}
		if item.isAssembly() {
			sel.Runtime = append(sel.Runtime, Asset{Path: item.path})
		}
	}

	if refItems, ok := nearestItems(groupByFramework(normalized, "ref/"), framework); ok {
		for _, item := range refItems {
			if item.isAssembly() {
				sel.Compile = append(sel.Compile, Asset{Path: item.path})
			}
		}
	} else {
		sel.Compile = append(sel.Compile, sel.Runtime...)
	}

	for _, rid := range fallbacks {
		prefix := "runtimes/" + rid + "/native/"
		for _, f := range normalized {
			if strings.HasPrefix(f, prefix) && !strings.HasSuffix(f, "/") {
				sel.Native = append(sel.Native, Asset{Path: f})
			}
		}
		if len(sel.Native) > 0 {
			break
		}
	}

	return sel
}

// RuntimeFallbacks expands a runtime identifier into the identifiers whose
// assets it can use, most specific first: "win7-x64" gives win7-x64,
// win-x64, win7 and win.
func RuntimeFallbacks(runtimeIdentifier string) []string {
	if runtimeIdentifier == "" {
		return nil
	}

	osPart, arch, _ := strings.Cut(runtimeIdentifier, "-")
	baseOS := strings.TrimRight(osPart, "0123456789.")
	if baseOS == "" {
		baseOS = osPart
	}

	candidates := []string{runtimeIdentifier}
	if arch != "" {
		candidates = append(candidates, baseOS+"-"+arch, osPart)
	}
	candidates = append(candidates, baseOS)

	seen := make(map[string]bool, len(candidates))
	result := candidates[:0]
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			result = append(result, c)
		}
	}
	return result
}

type frameworkGroup struct {
	framework *frameworks.NuGetFramework
	items     []groupItem
}

// groupItem is a file with its path relative to the framework folder.
type groupItem struct {
	path string
	rel  string
}

// groupByFramework groups files under prefix by their framework folder.
// Files directly under prefix belong to AnyFramework. Unparseable folders
// are ignored.
func groupByFramework(files []string, prefix string) []frameworkGroup {
	index := make(map[string]int)
	var groups []frameworkGroup
	for _, f := range files {
		rest, ok := strings.CutPrefix(f, prefix)
		if !ok || rest == "" {
			continue
		}

		folder, rel, nested := strings.Cut(rest, "/")
		var fw *frameworks.NuGetFramework
		if !nested {
			folder, rel = "", rest
			fw = frameworks.AnyFramework
		}

		i, ok := index[folder]
		if !ok {
			if fw == nil {
				parsed, err := frameworks.ParseFramework(folder)
				if err != nil {
					continue
				}
				fw = parsed
			}
			i = len(groups)
			index[folder] = i
			groups = append(groups, frameworkGroup{framework: fw})
		}
		groups[i].items = append(groups[i].items, groupItem{path: f, rel: rel})
	}
	return groups
}

func nearestItems(groups []frameworkGroup, framework *frameworks.NuGetFramework) ([]groupItem, bool) {
	if len(groups) == 0 {
		return nil, false
	}
	available := make([]*frameworks.NuGetFramework, len(groups))
	for i, g := range groups {
		available[i] = g.framework
	}
	nearest := frameworks.GetNearest(framework, available)
	if nearest == nil {
		return nil, false
	}
	for _, g := range groups {
		if g.framework == nearest {
			return g.items, true
		}
	}
	return nil, false
}

// resourceLocale returns the culture folder of a satellite assembly such
// as fr/Foo.resources.dll.
func (g groupItem) resourceLocale() (string, bool) {
	locale, name, ok := strings.Cut(g.rel, "/")
	if !ok || strings.Contains(name, "/") || !strings.HasSuffix(strings.ToLower(name), ".resources.dll") {
		return "", false
	}
	return locale, true
}

// isAssembly reports whether the item is an assembly or placeholder sitting
// directly in its framework folder.
func (g groupItem) isAssembly() bool {
	if strings.Contains(g.rel, "/") {
		return false
	}
	if g.rel == PlaceholderFile {
		return true
	}
	switch strings.ToLower(path.Ext(g.rel)) {
	case ".dll", ".exe", ".winmd":
		return true
	}
	return false
}

func normalizePath(p string) string {
	return strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
}
