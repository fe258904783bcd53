package lockfile

import (
	"fmt"
	"slices"

	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/project"
)

// IsValidFor reports whether lf still describes p resolved over
// searchPaths. A stale lock file is not an error: the reason explains what
// changed so the caller can log it and resolve again.
func (lf *LockFile) IsValidFor(p *project.Project, searchPaths []string) (bool, string) {
	if lf.Version != FormatVersion {
		return false, fmt.Sprintf("lock file version %d does not match %d", lf.Version, FormatVersion)
	}
	if !sameSet(lf.GlobalSearchPaths, searchPaths) {
		return false, "project search paths changed"
	}

	expected := DependencyGroups(p)
	if len(expected) != len(lf.ProjectFileDependencyGroups) {
		return false, "project frameworks changed"
	}
	for _, want := range expected {
		got := lf.DependencyGroup(want.FrameworkName)
		if got == nil {
			return false, fmt.Sprintf("no dependency group for %q", groupLabel(want.FrameworkName))
		}
		if !sameSet(got.Dependencies, want.Dependencies) {
			return false, fmt.Sprintf("dependencies of %q changed", groupLabel(want.FrameworkName))
		}
	}
	return true, ""
}

// DependencyGroups renders the project's declared dependencies as lock file
// groups: the shared group first, then one per framework in declaration
// order.
func DependencyGroups(p *project.Project) []*DependencyGroup {
	groups := []*DependencyGroup{{FrameworkName: "", Dependencies: rangeStrings(p.Dependencies)}}
	for _, tfi := range p.TargetFrameworks {
		groups = append(groups, &DependencyGroup{
			FrameworkName: tfi.Framework.String(),
			Dependencies:  rangeStrings(tfi.Dependencies),
		})
	}
	return groups
}

func rangeStrings(deps []library.Dependency) []string {
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		out = append(out, d.Range.String())
	}
	return out
}

func sameSet(a, b []string) bool {
	x := slices.Compact(slices.Sorted(slices.Values(a)))
	y := slices.Compact(slices.Sorted(slices.Values(b)))
	return slices.Equal(x, y)
}

func groupLabel(name string) string {
	if name == "" {
		return "shared"
	}
	return name
}
