package output

import (
	"slices"
	"strings"

	"github.com/willibrandon/gorestore/compatibility"
	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/restore"
)

// ReportRestore prints the diagnostics of a restore followed by a summary.
// Detailed verbosity also lists the resolved libraries of every target.
func ReportRestore(c *Console, result *restore.Result) {
	if c.GetVerbosity() >= VerbosityDetailed {
		for _, graph := range result.Graphs {
			reportGraph(c, graph)
		}
	}

	for _, d := range result.Diagnostics {
		if d.Level == restore.LevelError {
			c.Error("%s", strings.TrimSpace(d.Format(false)))
		} else {
			c.Warning("%s", strings.TrimSpace(d.Format(false)))
		}
	}

	libraries := 0
	if result.LockFile != nil {
		libraries = len(result.LockFile.Libraries)
	}
	switch {
	case !result.Success():
		c.Error("Restore of %s failed with %d error(s)", result.Project.Name, len(result.Errors()))
	case result.LockFileWritten:
		c.Success("Restored %s: %d package(s) for %d target(s) in %d ms",
			result.Project.Name, libraries, len(result.Graphs), result.Duration.Milliseconds())
	default:
		c.Success("%s is up to date: %d package(s) for %d target(s)",
			result.Project.Name, libraries, len(result.Graphs))
	}
	if result.UsedLockFile {
		c.Info("Versions were taken from the locked %s", result.LockFilePath)
	}
	c.Detail("Lock file fingerprint %016x", result.Fingerprint)
}

// ReportIssues prints compatibility issues, one per line.
func ReportIssues(c *Console, issues []compatibility.Issue) {
	for _, issue := range issues {
		c.Warning("%s: %s", issue.Kind, issue.Message)
	}
	if len(issues) == 0 {
		c.Success("No compatibility issues found")
	}
}

func reportGraph(c *Console, graph *resolver.WalkResult) {
	if graph == nil {
		return
	}
	header := graph.Framework.String()
	if graph.RuntimeIdentifier != "" {
		header += " (" + graph.RuntimeIdentifier + ")"
	}
	c.Detail("%s", header)

	libs := slices.Clone(graph.Libraries)
	slices.SortStableFunc(libs, func(a, b *library.Description) int {
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})
	for _, desc := range libs {
		ver := ""
		if desc.Identity != nil && desc.Identity.Version != nil {
			ver = desc.Identity.Version.String()
		}
		mark := ""
		if !desc.Resolved {
			mark = " (unresolved)"
		}
		c.Detail("  %-40s %-16s %s%s", libraryLabel(desc), ver, desc.Kind, mark)
	}
}

func libraryLabel(desc *library.Description) string {
	if desc.Requested.IsPlatformReference {
		return library.PlatformPrefix + desc.Name()
	}
	return desc.Name()
}
