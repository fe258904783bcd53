// Package compatibility validates a resolved lock file against its target
// frameworks. It reports packages that ship assemblies but none usable on a
// target, and compile-time assemblies with no runtime implementation
// anywhere in the target's closure.
package compatibility

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/packaging"
)

// Issue is a compatibility problem of one library on one target.
type Issue = library.CompatibilityIssue

// Checker runs the compatibility rules.
type Checker struct {
	logger observability.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the checker logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates every target of lock. Issues are returned in target
// order and, when graphs holds the walk result of a target, attached to the
// matching library description. Targets for the platform-neutral dotnet
// framework are not checked. graphs may be empty.
func (c *Checker) Check(ctx context.Context, lock *lockfile.LockFile, graphs []*resolver.WalkResult) []Issue {
	ctx, span := observability.StartCompatibilitySpan(ctx, len(lock.Targets))
	defer span.End()

	var issues []Issue
	for _, target := range lock.Targets {
		if target.Framework.IsPlatformNeutral() {
			continue
		}
		graph := graphFor(graphs, target)

		for _, issue := range c.checkTarget(lock, target) {
			issues = append(issues, *issue)
			observability.CompatibilityIssuesTotal.WithLabelValues(issue.Kind.String()).Inc()
			c.logger.Debug("{Kind}: {Message}", issue.Kind.String(), issue.Message)

			if graph != nil {
				if desc := graph.Find(issue.LibraryName); desc != nil {
					desc.CompatibilityIssue = issue
				}
			}
		}
	}

	observability.AddEvent(ctx, "compatibility.checked", attribute.Int("gorestore.issues", len(issues)))
	return issues
}

func (c *Checker) checkTarget(lock *lockfile.LockFile, target *lockfile.Target) []*Issue {
	available := runtimeAssemblyNames(target)

	var issues []*Issue
	for _, lib := range target.Libraries {
		if unsupported(lock, lib) {
			issues = append(issues, &Issue{
				Kind:           library.UnsupportedFramework,
				LibraryName:    lib.Name,
				LibraryVersion: lib.Version.String(),
				Framework:      target.Framework,
				Message: fmt.Sprintf("%s %s ships assemblies, but none are compatible with %s",
					lib.Name, lib.Version.String(), frameworkDisplay(target)),
			})
			continue
		}

		for _, item := range lib.CompileTimeAssemblies {
			name, ok := assemblyName(item.Path)
			if !ok || available[name] {
				continue
			}
			issues = append(issues, &Issue{
				Kind:           library.MissingRuntimeAssembly,
				LibraryName:    lib.Name,
				LibraryVersion: lib.Version.String(),
				Framework:      target.Framework,
				AssemblyName:   path.Base(item.Path),
				Message: fmt.Sprintf("%s %s provides a compile-time reference assembly %s, but there is no runtime implementation for %s",
					lib.Name, lib.Version.String(), path.Base(item.Path), frameworkDisplay(target)),
			})
			break
		}
	}
	return issues
}

// unsupported reports whether the package claims assemblies but the
// target entry selected none of any kind.
func unsupported(lock *lockfile.LockFile, lib *lockfile.TargetLibrary) bool {
	if len(lib.FrameworkAssemblies) > 0 || len(lib.CompileTimeAssemblies) > 0 || len(lib.RuntimeAssemblies) > 0 {
		return false
	}
	entry := lock.Library(lib.Name, lib.Version)
	return entry != nil && packaging.ClaimsAssemblies(entry.Files)
}

// runtimeAssemblyNames collects the simple names of every runtime assembly
// in the target, lowercased with native image suffixes removed.
func runtimeAssemblyNames(target *lockfile.Target) map[string]bool {
	names := make(map[string]bool)
	for _, lib := range target.Libraries {
		for _, item := range lib.RuntimeAssemblies {
			if name, ok := assemblyName(item.Path); ok {
				names[name] = true
			}
		}
	}
	return names
}

// assemblyName turns lib/net45/Foo.ni.dll into "foo". Placeholders have no
// name.
func assemblyName(p string) (string, bool) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == packaging.PlaceholderFile {
		return "", false
	}
	name := strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
	name = strings.TrimSuffix(name, ".ni")
	return name, name != ""
}

func frameworkDisplay(target *lockfile.Target) string {
	if target.RuntimeIdentifier == "" {
		return target.Framework.String()
	}
	return target.Framework.String() + " (" + target.RuntimeIdentifier + ")"
}

func graphFor(graphs []*resolver.WalkResult, target *lockfile.Target) *resolver.WalkResult {
	for _, g := range graphs {
		if g != nil && sameTarget(g.Framework, g.RuntimeIdentifier, target) {
			return g
		}
	}
	return nil
}

func sameTarget(framework *frameworks.NuGetFramework, runtimeIdentifier string, target *lockfile.Target) bool {
	return framework.Equals(target.Framework) && runtimeIdentifier == target.RuntimeIdentifier
}
