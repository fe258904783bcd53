// Package restore runs a restore session for one project: it walks every
// target framework, writes project.lock.json and checks the result for
// compatibility problems.
package restore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/gorestore/compatibility"
	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/project"
	"github.com/willibrandon/gorestore/providers"
	"github.com/willibrandon/gorestore/resilience"
)

var (
	// ErrNoFrameworks is returned for a project that declares no target
	// frameworks.
	ErrNoFrameworks = errors.New("project declares no target frameworks")
	// ErrFrameworkNotDeclared is returned when Options.Frameworks names a
	// framework the project does not target.
	ErrFrameworkNotDeclared = errors.New("framework is not declared by the project")
)

// Restorer executes restore sessions.
type Restorer struct {
	opts   Options
	logger observability.Logger
}

// NewRestorer creates a restorer.
func NewRestorer(opts Options) *Restorer {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = runtime.GOMAXPROCS(0)
	}
	return &Restorer{opts: opts, logger: logger}
}

// Restore resolves the project at projectPath (a project.json or its
// directory). Unresolved dependencies and compatibility issues are reported
// as diagnostics on the result; an error means the session could not run,
// for example because the graph has a cycle.
func (r *Restorer) Restore(ctx context.Context, projectPath string) (result *Result, err error) {
	start := time.Now()
	sessionID := uuid.NewString()
	logger := r.logger.ForContext("SessionId", sessionID)

	ctx, span := observability.StartRestoreSpan(ctx, projectPath, sessionID)
	defer func() { observability.EndSpanWithError(span, err) }()

	proj, err := project.Load(projectPath)
	if err != nil {
		return nil, err
	}
	if len(proj.TargetFrameworks) == 0 {
		return nil, fmt.Errorf("%s: %w", proj.ProjectFilePath, ErrNoFrameworks)
	}

	projects, err := project.NewResolver(proj.ProjectDirectory())
	if err != nil {
		return nil, fmt.Errorf("resolve project search paths: %w", err)
	}
	searchPaths := projects.SortedSearchPaths()

	packagesFolder, err := r.packagesFolder(proj)
	if err != nil {
		return nil, err
	}
	logger.Info("Restoring {Project} from {PackagesFolder}", proj.ProjectFilePath, packagesFolder)

	lockPath := filepath.Join(proj.ProjectDirectory(), lockfile.FileName)
	prior := r.priorLockFile(ctx, logger, lockPath, proj, searchPaths)

	walker := resolver.NewWalker(
		r.providers(projects, packagesFolder, prior, logger),
		resolver.WithLogger(logger),
		resolver.WithMode(r.opts.Mode),
	)
	targets, err := r.Targets(proj)
	if err != nil {
		return nil, err
	}
	graphs, err := r.walkTargets(ctx, walker, targets)
	if err != nil {
		return nil, err
	}

	builder := lockfile.NewBuilder()
	builder.Locked = r.opts.Lock || (prior != nil && !r.opts.Unlock)
	lf := builder.Build(proj, searchPaths, graphs)

	fingerprint, err := lockfile.Fingerprint(lf)
	if err != nil {
		return nil, err
	}

	result = &Result{
		SessionID:    sessionID,
		Project:      proj,
		LockFilePath: lockPath,
		LockFile:     lf,
		Fingerprint:  fingerprint,
		Graphs:       graphs,
		UsedLockFile: prior != nil,
	}

	if !r.opts.NoWrite {
		written, err := lockfile.WriteFileIfChanged(ctx, lockPath, lf)
		if err != nil {
			return nil, err
		}
		result.LockFileWritten = written
		if !written {
			logger.Debug("Lock file {Path} is up to date", lockPath)
		}
	}

	result.Issues = compatibility.NewChecker(compatibility.WithLogger(logger)).Check(ctx, lf, graphs)
	result.Diagnostics = diagnostics(proj.ProjectFilePath, graphs, result.Issues)
	result.Duration = time.Since(start)

	for _, d := range result.Diagnostics {
		if d.Level == LevelError {
			logger.Error("{Code}: {Message}", d.Code, d.Message)
		} else {
			logger.Warn("{Code}: {Message}", d.Code, d.Message)
		}
	}
	logger.Info("Restored {Project} in {Elapsed} ms with lock file {Fingerprint}", proj.Name, result.Duration.Milliseconds(), fmt.Sprintf("%016x", fingerprint))
	return result, nil
}

// Targets returns the walk targets of proj: each framework alone, then
// once per configured runtime.
func (r *Restorer) Targets(proj *project.Project) ([]resolver.Target, error) {
	for _, fw := range r.opts.Frameworks {
		if !declares(proj, fw) {
			return nil, fmt.Errorf("%s: %s: %w", proj.ProjectFilePath, fw, ErrFrameworkNotDeclared)
		}
	}

	runtimes := append([]string{""}, r.opts.Runtimes...)
	targets := make([]resolver.Target, 0, len(proj.TargetFrameworks)*len(runtimes))
	for _, tfi := range proj.TargetFrameworks {
		if len(r.opts.Frameworks) > 0 && !slices.ContainsFunc(r.opts.Frameworks, tfi.Framework.Equals) {
			continue
		}
		for _, rid := range runtimes {
			targets = append(targets, resolver.Target{
				Name:              proj.Name,
				Version:           proj.Version,
				Framework:         tfi.Framework,
				RuntimeIdentifier: rid,
			})
		}
	}
	return targets, nil
}

func declares(proj *project.Project, fw *frameworks.NuGetFramework) bool {
	for _, tfi := range proj.TargetFrameworks {
		if tfi.Framework.Equals(fw) {
			return true
		}
	}
	return false
}

func (r *Restorer) walkTargets(ctx context.Context, walker *resolver.Walker, targets []resolver.Target) ([]*resolver.WalkResult, error) {
	graphs := make([]*resolver.WalkResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrency)
	for i, target := range targets {
		g.Go(func() error {
			graph, err := walker.WalkTarget(gctx, target)
			if err != nil {
				return fmt.Errorf("walk %s for %s: %w", target.Name, targetLabel(target), err)
			}
			graphs[i] = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

func (r *Restorer) providers(projects *project.Resolver, packagesFolder string, lock *lockfile.LockFile, logger observability.Logger) resolver.Providers {
	local := []providers.Option{providers.WithLogger(logger)}
	if lock != nil {
		local = append(local, providers.WithLockFile(lock))
	}

	p := resolver.Providers{
		Project:  []resolver.DependencyProvider{providers.NewProjectProvider(projects, providers.WithLogger(logger))},
		Platform: []resolver.DependencyProvider{providers.NewPlatformReferenceProvider(r.opts.Platform)},
		Local: []resolver.DependencyProvider{
			providers.NewPackageProvider(r.cached(providers.NewLocalFeed(packagesFolder)), local...),
		},
		Fallback: providers.UnresolvedProvider{},
	}
	breakers := resilience.NewSources(resilience.DefaultConfig())
	for _, source := range r.opts.Sources {
		feed := providers.NewGuardedFeed(providers.NewFolderSource(source), breakers.For(source),
			r.opts.IgnoreFailedSources, providers.WithLogger(logger))
		p.Remote = append(p.Remote, providers.NewPackageProvider(r.cached(feed), providers.WithLogger(logger)))
	}
	return p
}

func (r *Restorer) cached(feed providers.PackageFeed) providers.PackageFeed {
	return providers.NewCachedFeed(feed, r.opts.FeedCacheSize, r.opts.FeedCacheTTL)
}

func (r *Restorer) packagesFolder(proj *project.Project) (string, error) {
	if r.opts.PackagesFolder != "" {
		return filepath.Abs(r.opts.PackagesFolder)
	}
	settings, err := project.FindGlobalSettings(proj.ProjectDirectory())
	if err != nil {
		return "", err
	}
	if settings != nil && settings.PackagesPath != "" {
		if filepath.IsAbs(settings.PackagesPath) {
			return settings.PackagesPath, nil
		}
		return filepath.Join(settings.Directory(), settings.PackagesPath), nil
	}
	return DefaultPackagesFolder(), nil
}

// priorLockFile returns the existing lock file when it is locked and still
// matches the project. Anything else is ignored with a log line.
func (r *Restorer) priorLockFile(ctx context.Context, logger observability.Logger, path string, proj *project.Project, searchPaths []string) *lockfile.LockFile {
	if r.opts.Unlock {
		return nil
	}
	lf, err := lockfile.ReadFile(ctx, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Ignoring lock file {Path}: {Error}", path, err)
		}
		return nil
	}
	if !lf.Locked {
		return nil
	}
	if ok, reason := lf.IsValidFor(proj, searchPaths); !ok {
		logger.Info("Lock file {Path} is out of date: {Reason}", path, reason)
		return nil
	}
	logger.Info("Using locked dependencies from {Path}", path)
	return lf
}

// diagnostics reports unresolved dependencies once per target and every
// compatibility issue. Unresolved platform references are left out: they
// depend on the machine, not on the project.
func diagnostics(projectPath string, graphs []*resolver.WalkResult, issues []compatibility.Issue) []*Diagnostic {
	var out []*Diagnostic
	for _, graph := range graphs {
		if graph == nil {
			continue
		}
		label := targetLabel(resolver.Target{Framework: graph.Framework, RuntimeIdentifier: graph.RuntimeIdentifier})
		for _, desc := range graph.Unresolved() {
			if desc.Kind != library.KindUnresolved || desc.Requested.IsPlatformReference {
				continue
			}
			out = append(out, &Diagnostic{
				Code:        CodeUnresolvedDependency,
				Level:       LevelError,
				Message:     "Unable to locate " + desc.Requested.String(),
				ProjectPath: projectPath,
				LibraryName: desc.Requested.Name,
				Framework:   label,
			})
		}
	}

	for _, issue := range issues {
		out = append(out, &Diagnostic{
			Code:        CodeCompatibility,
			Level:       LevelWarning,
			Message:     issue.Message,
			ProjectPath: projectPath,
			LibraryName: issue.LibraryName,
			Framework:   issue.Framework.String(),
		})
	}
	return out
}

func targetLabel(t resolver.Target) string {
	var sb strings.Builder
	sb.WriteString(t.Framework.String())
	if t.RuntimeIdentifier != "" {
		sb.WriteString("/")
		sb.WriteString(t.RuntimeIdentifier)
	}
	return sb.String()
}
