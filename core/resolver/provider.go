package resolver

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/library"
)

// DependencyProvider resolves requested libraries to descriptions.
type DependencyProvider interface {
	// AttemptedPaths lists the locations the provider searches, for
	// diagnostics.
	AttemptedPaths(framework *frameworks.NuGetFramework) []string

	// Describe returns the best match for r, or nil when the provider
	// cannot supply the library.
	Describe(ctx context.Context, r library.Range, framework *frameworks.NuGetFramework) (*library.Description, error)

	// Initialize is called once per walk with the winning descriptions the
	// provider produced, after versions are final. ctx is the walk's context.
	Initialize(ctx context.Context, resolved []*library.Description, framework *frameworks.NuGetFramework, runtimeIdentifier string)
}

// Providers lists the providers of a walker by tier. Tiers are tried in
// order: Project, then Platform for platform references or Local and
// Remote for everything else, then Fallback.
type Providers struct {
	Project  []DependencyProvider
	Platform []DependencyProvider
	Local    []DependencyProvider
	Remote   []DependencyProvider
	// Fallback answers when no other provider does. When nil the walker
	// records an unresolved description itself.
	Fallback DependencyProvider
}

// providerName returns a short name for metrics and logs.
func providerName(p DependencyProvider) string {
	if named, ok := p.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", p)
}
