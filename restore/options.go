package restore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/observability"
	"github.com/willibrandon/gorestore/providers"
)

// PackagesEnvVar overrides the default packages folder.
const PackagesEnvVar = "DNX_PACKAGES"

// Options holds restore configuration.
type Options struct {
	// PackagesFolder is the local packages folder. Empty means the
	// "packages" entry of global.json, then DefaultPackagesFolder.
	PackagesFolder string
	// Sources are file-system package sources consulted as the remote tier.
	Sources []string
	// IgnoreFailedSources treats a source that cannot be read as empty
	// instead of failing the restore.
	IgnoreFailedSources bool
	// Runtimes adds a runtime-specific target per framework.
	Runtimes []string
	// Frameworks restricts the walk to these project frameworks. Empty
	// walks every framework the project declares.
	Frameworks []*frameworks.NuGetFramework

	Mode resolver.Mode
	// MaxConcurrency bounds how many targets are walked at once.
	MaxConcurrency int

	// Lock marks the written lock file as locked.
	Lock bool
	// Unlock ignores a locked lock file and writes an unlocked one.
	Unlock bool
	// NoWrite resolves and checks without writing the lock file.
	NoWrite bool

	Platform providers.PlatformContext
	Logger   observability.Logger

	FeedCacheSize int
	FeedCacheTTL  time.Duration
}

// DefaultPackagesFolder returns $DNX_PACKAGES or ~/.dnx/packages.
func DefaultPackagesFolder() string {
	if dir := os.Getenv(PackagesEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dnx", "packages")
	}
	return filepath.Join(home, ".dnx", "packages")
}
