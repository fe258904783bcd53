// Package providers implements the dependency providers consulted by the
// graph walker: projects on disk, packages from a feed, platform reference
// assemblies, and a fallback that marks a name as unresolved.
package providers

//go:generate mockgen -source=feed.go -destination=mocks/mock_feed.go -package=mocks

import (
	"context"
	"io"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/version"
)

var (
	// ErrPackageNotFound is returned by feeds asked to open a package they
	// do not hold.
	ErrPackageNotFound = zerr.New("package not found")
	// ErrInvalidManifest is returned when a package manifest cannot be parsed.
	ErrInvalidManifest = zerr.New("invalid package manifest")
	// ErrSourceNotFound is returned by a package source whose folder does
	// not exist.
	ErrSourceNotFound = zerr.New("package source not found")
)

// PackageContent describes the installed content of one package version.
type PackageContent struct {
	// Path is the install directory, empty for feeds without a local layout.
	Path string
	// Sha512 is the base64 package hash.
	Sha512 string
	// Files lists package-relative paths with forward slashes, sorted.
	Files []string
}

// PackageFeed is a source of packages.
type PackageFeed interface {
	// Source names the feed for diagnostics.
	Source() string
	// IsRemote reports whether lookups leave the machine.
	IsRemote() bool
	// FindByID returns every available version of id in ascending order.
	FindByID(ctx context.Context, id string) ([]*version.NuGetVersion, error)
	// OpenManifest opens the .nuspec of a package version.
	OpenManifest(ctx context.Context, id string, ver *version.NuGetVersion) (io.ReadCloser, error)
	// OpenContent returns the content listing of a package version.
	OpenContent(ctx context.Context, id string, ver *version.NuGetVersion) (*PackageContent, error)
}
