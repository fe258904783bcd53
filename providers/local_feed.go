package providers

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/packaging"
	"github.com/willibrandon/gorestore/version"
)

// LocalFeed reads packages from a version-folder packages directory
// ({root}/{id}/{version}/...). A version counts as installed only once its
// .nupkg.sha512 marker exists.
type LocalFeed struct {
	resolver *packaging.VersionFolderPathResolver
	remote   bool
}

// NewLocalFeed creates a feed over the lowercase packages folder at root.
func NewLocalFeed(root string) *LocalFeed {
	return &LocalFeed{resolver: packaging.NewVersionFolderPathResolver(root, true)}
}

// NewFolderSource creates a feed over a file-system package source. It has
// the layout of a packages folder but belongs to the remote tier, so
// packages found there compete with the local folder.
func NewFolderSource(root string) *LocalFeed {
	return &LocalFeed{resolver: packaging.NewVersionFolderPathResolver(root, true), remote: true}
}

// PathResolver exposes the folder layout.
func (f *LocalFeed) PathResolver() *packaging.VersionFolderPathResolver {
	return f.resolver
}

// Source returns the packages folder.
func (f *LocalFeed) Source() string {
	return f.resolver.RootPath()
}

// IsRemote reports whether the feed was created as a package source.
func (f *LocalFeed) IsRemote() bool {
	return f.remote
}

func (f *LocalFeed) rootExists() bool {
	info, err := os.Stat(f.resolver.RootPath())
	return err == nil && info.IsDir()
}

// FindByID enumerates the installed versions of id. A missing package
// directory yields no versions and no error; a package source whose root
// is missing is an error.
func (f *LocalFeed) FindByID(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.resolver.VersionListDirectory(id))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, zerr.With(zerr.Wrap(err, "read package directory"), "id", id)
		}
		if f.remote && !f.rootExists() {
			return nil, zerr.With(zerr.Wrap(ErrSourceNotFound, "find "+id), "source", f.Source())
		}
		return nil, nil
	}

	var versions []*version.NuGetVersion
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ver, err := version.Parse(entry.Name())
		if err != nil {
			continue
		}
		if f.installed(id, ver) {
			versions = append(versions, ver)
		}
	}
	slices.SortFunc(versions, func(a, b *version.NuGetVersion) int { return a.Compare(b) })
	return versions, nil
}

// OpenManifest opens {id}.nuspec in the install directory.
func (f *LocalFeed) OpenManifest(ctx context.Context, id string, ver *version.NuGetVersion) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.installed(id, ver) {
		return nil, notFound(id, ver)
	}
	file, err := os.Open(f.resolver.ManifestPath(id, ver))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id, ver)
		}
		return nil, err
	}
	return file, nil
}

// OpenContent reads the hash marker and lists the install directory.
func (f *LocalFeed) OpenContent(ctx context.Context, id string, ver *version.NuGetVersion) (*PackageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := os.ReadFile(f.resolver.HashPath(id, ver))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id, ver)
		}
		return nil, err
	}

	installPath := f.resolver.InstallPath(id, ver)
	var files []string
	err = filepath.WalkDir(installPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(installPath, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "list package content"), "path", installPath)
	}
	slices.Sort(files)

	return &PackageContent{
		Path:   installPath,
		Sha512: strings.TrimSpace(string(hash)),
		Files:  files,
	}, nil
}

func (f *LocalFeed) installed(id string, ver *version.NuGetVersion) bool {
	_, err := os.Stat(f.resolver.HashPath(id, ver))
	return err == nil
}

func notFound(id string, ver *version.NuGetVersion) error {
	return zerr.With(zerr.With(zerr.Wrap(ErrPackageNotFound, "open package"), "id", id), "version", ver.String())
}
