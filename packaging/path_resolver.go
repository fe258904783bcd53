// Package packaging describes the on-disk shape of an installed package:
// its version-folder layout, its .nuspec manifest and the assets it ships
// for each framework.
package packaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/willibrandon/gorestore/version"
)

// VersionFolderPathResolver resolves paths in a packages folder laid out as
// {root}/{id}/{version}/.
type VersionFolderPathResolver struct {
	rootPath    string
	isLowercase bool
}

// NewVersionFolderPathResolver creates a path resolver. With isLowercase the
// id and version segments are lower-cased.
func NewVersionFolderPathResolver(rootPath string, isLowercase bool) *VersionFolderPathResolver {
	return &VersionFolderPathResolver{
		rootPath:    rootPath,
		isLowercase: isLowercase,
	}
}

// RootPath returns the packages folder.
func (r *VersionFolderPathResolver) RootPath() string {
	return r.rootPath
}

func (r *VersionFolderPathResolver) normalize(s string) string {
	if r.isLowercase {
		return strings.ToLower(s)
	}
	return s
}

// VersionListDirectory returns {root}/{id}.
func (r *VersionFolderPathResolver) VersionListDirectory(packageID string) string {
	return filepath.Join(r.rootPath, r.normalize(packageID))
}

// InstallPath returns {root}/{id}/{version}.
func (r *VersionFolderPathResolver) InstallPath(packageID string, ver *version.NuGetVersion) string {
	return filepath.Join(r.rootPath, r.normalize(packageID), r.normalize(ver.ToNormalizedString()))
}

// PackageFilePath returns {root}/{id}/{version}/{id}.{version}.nupkg.
func (r *VersionFolderPathResolver) PackageFilePath(packageID string, ver *version.NuGetVersion) string {
	return filepath.Join(r.InstallPath(packageID, ver),
		fmt.Sprintf("%s.%s.nupkg", r.normalize(packageID), r.normalize(ver.ToNormalizedString())))
}

// HashPath returns the .nupkg.sha512 marker written once a package is
// fully installed.
func (r *VersionFolderPathResolver) HashPath(packageID string, ver *version.NuGetVersion) string {
	return r.PackageFilePath(packageID, ver) + ".sha512"
}

// ManifestPath returns {root}/{id}/{version}/{id}.nuspec.
func (r *VersionFolderPathResolver) ManifestPath(packageID string, ver *version.NuGetVersion) string {
	return filepath.Join(r.InstallPath(packageID, ver), r.normalize(packageID)+".nuspec")
}
