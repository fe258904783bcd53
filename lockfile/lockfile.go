// Package lockfile models project.lock.json, the persisted result of a
// restore: one target per framework and runtime pair, the libraries those
// targets pin, and the project dependency groups the file was resolved
// from.
package lockfile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.trai.ch/zerr"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/version"
)

const (
	// FileName is the lock file name next to project.json.
	FileName = "project.lock.json"
	// FormatVersion is the format version this package reads and writes.
	FormatVersion = 2
	// InvalidVersion marks a lock file that could not be read.
	InvalidVersion = math.MinInt32
)

var (
	// ErrMalformedLockFile is matched by every *FormatError.
	ErrMalformedLockFile = zerr.New("malformed lock file")
	// ErrMissingLibrary reports a target library without a library entry.
	ErrMissingLibrary = zerr.New("target library has no library entry")
	// ErrDuplicateTargetLibrary reports a name listed twice in one target.
	ErrDuplicateTargetLibrary = zerr.New("duplicate library in target")
)

// LockFile is the in-memory form of project.lock.json.
type LockFile struct {
	Locked                      bool
	Version                     int
	GlobalSearchPaths           []string
	ProjectFileDependencyGroups []*DependencyGroup
	Libraries                   []*Library
	Targets                     []*Target
}

// DependencyGroup lists the dependency strings declared for one framework.
// The group with an empty FrameworkName holds the shared dependencies.
type DependencyGroup struct {
	FrameworkName string
	Dependencies  []string
}

// Library is one package version pinned by any target.
type Library struct {
	Name          string
	Version       *version.NuGetVersion
	IsServiceable bool
	Sha512        string
	Files         []string
}

// Key returns "Name/Version".
func (l *Library) Key() string {
	return l.Name + "/" + l.Version.String()
}

// Target holds the resolution for one framework and optional runtime.
type Target struct {
	Framework         *frameworks.NuGetFramework
	RuntimeIdentifier string
	Libraries         []*TargetLibrary
}

// Key returns the document key: "<framework>" or "<framework>/<runtime>".
func (t *Target) Key() string {
	if t.RuntimeIdentifier == "" {
		return t.Framework.String()
	}
	return t.Framework.String() + "/" + t.RuntimeIdentifier
}

// Library returns the target library called name, or nil.
func (t *Target) Library(name string) *TargetLibrary {
	for _, lib := range t.Libraries {
		if strings.EqualFold(lib.Name, name) {
			return lib
		}
	}
	return nil
}

// TargetLibrary is a library as resolved for one target.
type TargetLibrary struct {
	Name                  string
	Version               *version.NuGetVersion
	Dependencies          []PackageDependency
	FrameworkAssemblies   []string
	CompileTimeAssemblies []FileItem
	RuntimeAssemblies     []FileItem
	ResourceAssemblies    []FileItem
	NativeLibraries       []FileItem
}

// Key returns "Name/Version".
func (l *TargetLibrary) Key() string {
	return l.Name + "/" + l.Version.String()
}

// PackageDependency is a recorded dependency edge. A nil VersionRange means
// any version. Spec holds the range text as read from a document and is
// written back verbatim; when empty the writer renders VersionRange.
type PackageDependency struct {
	ID           string
	VersionRange *version.VersionRange
	Spec         string
}

// FileItem is an asset path with its properties.
type FileItem struct {
	Path       string
	Properties []Property
}

// Property is a name/value pair attached to a FileItem.
type Property struct {
	Name  string
	Value string
}

// New returns an empty, unlocked lock file of the current format.
func New() *LockFile {
	return &LockFile{Version: FormatVersion}
}

func invalidLockFile() *LockFile {
	return &LockFile{Version: InvalidVersion}
}

// Target returns the target for framework and runtime, or nil.
func (lf *LockFile) Target(framework *frameworks.NuGetFramework, runtimeIdentifier string) *Target {
	for _, t := range lf.Targets {
		if t.Framework.Equals(framework) && t.RuntimeIdentifier == runtimeIdentifier {
			return t
		}
	}
	return nil
}

// Library returns the library entry for name and version, or nil.
func (lf *LockFile) Library(name string, ver *version.NuGetVersion) *Library {
	for _, lib := range lf.Libraries {
		if strings.EqualFold(lib.Name, name) && lib.Version.Equals(ver) {
			return lib
		}
	}
	return nil
}

// DependencyGroup returns the group for frameworkName, or nil.
func (lf *LockFile) DependencyGroup(frameworkName string) *DependencyGroup {
	for _, g := range lf.ProjectFileDependencyGroups {
		if g.FrameworkName == frameworkName {
			return g
		}
	}
	return nil
}

// Validate checks the structural invariants: every target library has a
// library entry and no name appears twice within a target.
func (lf *LockFile) Validate() error {
	var errs []error
	for _, t := range lf.Targets {
		seen := make(map[string]bool, len(t.Libraries))
		for _, tl := range t.Libraries {
			name := strings.ToLower(tl.Name)
			if seen[name] {
				errs = append(errs, zerr.With(zerr.With(ErrDuplicateTargetLibrary, "target", t.Key()), "library", tl.Name))
			}
			seen[name] = true

			if lf.Library(tl.Name, tl.Version) == nil {
				errs = append(errs, zerr.With(zerr.With(ErrMissingLibrary, "target", t.Key()), "library", tl.Key()))
			}
		}
	}
	return errors.Join(errs...)
}

// FormatError reports a lock file document that does not have the expected
// shape. Path locates the offending value, e.g.
// targets["DNX,Version=v4.5.1"]["A/1.0.0"].dependencies.
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedLockFile, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedLockFile, e.Path, e.Message)
}

func (e *FormatError) Unwrap() error {
	return ErrMalformedLockFile
}
