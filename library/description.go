package library

import (
	"fmt"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/version"
)

// Kind identifies which kind of provider produced a description.
type Kind int

const (
	// KindUnresolved - no provider could supply the library
	KindUnresolved Kind = iota
	// KindProject - an on-disk project
	KindProject
	// KindPackage - a package from a local folder or a feed
	KindPackage
	// KindReferenceAssembly - an installed platform reference assembly
	KindReferenceAssembly
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindPackage:
		return "package"
	case KindReferenceAssembly:
		return "referenceAssembly"
	default:
		return "unresolved"
	}
}

// IssueKind classifies a compatibility issue.
type IssueKind int

const (
	// UnsupportedFramework - the package ships assemblies but none for the framework
	UnsupportedFramework IssueKind = iota + 1
	// MissingRuntimeAssembly - a compile-time assembly has no runtime counterpart
	MissingRuntimeAssembly
)

func (k IssueKind) String() string {
	switch k {
	case UnsupportedFramework:
		return "UnsupportedFramework"
	case MissingRuntimeAssembly:
		return "MissingRuntimeAssembly"
	default:
		return "Unknown"
	}
}

// CompatibilityIssue describes a resolved library that cannot be used on a
// framework.
type CompatibilityIssue struct {
	Kind           IssueKind
	LibraryName    string
	LibraryVersion string
	Framework      *frameworks.NuGetFramework
	AssemblyName   string
	Message        string
}

func (i *CompatibilityIssue) Error() string {
	return i.Message
}

// PackageDetails holds package metadata filled in once the winning version
// is known.
type PackageDetails struct {
	Sha512              string
	Files               []string
	IsServiceable       bool
	FrameworkAssemblies []string
}

// Description is a resolved node of the dependency graph.
type Description struct {
	Requested          Range
	Identity           *Identity
	Dependencies       []Dependency
	Path               string
	Kind               Kind
	Framework          *frameworks.NuGetFramework
	Resolved           bool
	CompatibilityIssue *CompatibilityIssue
	Package            *PackageDetails
}

// Name returns the identity name, falling back to the requested name.
func (d *Description) Name() string {
	if d.Identity != nil {
		return d.Identity.Name
	}
	return d.Requested.Name
}

func (d *Description) String() string {
	if d.Identity != nil {
		return fmt.Sprintf("%s (%s)", d.Identity, d.Kind)
	}
	return fmt.Sprintf("%s (%s)", d.Requested, d.Kind)
}

// NewUnresolved returns the description of a library no provider could
// resolve.
func NewUnresolved(r Range, framework *frameworks.NuGetFramework) *Description {
	return &Description{
		Requested: r,
		Identity: &Identity{
			Name:                r.Name,
			Version:             minVersion(r),
			IsPlatformReference: r.IsPlatformReference,
		},
		Kind:      KindUnresolved,
		Framework: framework,
		Resolved:  false,
	}
}

func minVersion(r Range) *version.NuGetVersion {
	if r.VersionRange == nil {
		return nil
	}
	return r.VersionRange.MinVersion
}
