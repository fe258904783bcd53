// Package library defines the values that flow through dependency
// resolution: requested ranges, resolved identities, dependency edges and
// the resolved node descriptions providers produce.
package library

import (
	"strings"

	"github.com/willibrandon/gorestore/version"
)

// PlatformPrefix marks a platform (framework assembly) reference.
const PlatformPrefix = "fx/"

// Range is a requested library: a name and an optional version constraint.
// A nil VersionRange means any version, which is how project references
// are usually requested.
type Range struct {
	Name                string
	VersionRange        *version.VersionRange
	IsPlatformReference bool
}

// NewRange builds a Range, turning a "fx/" prefixed name into a platform
// reference.
func NewRange(name string, vr *version.VersionRange) Range {
	if trimmed, ok := strings.CutPrefix(name, PlatformPrefix); ok {
		return Range{Name: trimmed, VersionRange: vr, IsPlatformReference: true}
	}
	return Range{Name: name, VersionRange: vr}
}

// ParseRange parses "Name", "Name 1.0.0", "Name >= 1.0.0", "Name [1.0, 2.0)"
// or "fx/Name".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	name, spec, found := strings.Cut(s, " ")
	if !found || strings.TrimSpace(spec) == "" {
		return NewRange(name, nil), nil
	}
	vr, err := version.ParseRange(spec)
	if err != nil {
		return Range{}, err
	}
	return NewRange(name, vr), nil
}

// String renders the range as it appears in lock file dependency groups:
// "Name >= 1.0.0", "Name [1.0.0]" or "fx/Name".
func (r Range) String() string {
	var sb strings.Builder
	if r.IsPlatformReference {
		sb.WriteString(PlatformPrefix)
	}
	sb.WriteString(r.Name)
	if r.VersionRange != nil {
		sb.WriteByte(' ')
		sb.WriteString(r.VersionRange.String())
	}
	return sb.String()
}

// Key returns a case-insensitive structural key used for memoization.
func (r Range) Key() string {
	return strings.ToLower(r.String())
}

// Equals reports structural equality.
func (r Range) Equals(other Range) bool {
	return r.Key() == other.Key()
}

// Identity is a concrete resolved library.
type Identity struct {
	Name                string
	Version             *version.NuGetVersion
	IsPlatformReference bool
}

// String renders "Name/Version", the form used for lock file keys.
func (id Identity) String() string {
	if id.Version == nil {
		return id.Name
	}
	return id.Name + "/" + id.Version.String()
}

// Key returns a case-insensitive structural key with the version normalized.
func (id Identity) Key() string {
	var sb strings.Builder
	if id.IsPlatformReference {
		sb.WriteString(PlatformPrefix)
	}
	sb.WriteString(strings.ToLower(id.Name))
	if id.Version != nil {
		sb.WriteByte('/')
		sb.WriteString(strings.ToLower(id.Version.ToNormalizedString()))
	}
	return sb.String()
}

// Equals reports structural equality.
func (id Identity) Equals(other Identity) bool {
	return id.Key() == other.Key()
}
