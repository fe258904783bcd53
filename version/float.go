package version

import (
	"fmt"
	"strings"
)

// FloatBehavior defines which part of a version may float upward.
type FloatBehavior int

const (
	// FloatNone means no floating
	FloatNone FloatBehavior = iota

	// FloatPrerelease floats to the latest prerelease: 1.0.0-*, 1.0.0-beta*
	FloatPrerelease

	// FloatRevision floats to the latest revision: 1.0.0.*
	FloatRevision

	// FloatBuild floats to the latest build: 1.0.*
	FloatBuild

	// FloatMinor floats to the latest minor: 1.*
	FloatMinor

	// FloatMajor floats to the latest major: *
	FloatMajor
)

// String returns the string representation of FloatBehavior.
func (f FloatBehavior) String() string {
	switch f {
	case FloatNone:
		return "none"
	case FloatPrerelease:
		return "prerelease"
	case FloatRevision:
		return "revision"
	case FloatBuild:
		return "build"
	case FloatMinor:
		return "minor"
	case FloatMajor:
		return "major"
	default:
		return "unknown"
	}
}

func parseFloatRange(s string) (*VersionRange, error) {
	if s == "*" {
		return &VersionRange{MinVersion: NewVersion(0, 0, 0), IsMinInclusive: true, Float: FloatMajor}, nil
	}

	if !strings.HasSuffix(s, "*") || strings.Count(s, "*") != 1 {
		return nil, &ParseError{Input: s, Reason: "wildcard must be the last character"}
	}
	prefix := s[:len(s)-1]

	// 1.0.0-* and 1.0.0-beta*
	if i := strings.IndexByte(prefix, '-'); i >= 0 {
		base := strings.TrimSuffix(prefix, "-")
		v, err := Parse(base)
		if err != nil {
			return nil, err
		}
		return &VersionRange{MinVersion: v, IsMinInclusive: true, Float: FloatPrerelease}, nil
	}

	if !strings.HasSuffix(prefix, ".") {
		return nil, &ParseError{Input: s, Reason: "wildcard must follow a '.' or '-'"}
	}
	numbers := strings.Split(strings.TrimSuffix(prefix, "."), ".")

	var behavior FloatBehavior
	switch len(numbers) {
	case 1:
		behavior = FloatMinor
	case 2:
		behavior = FloatBuild
	case 3:
		behavior = FloatRevision
	default:
		return nil, &ParseError{Input: s, Reason: fmt.Sprintf("invalid wildcard position in %q", s)}
	}

	v, err := Parse(strings.Join(numbers, "."))
	if err != nil {
		return nil, err
	}
	// The float pattern carries the shape, the floor is normalized.
	v.original = ""
	return &VersionRange{MinVersion: v, IsMinInclusive: true, Float: behavior}, nil
}

// EqualsFloating reports whether v matches the range's floating pattern.
// For a non-floating range it reports whether v equals the minimum.
func (r *VersionRange) EqualsFloating(v *NuGetVersion) bool {
	if v == nil || r.MinVersion == nil {
		return false
	}
	floor := r.MinVersion

	switch r.Float {
	case FloatPrerelease:
		return v.Major == floor.Major && v.Minor == floor.Minor && v.Patch == floor.Patch &&
			v.Revision == floor.Revision &&
			strings.HasPrefix(strings.ToLower(v.Release()), strings.ToLower(floor.Release()))
	case FloatRevision:
		return v.Major == floor.Major && v.Minor == floor.Minor && v.Patch == floor.Patch
	case FloatBuild:
		return v.Major == floor.Major && v.Minor == floor.Minor
	case FloatMinor:
		return v.Major == floor.Major
	case FloatMajor:
		return true
	default:
		return v.Equals(floor)
	}
}

func (r *VersionRange) floatPattern() string {
	floor := r.MinVersion
	switch r.Float {
	case FloatPrerelease:
		if floor.IsPrerelease() {
			return floor.String() + "*"
		}
		return floor.String() + "-*"
	case FloatRevision:
		return fmt.Sprintf("%d.%d.%d.*", floor.Major, floor.Minor, floor.Patch)
	case FloatBuild:
		return fmt.Sprintf("%d.%d.*", floor.Major, floor.Minor)
	case FloatMinor:
		return fmt.Sprintf("%d.*", floor.Major)
	default:
		return "*"
	}
}
