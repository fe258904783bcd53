// Package version provides the version and version-range model used by the
// resolver: parsing, ordering, range satisfaction and the candidate
// tie-break applied whenever several versions compete for the same name.
//
// Both SemVer 2.0 (Major.Minor.Patch[-Prerelease][+Metadata]) and legacy
// 4-part versions (Major.Minor.Build.Revision) are supported.
//
// Example:
//
//	v, err := version.Parse("1.2.3-beta.1")
//	if err != nil {
//	    return err
//	}
//	r := version.MustParseRange("1.2.*")
//	ok := r.Satisfies(v)
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is matched by every ParseError.
var ErrInvalidVersion = errors.New("invalid version")

// ParseError reports a version or range string that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// Unwrap returns ErrInvalidVersion.
func (e *ParseError) Unwrap() error {
	return ErrInvalidVersion
}

// NuGetVersion is an immutable concrete version.
type NuGetVersion struct {
	Major    int
	Minor    int
	Patch    int
	Revision int

	// IsLegacyVersion marks a 4-part version.
	IsLegacyVersion bool

	// ReleaseLabels holds the dot separated prerelease labels ("beta", "1").
	ReleaseLabels []string

	// Metadata is ignored for ordering and equality.
	Metadata string

	original string
}

// NewVersion builds a release version from its numeric parts.
func NewVersion(major, minor, patch int) *NuGetVersion {
	return &NuGetVersion{Major: major, Minor: minor, Patch: patch}
}

// String returns the text the version was parsed from, or its normalized
// form for versions built in code.
func (v *NuGetVersion) String() string {
	if v.original != "" {
		return v.original
	}
	return v.ToNormalizedString()
}

// ToNormalizedString renders the version without leading zeros, always with
// at least three numeric parts.
func (v *NuGetVersion) ToNormalizedString() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	if v.IsLegacyVersion || v.Revision > 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(v.Revision))
	}
	if len(v.ReleaseLabels) > 0 {
		sb.WriteByte('-')
		sb.WriteString(v.Release())
	}
	if v.Metadata != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Metadata)
	}
	return sb.String()
}

// Release returns the prerelease labels joined with '.'.
func (v *NuGetVersion) Release() string {
	return strings.Join(v.ReleaseLabels, ".")
}

// IsPrerelease reports whether the version carries prerelease labels.
func (v *NuGetVersion) IsPrerelease() bool {
	return len(v.ReleaseLabels) > 0
}

// Parse parses a version string.
//
// Supported formats:
//   - 1, 1.2, 1.2.3, 1.2.3.4
//   - any of the above followed by -label[.label...] and/or +metadata
func Parse(s string) (*NuGetVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &ParseError{Input: s, Reason: "version string cannot be empty"}
	}

	v := &NuGetVersion{original: s}

	rest := s
	if i := strings.IndexByte(rest, '+'); i >= 0 {
		v.Metadata = rest[i+1:]
		rest = rest[:i]
		if v.Metadata == "" {
			return nil, &ParseError{Input: s, Reason: "empty metadata"}
		}
	}
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		labels := strings.Split(rest[i+1:], ".")
		for _, label := range labels {
			if !isValidLabel(label) {
				return nil, &ParseError{Input: s, Reason: fmt.Sprintf("invalid release label %q", label)}
			}
		}
		v.ReleaseLabels = labels
		rest = rest[:i]
	}

	numbers := strings.Split(rest, ".")
	if len(numbers) > 4 {
		return nil, &ParseError{Input: s, Reason: "too many numeric parts"}
	}
	parts := [4]int{}
	for i, n := range numbers {
		value, err := strconv.Atoi(n)
		if err != nil || value < 0 || n == "" || n[0] == '+' {
			return nil, &ParseError{Input: s, Reason: fmt.Sprintf("invalid numeric part %q", n)}
		}
		parts[i] = value
	}
	v.Major, v.Minor, v.Patch, v.Revision = parts[0], parts[1], parts[2], parts[3]
	v.IsLegacyVersion = len(numbers) == 4

	return v, nil
}

// MustParse parses a version string and panics on error.
func MustParse(s string) *NuGetVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func isValidLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, r := range label {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
		default:
			return false
		}
	}
	return true
}
