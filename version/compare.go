package version

import (
	"strconv"
	"strings"
)

// Compare returns -1, 0 or 1 when v orders before, equal to or after other.
//
// Numeric parts are compared first, then a release orders after any
// prerelease of the same numbers. Release labels compare pairwise: numeric
// labels before alphanumeric ones, numeric labels by value, others ordinally
// ignoring case; when one list is a prefix of the other the shorter one
// orders first. Metadata is ignored.
func (v *NuGetVersion) Compare(other *NuGetVersion) int {
	switch {
	case v == nil && other == nil:
		return 0
	case v == nil:
		return -1
	case other == nil:
		return 1
	}

	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	if c := compareInt(v.Revision, other.Revision); c != 0 {
		return c
	}

	switch {
	case !v.IsPrerelease() && !other.IsPrerelease():
		return 0
	case !v.IsPrerelease():
		return 1
	case !other.IsPrerelease():
		return -1
	}
	return compareLabels(v.ReleaseLabels, other.ReleaseLabels)
}

// Equals reports whether both versions order equal.
func (v *NuGetVersion) Equals(other *NuGetVersion) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v orders before other.
func (v *NuGetVersion) LessThan(other *NuGetVersion) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v orders after other.
func (v *NuGetVersion) GreaterThan(other *NuGetVersion) bool {
	return v.Compare(other) > 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareLabels(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareLabel(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt(len(a), len(b))
}

func compareLabel(a, b string) int {
	an, aErr := strconv.Atoi(a)
	bn, bErr := strconv.Atoi(b)
	aNumeric, bNumeric := aErr == nil, bErr == nil

	switch {
	case aNumeric && bNumeric:
		return compareInt(an, bn)
	case aNumeric:
		return -1
	case bNumeric:
		return 1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
