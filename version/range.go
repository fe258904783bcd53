package version

import (
	"fmt"
	"strings"
)

// VersionRange is a constraint on acceptable versions.
//
// Syntax:
//
//	1.0          - x ≥ 1.0 (implicit minimum, also written ">= 1.0")
//	[1.0, 2.0]   - 1.0 ≤ x ≤ 2.0
//	(1.0, 2.0)   - 1.0 < x < 2.0
//	[1.0, 2.0)   - 1.0 ≤ x < 2.0
//	[1.0, )      - x ≥ 1.0
//	(, 2.0]      - x ≤ 2.0
//	[1.0]        - x == 1.0
//	1.0.0-*      - floating prerelease of 1.0.0
//	1.0.0-beta*  - floating prerelease starting with "beta"
//	1.0.0.*      - floating revision
//	1.0.*        - floating build
//	1.*          - floating minor
//	*            - floating major
//
// MinVersion is nil only for ranges without a lower bound.
type VersionRange struct {
	MinVersion     *NuGetVersion
	MaxVersion     *NuGetVersion
	IsMinInclusive bool
	IsMaxInclusive bool
	Float          FloatBehavior
}

// NewMinimumRange returns the range x ≥ v.
func NewMinimumRange(v *NuGetVersion) *VersionRange {
	return &VersionRange{MinVersion: v, IsMinInclusive: true}
}

// NewExactRange returns the range [v].
func NewExactRange(v *NuGetVersion) *VersionRange {
	return &VersionRange{MinVersion: v, MaxVersion: v, IsMinInclusive: true, IsMaxInclusive: true}
}

// ParseRange parses a version range string.
func ParseRange(s string) (*VersionRange, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, ">="); ok {
		s = strings.TrimSpace(rest)
	}
	if s == "" {
		return nil, &ParseError{Input: s, Reason: "version range cannot be empty"}
	}

	switch {
	case strings.HasPrefix(s, "[") || strings.HasPrefix(s, "("):
		return parseBracketRange(s)
	case strings.Contains(s, "*"):
		return parseFloatRange(s)
	}

	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return NewMinimumRange(v), nil
}

// MustParseRange parses a version range string and panics on error.
func MustParseRange(s string) *VersionRange {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func parseBracketRange(s string) (*VersionRange, error) {
	if !strings.HasSuffix(s, "]") && !strings.HasSuffix(s, ")") {
		return nil, &ParseError{Input: s, Reason: "range must end with ] or )"}
	}

	r := &VersionRange{
		IsMinInclusive: s[0] == '[',
		IsMaxInclusive: s[len(s)-1] == ']',
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	var minPart, maxPart string
	switch len(parts) {
	case 1:
		// [1.0.0] is an exact match; (1.0.0) matches nothing and is rejected.
		if !r.IsMinInclusive || !r.IsMaxInclusive {
			return nil, &ParseError{Input: s, Reason: "exact version must use inclusive brackets"}
		}
		minPart = strings.TrimSpace(parts[0])
		maxPart = minPart
	case 2:
		minPart = strings.TrimSpace(parts[0])
		maxPart = strings.TrimSpace(parts[1])
	default:
		return nil, &ParseError{Input: s, Reason: "range must have one or two parts separated by comma"}
	}
	if minPart == "" && maxPart == "" {
		return nil, &ParseError{Input: s, Reason: "range must have at least one bound"}
	}

	var err error
	if minPart != "" {
		if r.MinVersion, err = Parse(minPart); err != nil {
			return nil, err
		}
	}
	if maxPart != "" {
		if r.MaxVersion, err = Parse(maxPart); err != nil {
			return nil, err
		}
	}
	if r.MinVersion != nil && r.MaxVersion != nil && r.MinVersion.GreaterThan(r.MaxVersion) {
		return nil, &ParseError{Input: s, Reason: "minimum version is greater than maximum version"}
	}
	return r, nil
}

// Satisfies reports whether v lies within the range. A floating range also
// accepts any version matching its floating pattern.
func (r *VersionRange) Satisfies(v *NuGetVersion) bool {
	if v == nil {
		return false
	}

	if r.MinVersion != nil && !(r.Float != FloatNone && r.EqualsFloating(v)) {
		c := v.Compare(r.MinVersion)
		if c < 0 || (c == 0 && !r.IsMinInclusive) {
			return false
		}
	}

	if r.MaxVersion != nil {
		c := v.Compare(r.MaxVersion)
		if c > 0 || (c == 0 && !r.IsMaxInclusive) {
			return false
		}
	}
	return true
}

// FindBestMatch returns the best satisfying candidate according to
// SelectBetter, or nil when none satisfies the range.
func (r *VersionRange) FindBestMatch(versions []*NuGetVersion) *NuGetVersion {
	var best *NuGetVersion
	for _, v := range versions {
		if r.Satisfies(v) && SelectBetter(best, v, r) {
			best = v
		}
	}
	return best
}

// IsFloating reports whether the range floats.
func (r *VersionRange) IsFloating() bool {
	return r.Float != FloatNone
}

// IsExact reports whether the range pins a single version.
func (r *VersionRange) IsExact() bool {
	return r.Float == FloatNone && r.MinVersion != nil && r.IsMinInclusive && r.IsMaxInclusive &&
		r.MinVersion.Equals(r.MaxVersion)
}

// Equals reports structural equality.
func (r *VersionRange) Equals(other *VersionRange) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.String() == other.String()
}

// String renders the range in its canonical form: ">= 1.0.0", ">= 1.0.*",
// "[1.0.0]" or "[1.0.0, 2.0.0)". ParseRange accepts every rendering.
func (r *VersionRange) String() string {
	if r.Float != FloatNone {
		return ">= " + r.floatPattern()
	}
	if r.MaxVersion == nil && r.MinVersion != nil && r.IsMinInclusive {
		return ">= " + r.MinVersion.String()
	}
	if r.IsExact() {
		return "[" + r.MinVersion.String() + "]"
	}

	minBracket, maxBracket := "(", ")"
	if r.IsMinInclusive {
		minBracket = "["
	}
	if r.IsMaxInclusive {
		maxBracket = "]"
	}
	minStr, maxStr := "", ""
	if r.MinVersion != nil {
		minStr = r.MinVersion.String()
	}
	if r.MaxVersion != nil {
		maxStr = r.MaxVersion.String()
	}
	return fmt.Sprintf("%s%s, %s%s", minBracket, minStr, maxStr, maxBracket)
}
