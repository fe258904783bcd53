package frameworks

import (
	"fmt"
	"strconv"
	"strings"
)

var shortIdentifiers = map[string]string{
	NetFramework: "net",
	DNX:          "dnx",
	DNXCore:      "dnxcore",
	NetPlatform:  "dotnet",
	NetStandard:  "netstandard",
	NetCoreApp:   "netcoreapp",
}

// Longest prefixes first so "dnxcore" is not read as "dnx".
var shortPrefixes = []struct {
	prefix     string
	identifier string
}{
	{"netstandard", NetStandard},
	{"netcoreapp", NetCoreApp},
	{"dnxcore", DNXCore},
	{"dotnet", NetPlatform},
	{"dnx", DNX},
	{"net", NetFramework},
}

// ParseFramework parses a short folder name or a full framework name.
func ParseFramework(s string) (*NuGetFramework, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("framework string cannot be empty")
	}
	if strings.EqualFold(s, "any") {
		return AnyFramework, nil
	}
	if strings.Contains(s, ",") {
		return parseFullName(s)
	}
	return parseShortName(s)
}

// MustParseFramework parses a framework and panics on error.
func MustParseFramework(s string) *NuGetFramework {
	fw, err := ParseFramework(s)
	if err != nil {
		panic(err)
	}
	return fw
}

// parseFullName parses ".NETFramework,Version=v4.5[,Profile=Client]".
func parseFullName(s string) (*NuGetFramework, error) {
	parts := strings.Split(s, ",")
	fw := &NuGetFramework{Framework: canonicalIdentifier(strings.TrimSpace(parts[0]))}
	if fw.Framework == "" {
		return nil, fmt.Errorf("invalid framework name %q: missing identifier", s)
	}

	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("invalid framework name %q: malformed %q", s, part)
		}
		switch strings.ToLower(key) {
		case "version":
			v, err := parseDottedVersion(strings.TrimPrefix(strings.TrimPrefix(value, "v"), "V"))
			if err != nil {
				return nil, fmt.Errorf("invalid framework name %q: %w", s, err)
			}
			fw.Version = v
		case "profile":
			fw.Profile = value
		default:
			return nil, fmt.Errorf("invalid framework name %q: unknown key %q", s, key)
		}
	}
	return fw, nil
}

func parseShortName(s string) (*NuGetFramework, error) {
	lower := strings.ToLower(s)
	name, profile, _ := strings.Cut(lower, "-")

	for _, p := range shortPrefixes {
		versionPart, ok := strings.CutPrefix(name, p.prefix)
		if !ok {
			continue
		}
		fw := &NuGetFramework{Framework: p.identifier, Profile: profile}

		var err error
		switch {
		case versionPart == "" && p.identifier == NetPlatform:
			fw.Version = FrameworkVersion{Major: 5}
		case versionPart == "":
			return nil, fmt.Errorf("missing version for framework %q", s)
		case strings.Contains(versionPart, "."):
			fw.Version, err = parseDottedVersion(versionPart)
		default:
			fw.Version, err = parseCompactVersion(versionPart)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid version for framework %q: %w", s, err)
		}
		return fw, nil
	}
	return nil, fmt.Errorf("unknown framework identifier: %s", s)
}

func canonicalIdentifier(id string) string {
	for canonical := range shortIdentifiers {
		if strings.EqualFold(canonical, id) {
			return canonical
		}
	}
	return id
}

// parseCompactVersion parses "451" → 4.5.1 and "50" → 5.0.
func parseCompactVersion(s string) (FrameworkVersion, error) {
	if len(s) > 4 {
		return FrameworkVersion{}, fmt.Errorf("compact version %q too long", s)
	}
	var parts [4]int
	for i, r := range s {
		if r < '0' || r > '9' {
			return FrameworkVersion{}, fmt.Errorf("invalid compact version %q", s)
		}
		parts[i] = int(r - '0')
	}
	return FrameworkVersion{Major: parts[0], Minor: parts[1], Build: parts[2], Revision: parts[3]}, nil
}

func parseDottedVersion(s string) (FrameworkVersion, error) {
	fields := strings.Split(s, ".")
	if len(fields) > 4 {
		return FrameworkVersion{}, fmt.Errorf("version %q has too many parts", s)
	}
	var parts [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return FrameworkVersion{}, fmt.Errorf("invalid version part %q", f)
		}
		parts[i] = n
	}
	return FrameworkVersion{Major: parts[0], Minor: parts[1], Build: parts[2], Revision: parts[3]}, nil
}
