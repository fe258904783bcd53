// Package frameworks provides Target Framework Moniker (TFM) parsing and
// compatibility checking for the frameworks a project can target.
//
// Short folder names ("net45", "dnx451", "dnxcore50", "dotnet5.4",
// "netstandard1.3") and full names (".NETFramework,Version=v4.5") are both
// accepted.
//
// Example:
//
//	fw, err := frameworks.ParseFramework("dnx451")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(fw) // DNX,Version=v4.5.1
package frameworks

import (
	"fmt"
	"strings"
)

// Framework identifiers.
const (
	NetFramework  = ".NETFramework"
	DNX           = "DNX"
	DNXCore       = "DNXCore"
	NetPlatform   = ".NETPlatform"
	NetStandard   = ".NETStandard"
	NetCoreApp    = ".NETCoreApp"
	AnyIdentifier = "Any"
)

// NuGetFramework represents a target framework.
type NuGetFramework struct {
	// Framework is the framework identifier (e.g., ".NETFramework", "DNX")
	Framework string

	// Version is the framework version
	Version FrameworkVersion

	// Profile is an optional framework profile (e.g., "Client")
	Profile string
}

// FrameworkVersion represents a framework version number.
type FrameworkVersion struct {
	Major    int
	Minor    int
	Build    int
	Revision int
}

// String trims trailing zero components, keeping at least Major.Minor:
//   - 4.5.1.0 → "4.5.1"
//   - 5.0.0.0 → "5.0"
func (v FrameworkVersion) String() string {
	if v.Revision > 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
	}
	if v.Build > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or 1.
func (v FrameworkVersion) Compare(other FrameworkVersion) int {
	a := [4]int{v.Major, v.Minor, v.Build, v.Revision}
	b := [4]int{other.Major, other.Minor, other.Build, other.Revision}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// AnyFramework is the framework of assets placed directly under lib/.
var AnyFramework = &NuGetFramework{Framework: AnyIdentifier}

// CommonFrameworks provides frequently used framework instances.
var CommonFrameworks = struct {
	Net45     *NuGetFramework
	Net451    *NuGetFramework
	DNX451    *NuGetFramework
	DNXCore50 *NuGetFramework
	DotNet    *NuGetFramework
}{
	Net45:     &NuGetFramework{Framework: NetFramework, Version: FrameworkVersion{Major: 4, Minor: 5}},
	Net451:    &NuGetFramework{Framework: NetFramework, Version: FrameworkVersion{Major: 4, Minor: 5, Build: 1}},
	DNX451:    &NuGetFramework{Framework: DNX, Version: FrameworkVersion{Major: 4, Minor: 5, Build: 1}},
	DNXCore50: &NuGetFramework{Framework: DNXCore, Version: FrameworkVersion{Major: 5}},
	DotNet:    &NuGetFramework{Framework: NetPlatform, Version: FrameworkVersion{Major: 5}},
}

// String returns the full framework name, e.g. "DNX,Version=v4.5.1". This
// is the form used for lock file target keys.
func (fw *NuGetFramework) String() string {
	if fw == nil {
		return ""
	}
	if fw.IsAny() {
		return AnyIdentifier
	}
	s := fw.Framework + ",Version=v" + fw.Version.String()
	if fw.Profile != "" {
		s += ",Profile=" + fw.Profile
	}
	return s
}

// ShortFolderName returns the folder name used inside packages, e.g.
// "dnx451", "net45", "dotnet5.4".
func (fw *NuGetFramework) ShortFolderName() string {
	if fw.IsAny() {
		return "any"
	}
	short, ok := shortIdentifiers[fw.Framework]
	if !ok {
		return strings.ToLower(fw.String())
	}

	var ver string
	switch fw.Framework {
	case NetFramework, DNX, DNXCore:
		// Compact form: 4.5.1 → 451
		ver = fmt.Sprintf("%d%d", fw.Version.Major, fw.Version.Minor)
		if fw.Version.Build > 0 {
			ver += fmt.Sprintf("%d", fw.Version.Build)
		}
	case NetPlatform:
		if fw.Version.Compare(FrameworkVersion{Major: 5}) != 0 {
			ver = fw.Version.String()
		}
	default:
		ver = fw.Version.String()
	}

	s := short + ver
	if fw.Profile != "" {
		s += "-" + strings.ToLower(fw.Profile)
	}
	return s
}

// IsAny reports whether fw is the framework-agnostic framework.
func (fw *NuGetFramework) IsAny() bool {
	return fw != nil && fw.Framework == AnyIdentifier
}

// IsDesktop reports whether fw runs on the full desktop runtime and so has
// access to installed reference assemblies.
func (fw *NuGetFramework) IsDesktop() bool {
	return fw != nil && (fw.Framework == NetFramework || fw.Framework == DNX)
}

// IsPlatformNeutral reports whether fw is the compile-only ".NETPlatform"
// framework that stands for any runtime.
func (fw *NuGetFramework) IsPlatformNeutral() bool {
	return fw != nil && fw.Framework == NetPlatform
}

// Equals checks if two frameworks are equal.
func (fw *NuGetFramework) Equals(other *NuGetFramework) bool {
	if fw == nil || other == nil {
		return fw == other
	}
	return strings.EqualFold(fw.Framework, other.Framework) &&
		fw.Version.Compare(other.Version) == 0 &&
		strings.EqualFold(fw.Profile, other.Profile)
}
