package frameworks

// netStandardSupport lists, per runtime framework, the highest .NETStandard
// version each framework version implements. Entries are ordered by
// ascending framework version.
var netStandardSupport = map[string][]struct {
	framework FrameworkVersion
	standard  FrameworkVersion
}{
	NetFramework: {
		{FrameworkVersion{Major: 4, Minor: 5}, FrameworkVersion{Major: 1, Minor: 1}},
		{FrameworkVersion{Major: 4, Minor: 5, Build: 1}, FrameworkVersion{Major: 1, Minor: 2}},
		{FrameworkVersion{Major: 4, Minor: 6}, FrameworkVersion{Major: 1, Minor: 3}},
		{FrameworkVersion{Major: 4, Minor: 6, Build: 1}, FrameworkVersion{Major: 1, Minor: 4}},
		{FrameworkVersion{Major: 4, Minor: 6, Build: 2}, FrameworkVersion{Major: 1, Minor: 5}},
	},
	DNX: {
		{FrameworkVersion{Major: 4, Minor: 5, Build: 1}, FrameworkVersion{Major: 1, Minor: 2}},
		{FrameworkVersion{Major: 4, Minor: 6}, FrameworkVersion{Major: 1, Minor: 3}},
	},
	DNXCore: {
		{FrameworkVersion{Major: 5}, FrameworkVersion{Major: 1, Minor: 5}},
	},
	NetCoreApp: {
		{FrameworkVersion{Major: 1}, FrameworkVersion{Major: 1, Minor: 6}},
	},
}

// standardLevel returns the .NETStandard version fw implements and whether
// it implements any.
func standardLevel(fw *NuGetFramework) (FrameworkVersion, bool) {
	switch fw.Framework {
	case NetStandard:
		return fw.Version, true
	case NetPlatform:
		// dotnet5.1 is netstandard1.0, dotnet5.6 is netstandard1.5.
		if fw.Version.Major != 5 || fw.Version.Minor == 0 {
			return FrameworkVersion{Major: 1}, fw.Version.Major == 5
		}
		return FrameworkVersion{Major: 1, Minor: fw.Version.Minor - 1}, true
	}

	var level FrameworkVersion
	found := false
	for _, entry := range netStandardSupport[fw.Framework] {
		if fw.Version.Compare(entry.framework) >= 0 {
			level = entry.standard
			found = true
		}
	}
	return level, found
}

// IsCompatible reports whether a package asset built for fw can be consumed
// by a project targeting target.
func (fw *NuGetFramework) IsCompatible(target *NuGetFramework) bool {
	if fw == nil || target == nil {
		return false
	}
	if fw.IsAny() {
		return true
	}
	if target.IsAny() {
		return false
	}

	if fw.Framework == target.Framework {
		return fw.Version.Compare(target.Version) <= 0 && (fw.Profile == "" || fw.Profile == target.Profile)
	}

	// DNX on the desktop runtime consumes .NETFramework assets.
	if fw.Framework == NetFramework && target.Framework == DNX {
		return fw.Version.Compare(target.Version) <= 0
	}

	if fw.Framework == NetStandard || fw.Framework == NetPlatform {
		provided, ok := standardLevel(fw)
		if !ok {
			return false
		}
		required, ok := standardLevel(target)
		return ok && provided.Compare(required) <= 0
	}
	return false
}

// IsCompatible checks if the package framework is compatible with the target framework.
func IsCompatible(pkg, target *NuGetFramework) bool {
	return pkg.IsCompatible(target)
}
