package frameworks

// GetNearest finds the nearest compatible framework from a list.
//
// Preference order:
// 1. Same framework identifier, highest version not above the target
// 2. .NETFramework for DNX targets
// 3. .NETStandard or .NETPlatform, highest implemented standard
// 4. Any
//
// Returns nil if no compatible framework found.
func GetNearest(target *NuGetFramework, available []*NuGetFramework) *NuGetFramework {
	if target == nil {
		return nil
	}

	var best *NuGetFramework
	bestRank, bestVersion := -1, FrameworkVersion{}

	for _, fw := range available {
		if fw == nil || !fw.IsCompatible(target) {
			continue
		}

		rank, v := nearestRank(fw, target)
		if best == nil || rank > bestRank || (rank == bestRank && v.Compare(bestVersion) > 0) {
			best, bestRank, bestVersion = fw, rank, v
		}
	}
	return best
}

func nearestRank(fw, target *NuGetFramework) (int, FrameworkVersion) {
	switch {
	case fw.Framework == target.Framework:
		return 4, fw.Version
	case fw.Framework == NetFramework:
		return 3, fw.Version
	case fw.Framework == NetStandard || fw.Framework == NetPlatform:
		level, _ := standardLevel(fw)
		return 2, level
	default:
		return 1, FrameworkVersion{}
	}
}

// FrameworkReducer helps find the nearest compatible framework.
type FrameworkReducer struct{}

// NewFrameworkReducer creates a new framework reducer.
func NewFrameworkReducer() *FrameworkReducer {
	return &FrameworkReducer{}
}

// GetNearest finds the nearest compatible framework from available frameworks.
func (fr *FrameworkReducer) GetNearest(target *NuGetFramework, available []*NuGetFramework) *NuGetFramework {
	return GetNearest(target, available)
}
