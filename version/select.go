package version

// SelectBetter reports whether considering should replace current as the best
// candidate for ideal.
//
// A nil candidate never wins, and a candidate that misses ideal's floating
// pattern while sitting below its floor is rejected. Among two candidates
// that both match the floating pattern the higher one wins; otherwise the
// lower one does.
func SelectBetter(current, considering *NuGetVersion, ideal *VersionRange) bool {
	if considering == nil {
		return false
	}
	if ideal != nil && !ideal.EqualsFloating(considering) &&
		ideal.MinVersion != nil && considering.LessThan(ideal.MinVersion) {
		return false
	}
	if current == nil {
		return true
	}
	if ideal != nil && ideal.EqualsFloating(current) && ideal.EqualsFloating(considering) {
		return current.LessThan(considering)
	}
	return current.GreaterThan(considering)
}
