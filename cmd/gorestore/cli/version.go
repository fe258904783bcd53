package cli

import "github.com/willibrandon/gorestore/cmd/gorestore/version"

// GetVersion returns the version string
func GetVersion() string {
	return version.Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return version.FullInfo()
}
