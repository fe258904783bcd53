package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/willibrandon/gorestore/cmd/gorestore/config"
	"github.com/willibrandon/gorestore/providers"
)

// DefaultPlatform returns where framework reference assemblies are looked
// up: the referenceAssemblies setting, then the Windows install location.
// Elsewhere there are none.
func DefaultPlatform(settings *config.Settings) providers.PlatformContext {
	if root := settings.ReferenceAssembliesRoot(); root != "" {
		return providers.DirectoryPlatform{Root: root}
	}
	if runtime.GOOS == "windows" {
		programFiles := os.Getenv("ProgramFiles(x86)")
		if programFiles == "" {
			programFiles = os.Getenv("ProgramFiles")
		}
		if programFiles != "" {
			return providers.DirectoryPlatform{
				Root: filepath.Join(programFiles, "Reference Assemblies", "Microsoft", "Framework"),
			}
		}
	}
	return providers.NoPlatform{}
}
