package packaging

import (
	"reflect"
	"testing"

	"github.com/willibrandon/gorestore/frameworks"
)

func assetPaths(assets []Asset) []string {
	var paths []string
	for _, a := range assets {
		paths = append(paths, a.Path)
	}
	return paths
}

func TestSelectAssets_NearestLibFolder(t *testing.T) {
	files := []string{
		"lib/net40/Foo.dll",
		"lib/net45/Foo.dll",
		"lib/net45/Foo.xml",
		"lib/dnxcore50/Foo.dll",
		"Foo.nuspec",
	}

	tests := []struct {
		framework string
		want      []string
	}{
		{"net45", []string{"lib/net45/Foo.dll"}},
		{"net451", []string{"lib/net45/Foo.dll"}},
		{"net40", []string{"lib/net40/Foo.dll"}},
		{"dnx451", []string{"lib/net45/Foo.dll"}},
		{"dnxcore50", []string{"lib/dnxcore50/Foo.dll"}},
		{"net35", nil},
	}
	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			sel := SelectAssets(files, frameworks.MustParseFramework(tt.framework), "")
			if got := assetPaths(sel.Runtime); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Runtime = %v, want %v", got, tt.want)
			}
			if got := assetPaths(sel.Compile); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectAssets_RefFolderWinsForCompile(t *testing.T) {
	files := []string{
		"ref/dotnet/System.Runtime.dll",
		"lib/dnxcore50/System.Runtime.dll",
		"lib/net45/_._",
	}

	sel := SelectAssets(files, frameworks.CommonFrameworks.DNXCore50, "")
	if got := assetPaths(sel.Compile); !reflect.DeepEqual(got, []string{"ref/dotnet/System.Runtime.dll"}) {
		t.Errorf("Compile = %v", got)
	}
	if got := assetPaths(sel.Runtime); !reflect.DeepEqual(got, []string{"lib/dnxcore50/System.Runtime.dll"}) {
		t.Errorf("Runtime = %v", got)
	}

	desktop := SelectAssets(files, frameworks.CommonFrameworks.Net45, "")
	if got := assetPaths(desktop.Runtime); !reflect.DeepEqual(got, []string{"lib/net45/_._"}) {
		t.Errorf("net45 Runtime = %v, want placeholder", got)
	}
	if desktop.IsEmpty() {
		t.Error("placeholder selection should not be empty")
	}
}

func TestSelectAssets_Resources(t *testing.T) {
	files := []string{
		"lib/net45/Foo.dll",
		"lib/net45/fr/Foo.resources.dll",
		"lib/net45/de/Foo.resources.dll",
	}

	sel := SelectAssets(files, frameworks.CommonFrameworks.Net45, "")
	if len(sel.Resource) != 2 {
		t.Fatalf("len(Resource) = %d, want 2", len(sel.Resource))
	}
	if sel.Resource[0].Path != "lib/net45/de/Foo.resources.dll" || sel.Resource[0].Properties[PropertyLocale] != "de" {
		t.Errorf("Resource[0] = %+v", sel.Resource[0])
	}
	if got := assetPaths(sel.Runtime); !reflect.DeepEqual(got, []string{"lib/net45/Foo.dll"}) {
		t.Errorf("Runtime = %v", got)
	}
}

func TestSelectAssets_RuntimeSpecific(t *testing.T) {
	files := []string{
		`lib\net45\Native.Wrapper.dll`,
		"runtimes/win-x64/lib/net45/Native.Wrapper.dll",
		"runtimes/win-x64/native/wrapper.dll",
		"runtimes/win/native/wrapper-any.dll",
		"runtimes/linux-x64/native/libwrapper.so",
	}

	sel := SelectAssets(files, frameworks.CommonFrameworks.Net45, "win7-x64")
	if got := assetPaths(sel.Runtime); !reflect.DeepEqual(got, []string{"runtimes/win-x64/lib/net45/Native.Wrapper.dll"}) {
		t.Errorf("Runtime = %v", got)
	}
	if got := assetPaths(sel.Native); !reflect.DeepEqual(got, []string{"runtimes/win-x64/native/wrapper.dll"}) {
		t.Errorf("Native = %v", got)
	}

	agnostic := SelectAssets(files, frameworks.CommonFrameworks.Net45, "")
	if got := assetPaths(agnostic.Runtime); !reflect.DeepEqual(got, []string{"lib/net45/Native.Wrapper.dll"}) {
		t.Errorf("runtime-agnostic Runtime = %v", got)
	}
	if len(agnostic.Native) != 0 {
		t.Errorf("runtime-agnostic Native = %v, want none", agnostic.Native)
	}
}

func TestRuntimeFallbacks(t *testing.T) {
	tests := []struct {
		rid  string
		want []string
	}{
		{"", nil},
		{"win", []string{"win"}},
		{"win7-x64", []string{"win7-x64", "win-x64", "win7", "win"}},
		{"osx.10.10-x64", []string{"osx.10.10-x64", "osx-x64", "osx.10.10", "osx"}},
		{"linux-x64", []string{"linux-x64", "linux"}},
	}
	for _, tt := range tests {
		t.Run(tt.rid, func(t *testing.T) {
			if got := RuntimeFallbacks(tt.rid); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RuntimeFallbacks(%q) = %v, want %v", tt.rid, got, tt.want)
			}
		})
	}
}

func TestClaimsAssemblies(t *testing.T) {
	if !ClaimsAssemblies([]string{"content/readme.txt", "lib/net45/Foo.dll"}) {
		t.Error("ClaimsAssemblies() = false for lib/ file")
	}
	if !ClaimsAssemblies([]string{`ref\dotnet\Foo.dll`}) {
		t.Error("ClaimsAssemblies() = false for ref/ file")
	}
	if ClaimsAssemblies([]string{"tools/install.ps1", "content/readme.txt"}) {
		t.Error("ClaimsAssemblies() = true for content-only package")
	}
}
