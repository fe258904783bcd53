package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseNuGetConfig(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <packageSources>
    <add key="nuget.org" value="https://api.nuget.org/v3/index.json" protocolVersion="3" />
  </packageSources>
  <config>
    <add key="globalPackagesFolder" value="~/.dnx/packages" />
  </config>
</configuration>`

	config, err := ParseNuGetConfig(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("ParseNuGetConfig() error = %v", err)
	}

	if config.PackageSources == nil {
		t.Fatal("PackageSources is nil")
	}
	if len(config.PackageSources.Add) != 1 {
		t.Fatalf("expected 1 package source, got %d", len(config.PackageSources.Add))
	}

	source := config.PackageSources.Add[0]
	if source.Key != "nuget.org" {
		t.Errorf("source.Key = %q, want %q", source.Key, "nuget.org")
	}
	if !source.IsRemote() {
		t.Error("expected nuget.org to be remote")
	}

	value := config.GetConfigValue("globalPackagesFolder")
	if value != "~/.dnx/packages" {
		t.Errorf("config value = %q, want %q", value, "~/.dnx/packages")
	}
	if got := config.GetConfigValue("missing"); got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}
}

func TestParseNuGetConfig_Invalid(t *testing.T) {
	if _, err := ParseNuGetConfig(strings.NewReader("<configuration>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestNuGetConfig_EnabledSources(t *testing.T) {
	xml := `<configuration>
  <packageSources>
    <add key="local" value="feeds/local" />
    <add key="off" value="feeds/off" />
    <add key="attr-off" value="feeds/attr" enabled="false" />
    <add key="remote" value="https://example.org/v3/index.json" />
  </packageSources>
  <disabledPackageSources>
    <add key="off" value="true" />
  </disabledPackageSources>
</configuration>`

	dir := t.TempDir()
	path := filepath.Join(dir, NuGetConfigFileName)
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadNuGetConfig(path)
	if err != nil {
		t.Fatalf("LoadNuGetConfig() error = %v", err)
	}

	var keys []string
	for _, s := range config.GetEnabledPackageSources() {
		keys = append(keys, s.Key)
	}
	if want := []string{"local", "remote"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("enabled sources = %v, want %v", keys, want)
	}

	folders := config.FolderSources()
	want := []string{filepath.Join(dir, "feeds", "local")}
	if !reflect.DeepEqual(folders, want) {
		t.Errorf("FolderSources() = %v, want %v", folders, want)
	}
}

func TestNuGetConfig_GlobalPackagesFolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, NuGetConfigFileName)
	xml := `<configuration><config><add key="globalPackagesFolder" value="pkgs" /></config></configuration>`
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadNuGetConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := config.GlobalPackagesFolder(), filepath.Join(dir, "pkgs"); got != want {
		t.Errorf("GlobalPackagesFolder() = %q, want %q", got, want)
	}

	empty := &NuGetConfig{}
	if got := empty.GlobalPackagesFolder(); got != "" {
		t.Errorf("GlobalPackagesFolder() = %q, want empty", got)
	}
}

func TestFindConfigFileFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "App")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFileFrom(nested); got != "" && strings.HasPrefix(got, root) {
		t.Errorf("FindConfigFileFrom() = %q before any config exists", got)
	}

	path := filepath.Join(root, NuGetConfigFileName)
	if err := os.WriteFile(path, []byte("<configuration/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFileFrom(nested); got != path {
		t.Errorf("FindConfigFileFrom() = %q, want %q", got, path)
	}
}
