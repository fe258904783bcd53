// Package config reads the settings the CLI restores with: NuGet.config
// files for package sources and the packages folder, and .gorestore.yaml
// for everything else.
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// NuGetConfigFileName is the file searched for from the project directory up.
const NuGetConfigFileName = "NuGet.config"

// NuGetConfig represents a NuGet.config file
type NuGetConfig struct {
	XMLName                xml.Name                `xml:"configuration"`
	PackageSources         *PackageSources         `xml:"packageSources"`
	DisabledPackageSources *DisabledPackageSources `xml:"disabledPackageSources,omitempty"`
	Config                 *Section                `xml:"config"`

	// path is the file the config was loaded from, empty when parsed from
	// a reader.
	path string
}

// DisabledPackageSources contains disabled package source definitions
type DisabledPackageSources struct {
	Add []DisabledPackageSource `xml:"add"`
}

// DisabledPackageSource represents a disabled package source
type DisabledPackageSource struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// PackageSources contains package source definitions
type PackageSources struct {
	Clear bool            `xml:"clear"`
	Add   []PackageSource `xml:"add"`
}

// PackageSource represents a package source
type PackageSource struct {
	Key             string `xml:"key,attr"`
	Value           string `xml:"value,attr"`
	ProtocolVersion string `xml:"protocolVersion,attr,omitempty"`
	Enabled         string `xml:"enabled,attr,omitempty"`
}

// IsRemote reports whether the source is reached over HTTP.
func (s PackageSource) IsRemote() bool {
	v := strings.ToLower(s.Value)
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// Section contains configuration settings
type Section struct {
	Clear bool   `xml:"clear"`
	Add   []Item `xml:"add"`
}

// Item represents a configuration key-value pair
type Item struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

// LoadNuGetConfig loads a NuGet.config file
func LoadNuGetConfig(path string) (*NuGetConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := ParseNuGetConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// ParseNuGetConfig parses NuGet.config XML from a reader
func ParseNuGetConfig(r io.Reader) (*NuGetConfig, error) {
	var config NuGetConfig
	decoder := xml.NewDecoder(r)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config XML: %w", err)
	}

	return &config, nil
}

// GetConfigValue gets a configuration value by key
func (c *NuGetConfig) GetConfigValue(key string) string {
	if c.Config == nil {
		return ""
	}

	for _, item := range c.Config.Add {
		if item.Key == key {
			return item.Value
		}
	}

	return ""
}

// GlobalPackagesFolder returns config/globalPackagesFolder, resolved
// against the directory of the config file when relative.
func (c *NuGetConfig) GlobalPackagesFolder() string {
	folder := c.GetConfigValue("globalPackagesFolder")
	if folder == "" {
		return ""
	}
	folder = expandHome(folder)
	if !filepath.IsAbs(folder) && c.path != "" {
		folder = filepath.Join(filepath.Dir(c.path), folder)
	}
	return folder
}

// IsSourceDisabled checks if a source is disabled
func (c *NuGetConfig) IsSourceDisabled(key string) bool {
	if c.DisabledPackageSources == nil {
		return false
	}

	for _, disabled := range c.DisabledPackageSources.Add {
		if disabled.Key == key && disabled.Value == "true" {
			return true
		}
	}

	return false
}

// GetEnabledPackageSources returns all enabled package sources from the config.
// A source is enabled unless disabledPackageSources lists it or its
// enabled attribute is "false".
func (c *NuGetConfig) GetEnabledPackageSources() []PackageSource {
	if c.PackageSources == nil {
		return nil
	}

	var enabled []PackageSource
	for _, source := range c.PackageSources.Add {
		if c.IsSourceDisabled(source.Key) || source.Enabled == "false" {
			continue
		}
		enabled = append(enabled, source)
	}

	return enabled
}

// FolderSources returns the enabled file-system sources as absolute paths.
// HTTP sources are skipped: package content is never downloaded.
func (c *NuGetConfig) FolderSources() []string {
	var folders []string
	for _, source := range c.GetEnabledPackageSources() {
		if source.IsRemote() {
			continue
		}
		folder := expandHome(source.Value)
		if !filepath.IsAbs(folder) && c.path != "" {
			folder = filepath.Join(filepath.Dir(c.path), folder)
		}
		folders = append(folders, folder)
	}
	return folders
}

// FindConfigFileFrom walks up from startDir looking for NuGet.config and
// returns its path, or "" when there is none.
func FindConfigFileFrom(startDir string) string {
	return findUp(startDir, NuGetConfigFileName)
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
