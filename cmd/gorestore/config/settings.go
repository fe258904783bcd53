package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the CLI settings file looked up from the working
// directory up, then in the home directory.
const SettingsFileName = ".gorestore.yaml"

// Settings are the CLI defaults read from .gorestore.yaml. Command line
// flags take precedence over every field.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
	// Packages is the packages folder, relative to the settings file.
	Packages string   `yaml:"packages"`
	Sources  []string `yaml:"sources"`
	Runtimes []string `yaml:"runtimes"`
	// Mode is "sync" or "concurrent".
	Mode           string `yaml:"mode"`
	MaxConcurrency int    `yaml:"maxConcurrency"`
	// ReferenceAssemblies is a reference-assemblies root for desktop
	// framework lookups.
	ReferenceAssemblies string `yaml:"referenceAssemblies"`

	Tracing TracingSettings `yaml:"tracing"`
	Metrics MetricsSettings `yaml:"metrics"`

	path string
}

// TracingSettings selects the span exporter.
type TracingSettings struct {
	// Exporter is "none", "stdout" or "otlp".
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	// Address to serve /metrics on; empty disables the endpoint.
	Address string `yaml:"address"`
}

// ParseSettings decodes settings YAML. Unknown keys are an error.
func ParseSettings(r io.Reader) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSettings reads a settings file.
func LoadSettings(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings file: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := ParseSettings(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// FindSettings loads the nearest .gorestore.yaml at or above dir, then the
// one in the home directory. Without either it returns empty settings.
func FindSettings(dir string) (*Settings, error) {
	candidates := []string{}
	if path := findUp(dir, SettingsFileName); path != "" {
		candidates = append(candidates, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, SettingsFileName))
	}

	for _, path := range candidates {
		s, err := LoadSettings(path)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return &Settings{}, nil
}

// Path returns the file the settings came from, empty for defaults.
func (s *Settings) Path() string {
	return s.path
}

// PackagesFolder returns Packages resolved against the settings file.
func (s *Settings) PackagesFolder() string {
	return s.resolve(s.Packages)
}

// SourceFolders returns Sources resolved against the settings file.
func (s *Settings) SourceFolders() []string {
	var out []string
	for _, src := range s.Sources {
		out = append(out, s.resolve(src))
	}
	return out
}

// ReferenceAssembliesRoot returns ReferenceAssemblies resolved against the
// settings file.
func (s *Settings) ReferenceAssembliesRoot() string {
	return s.resolve(s.ReferenceAssemblies)
}

func (s *Settings) resolve(path string) string {
	if path == "" {
		return ""
	}
	path = expandHome(path)
	if filepath.IsAbs(path) || s.path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(s.path), path)
}

func (s *Settings) validate() error {
	switch s.Mode {
	case "", "sync", "concurrent":
	default:
		return fmt.Errorf("invalid mode %q (want sync or concurrent)", s.Mode)
	}
	switch s.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("invalid tracing exporter %q", s.Tracing.Exporter)
	}
	if s.MaxConcurrency < 0 {
		return fmt.Errorf("maxConcurrency must not be negative")
	}
	return nil
}

func findUp(startDir, name string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
