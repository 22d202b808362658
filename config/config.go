package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
	"refdocs/internal/domain"
)

// DataDir is the per-project directory holding the docs database.
const DataDir = ".refdocs"

// Config holds all configuration for the refdocs tool.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Parse   ParseConfig   `yaml:"parse"`
	Resolve ResolveConfig `yaml:"resolve"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig selects where symbols and comments come from.
type SourceConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Manifest string   `yaml:"manifest"` // YAML symbol manifest, used instead of Go sources
}

// ParseConfig holds comment parsing configuration.
type ParseConfig struct {
	Diagnostics    map[string]string `yaml:"diagnostics"` // diagnostic kind -> error | warning | ignore
	TrimWhitespace string            `yaml:"trim_whitespace"`
}

// ResolveConfig holds resolution configuration.
type ResolveConfig struct {
	Locale  string `yaml:"locale"`
	Workers int    `yaml:"workers"` // 0 = runtime.NumCPU()
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Includes: []string{"**/*.go"},
			Excludes: []string{"**/vendor/**", "**/.git/**", "**/testdata/**", "**/*_test.go"},
		},
		Parse: ParseConfig{
			Diagnostics: map[string]string{
				domain.DiagUnrecognizedMainElement.String():   "ignore",
				domain.DiagUnrecognizedNestedElement.String(): "ignore",
			},
			TrimWhitespace: "\n    ",
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Policy converts the configured severities into a diagnostic policy.
func (p ParseConfig) Policy() (domain.Policy, error) {
	names := make([]string, 0, len(p.Diagnostics))
	for name := range p.Diagnostics {
		names = append(names, name)
	}
	sort.Strings(names)

	policy := make(domain.Policy, len(names))
	for _, name := range names {
		var kind domain.DiagnosticKind
		if err := kind.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("parse.diagnostics: %w", err)
		}
		sev, err := domain.ParseSeverity(p.Diagnostics[name])
		if err != nil {
			return nil, fmt.Errorf("parse.diagnostics.%s: %w", name, err)
		}
		policy[kind] = sev
	}
	return policy, nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := cfg.Parse.Policy(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for refdocs.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "refdocs.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DocsDBPath returns the path to the docs database.
func DocsDBPath(dir string) string {
	return filepath.Join(dir, DataDir, "docs.db")
}

// EnsureDataDir ensures the .refdocs directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDir), 0755)
}
