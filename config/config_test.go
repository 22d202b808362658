package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"refdocs/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if diff := cmp.Diff([]string{"**/*.go"}, cfg.Source.Includes); diff != "" {
		t.Errorf("Includes mismatch (-want +got):\n%s", diff)
	}
	if cfg.Parse.TrimWhitespace != "\n    " {
		t.Errorf("expected TrimWhitespace=%q, got %q", "\n    ", cfg.Parse.TrimWhitespace)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}

	policy, err := cfg.Parse.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if sev := policy.Severity(domain.DiagUnrecognizedMainElement); sev != domain.SeverityIgnore {
		t.Errorf("expected unrecognized_main_element=ignore, got %s", sev)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "refdocs.yaml")

	content := `
source:
  manifest: symbols.yaml
parse:
  diagnostics:
    unrecognized_nested_element: error
    unrecognized_main_element: warn
resolve:
  locale: fr
  workers: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Source.Manifest != "symbols.yaml" {
		t.Errorf("expected Manifest=symbols.yaml, got %s", cfg.Source.Manifest)
	}
	if cfg.Resolve.Locale != "fr" || cfg.Resolve.Workers != 2 {
		t.Errorf("expected locale=fr workers=2, got %+v", cfg.Resolve)
	}

	policy, err := cfg.Parse.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	want := domain.Policy{
		domain.DiagUnrecognizedMainElement:   domain.SeverityWarning,
		domain.DiagUnrecognizedNestedElement: domain.SeverityError,
	}
	if diff := cmp.Diff(want, policy); diff != "" {
		t.Errorf("Policy() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	tests := map[string]string{
		"unknown kind":     "parse:\n  diagnostics:\n    bogus: error\n",
		"unknown severity": "parse:\n  diagnostics:\n    malformed_comment: loud\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "refdocs.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, DataDir, "config.yaml")

	content := `
logging:
  level: debug
  color: false
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Color {
		t.Errorf("expected level=debug color=false, got %+v", cfg.Logging)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refdocs.yaml")
	cfg := DefaultConfig()
	cfg.Resolve.Locale = "de"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestDocsDBPath(t *testing.T) {
	path := DocsDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".refdocs", "docs.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
