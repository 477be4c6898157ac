package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderLayers(t *testing.T) {
	tmp := t.TempDir()
	userPath := filepath.Join(tmp, "home", UserConfigDir, UserConfigFile)
	projectDir := filepath.Join(tmp, "project")
	workDir := filepath.Join(projectDir, "ontologies", "core")

	writeFile(t, userPath, "store:\n  backend: sqlite\n  path: /tmp/user.db\nconformance:\n  level: RELAXED\n")
	writeFile(t, filepath.Join(projectDir, ProjectConfigFile), "conformance:\n  level: MODERATE\n")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(nil)
	l.userPath = userPath
	l.startDir = workDir

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Project layer wins over the user layer, but must not reset the
	// backend the user chose.
	if cfg.Conformance.Level != "MODERATE" {
		t.Errorf("expected MODERATE from project config, got %s", cfg.Conformance.Level)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected sqlite from user config, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/tmp/user.db" {
		t.Errorf("expected user store path, got %s", cfg.Store.Path)
	}
}

func TestLoaderExplicitFile(t *testing.T) {
	tmp := t.TempDir()
	explicit := filepath.Join(tmp, "ci.yaml")
	writeFile(t, explicit, "integration:\n  enforce_conformance: true\n")

	l := NewLoader(nil)
	l.userPath = filepath.Join(tmp, "missing.yaml")
	l.startDir = tmp

	cfg, err := l.Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Integration.EnforceConformance {
		t.Error("expected enforcement from explicit config")
	}

	if _, err := l.Load(filepath.Join(tmp, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoaderRejectsInvalidResult(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, ProjectConfigFile), "conformance:\n  level: SOMETIMES\n")

	l := NewLoader(nil)
	l.userPath = filepath.Join(tmp, "missing.yaml")
	l.startDir = tmp

	if _, err := l.Load(""); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	tmp := t.TempDir()
	l := NewLoader(nil)
	l.userPath = filepath.Join(tmp, "cfg", UserConfigFile)

	path, err := l.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if path != l.userPath {
		t.Errorf("expected %s, got %s", l.userPath, path)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load created config: %v", err)
	}
	if cfg.Conformance.Level != "STRICT" {
		t.Errorf("expected defaults written, got level %s", cfg.Conformance.Level)
	}
}
