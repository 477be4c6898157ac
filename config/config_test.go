package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.Conformance.Level != "STRICT" {
		t.Errorf("expected STRICT conformance, got %s", cfg.Conformance.Level)
	}
	if cfg.Integration.EnforceConformance {
		t.Error("expected conformance enforcement off by default")
	}
	if cfg.NATS.URL != "" {
		t.Error("expected NATS publishing disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "sqlite with path",
			modify:  func(c *Config) { c.Store.Backend = "sqlite" },
			wantErr: false,
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: true,
		},
		{
			name: "sqlite without path",
			modify: func(c *Config) {
				c.Store.Backend = "sqlite"
				c.Store.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "lower case level",
			modify:  func(c *Config) { c.Conformance.Level = "strict" },
			wantErr: true,
		},
		{
			name:    "zero precheck workers",
			modify:  func(c *Config) { c.Integration.PrecheckWorkers = 0 },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Integration.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "malformed nats url",
			modify:  func(c *Config) { c.NATS.URL = "not a url" },
			wantErr: true,
		},
		{
			name: "nats url without subject",
			modify: func(c *Config) {
				c.NATS.URL = "nats://localhost:4222"
				c.NATS.Subject = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  backend: sqlite
  path: /var/lib/semspore/graph.db
conformance:
  level: MODERATE
integration:
  enforce_conformance: true
  precheck_workers: 4
  timeout: 30s
nats:
  url: "nats://test:4222"
metrics:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "/var/lib/semspore/graph.db" {
		t.Errorf("unexpected store path %s", cfg.Store.Path)
	}
	if cfg.Conformance.Level != "MODERATE" {
		t.Errorf("expected MODERATE, got %s", cfg.Conformance.Level)
	}
	if !cfg.Integration.EnforceConformance {
		t.Error("expected enforce_conformance true")
	}
	if cfg.Integration.PrecheckWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Integration.PrecheckWorkers)
	}
	if cfg.Integration.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Integration.Timeout)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	// Unset fields keep their defaults
	if cfg.NATS.Subject != "graph.ingest.entity" {
		t.Errorf("expected default subject, got %s", cfg.NATS.Subject)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("expected metrics addr :9090, got %s", cfg.Metrics.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Conformance: ConformanceConfig{
			Level: "RELAXED",
		},
		Integration: IntegrationConfig{
			EnforceConformance: true,
		},
	}

	base.Merge(override)

	if base.Conformance.Level != "RELAXED" {
		t.Errorf("expected level RELAXED, got %s", base.Conformance.Level)
	}
	if !base.Integration.EnforceConformance {
		t.Error("expected enforcement switched on")
	}
	// Workers should remain from base since override didn't set it
	if base.Integration.PrecheckWorkers != 8 {
		t.Errorf("expected workers to remain default, got %d", base.Integration.PrecheckWorkers)
	}
	if base.Store.Backend != "memory" {
		t.Errorf("expected backend to remain memory, got %s", base.Store.Backend)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Conformance.Level = "MODERATE"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Conformance.Level != "MODERATE" {
		t.Errorf("expected level MODERATE, got %s", loaded.Conformance.Level)
	}
}
