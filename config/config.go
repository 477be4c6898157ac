// Package config provides configuration loading and management for semspore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config represents the complete semspore configuration
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Conformance ConformanceConfig `yaml:"conformance"`
	Integration IntegrationConfig `yaml:"integration"`
	NATS        NATSConfig        `yaml:"nats"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

// StoreConfig selects the graph store backend
type StoreConfig struct {
	// Backend is "memory" or "sqlite"
	Backend string `yaml:"backend" validate:"oneof=memory sqlite"`
	// Path is the SQLite database file (sqlite backend only)
	Path string `yaml:"path"`
}

// ConformanceConfig configures the conformance gate
type ConformanceConfig struct {
	// Level is the initial gate level
	Level string `yaml:"level" validate:"oneof=STRICT MODERATE RELAXED"`
}

// IntegrationConfig configures spore integration
type IntegrationConfig struct {
	// EnforceConformance runs the conformance gate on the target model
	// before any patch is applied
	EnforceConformance bool `yaml:"enforce_conformance"`
	// PrecheckWorkers bounds the parallel compatibility pre-check of a batch
	PrecheckWorkers int `yaml:"precheck_workers" validate:"gte=1,lte=64"`
	// Timeout bounds a whole command (0 = no limit)
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// NATSConfig configures publication of applied patches
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url" validate:"omitempty,url"`
	// Subject is the publish subject
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "memory",
			Path:    "semspore.db",
		},
		Conformance: ConformanceConfig{
			Level: "STRICT",
		},
		Integration: IntegrationConfig{
			EnforceConformance: false,
			PrecheckWorkers:    8,
		},
		NATS: NATSConfig{
			URL:     "", // Publishing disabled
			Subject: "graph.ingest.entity",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite backend")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// EnforceConformance can only be switched on by a later layer.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	if other.Conformance.Level != "" {
		c.Conformance.Level = other.Conformance.Level
	}

	if other.Integration.EnforceConformance {
		c.Integration.EnforceConformance = true
	}
	if other.Integration.PrecheckWorkers != 0 {
		c.Integration.PrecheckWorkers = other.Integration.PrecheckWorkers
	}
	if other.Integration.Timeout != 0 {
		c.Integration.Timeout = other.Integration.Timeout
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}

	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}
