package mapping

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile loads, defaults and validates the configuration file at path.
// Relative output directories are resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.Output.Dir) {
		cfg.Output.Dir = filepath.Join(filepath.Dir(path), cfg.Output.Dir)
	}

	return cfg, nil
}

// Parse parses and validates YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = "1"
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./adapters"
	}

	if cfg.Output.Package == "" {
		cfg.Output.Package = filepath.Base(filepath.Clean(cfg.Output.Dir))
	}

	if cfg.Output.Filename == "" {
		cfg.Output.Filename = "duck_adapters.go"
	}

	if cfg.Output.DuckImport == "" {
		cfg.Output.DuckImport = DefaultDuckImport
	}
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteFile writes cfg to path.
func WriteFile(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
