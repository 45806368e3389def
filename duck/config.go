package duck

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes the environment variables overriding Config.
const EnvPrefix = "DUCK_"

// Config configures a Cache.
type Config struct {
	// PublicOnly restricts resolution to exported target members. Unexported
	// fields are then neither candidates nor accessed through unsafe.
	PublicOnly bool `koanf:"public_only" yaml:"public_only"`
	// MaxCandidates caps the suggestions attached to an unresolved member.
	MaxCandidates int `koanf:"max_candidates" yaml:"max_candidates"`
	// LogLevel is the level of the logger built by NewLogger.
	LogLevel string `koanf:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		PublicOnly:    false,
		MaxCandidates: 5,
		LogLevel:      "info",
	}
}

// LoadConfig loads configuration from the YAML file at path, then applies
// DUCK_* environment overrides on top:
//
//	DUCK_PUBLIC_ONLY    -> public_only
//	DUCK_MAX_CANDIDATES -> max_candidates
//	DUCK_LOG_LEVEL      -> log_level
//
// An empty path skips the file. Keys missing from both sources keep their
// DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	var content []byte

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}

		content = data
	}

	return loadConfig(content)
}

func loadConfig(content []byte) (Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must not be negative, got %d", c.MaxCandidates)
	}

	if _, err := c.level(); err != nil {
		return err
	}

	return nil
}

func (c Config) level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}

	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("invalid log_level: %w", err)
	}

	return lvl, nil
}

// NewLogger builds a production zap logger at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)

	return zc.Build()
}
