// Package config loads seed settings from SEED_* environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/btouchard/seed/internal/logging"
)

// Config holds all seed configuration. The groups are embedded so that
// every variable is read as SEED_<NAME>.
type Config struct {
	CompilerConfig
	LogConfig
	CatalogConfig
	ExportConfig
}

// CompilerConfig holds front-end settings.
type CompilerConfig struct {
	Strict     bool   `envconfig:"STRICT" default:"false"`
	StdlibPath string `envconfig:"STDLIB_PATH"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CatalogConfig holds the SQLite catalog location. Empty disables it.
type CatalogConfig struct {
	DSN string `envconfig:"CATALOG_DSN"`
}

// ExportConfig holds the default export format.
type ExportConfig struct {
	Format string `envconfig:"FORMAT" default:"json"`
}

const prefix = "SEED"

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		CompilerConfig: CompilerConfig{
			Strict: false,
		},
		LogConfig: LogConfig{
			Level:       "warn",
			Development: false,
		},
		ExportConfig: ExportConfig{
			Format: "json",
		},
	}
}

// LoggerConfig converts the logging settings for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	base := logging.DefaultConfig()
	if c.Development {
		base = logging.DevelopmentConfig()
	}
	if c.Level != "" {
		base.Level = c.Level
	}
	return base
}
