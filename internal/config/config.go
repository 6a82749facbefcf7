// Package config handles application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/loupelog/loupe/parseable"
)

// Config holds all application configuration.
type Config struct {
	ServerURL     string        `env:"LOUPE_SERVER_URL"`
	Username      string        `env:"LOUPE_USERNAME"`
	Password      string        `env:"LOUPE_PASSWORD"`
	SkipTLSVerify bool          `env:"LOUPE_SKIP_TLS_VERIFY" envDefault:"false"`
	HTTPTimeout   time.Duration `env:"LOUPE_HTTP_TIMEOUT" envDefault:"30s"`
	LogLevel      string        `env:"LOUPE_LOG_LEVEL" envDefault:"info"`
	DataDir       string        `env:"LOUPE_DATA_DIR"`
}

// Load reads configuration from environment variables. DataDir
// defaults to ~/.loupe when unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".loupe")
	}

	return cfg, nil
}

// HasServer reports whether the environment names a complete server
// target.
func (c *Config) HasServer() bool {
	return c.ServerURL != "" && c.Username != "" && c.Password != ""
}

// ServerConfig builds the transport configuration from the
// environment-provided target.
func (c *Config) ServerConfig() parseable.ServerConfig {
	return parseable.ServerConfig{
		URL:           c.ServerURL,
		Username:      c.Username,
		Password:      c.Password,
		SkipTLSVerify: c.SkipTLSVerify,
		Timeout:       c.HTTPTimeout,
	}
}

// DBPath is the location of the local profiles/favorites database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "loupe.db")
}
