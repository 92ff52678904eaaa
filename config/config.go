// Package config loads resxkit settings.
//
// Sources, later ones winning:
//
//  1. built-in defaults
//  2. .resxkit.yaml in the working directory
//  3. .env in the same directory (RESXKIT_* entries only)
//  4. RESXKIT_* process environment variables
//
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".resxkit.yaml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RESXKIT_"

// Config holds the effective settings.
type Config struct {
	// Extension is the resource file extension, including the dot.
	Extension string `env:"EXTENSION" yaml:"extension"`
	// RecentLimit caps the recent-files list.
	RecentLimit int `env:"RECENT_LIMIT" yaml:"recent_limit"`
	// ParallelReads decodes the files of a group concurrently.
	ParallelReads bool `env:"PARALLEL_READS" yaml:"parallel_reads"`
	// MaxReaders bounds concurrent decodes when ParallelReads is set.
	MaxReaders int `env:"MAX_READERS" yaml:"max_readers"`
	// LogLevel is a zerolog level name.
	LogLevel string `env:"LOG_LEVEL" yaml:"log_level"`
	// Language selects the CLI message language ("" = detect from locale).
	Language string `env:"LANG" yaml:"language"`

	// File is the config file that was read, or "" when none exists.
	File string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Extension:   ".resx",
		RecentLimit: 10,
		MaxReaders:  4,
		LogLevel:    "warn",
	}
}

// Load builds the configuration for dir. A missing .resxkit.yaml or .env is
// not an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.File = path
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	environ, err := environment(dir)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("reading %s* environment: %w", EnvPrefix, err)
	}

	if err := cfg.Validate(); err != nil {
		if cfg.File != "" {
			return nil, fmt.Errorf("%s: %w", cfg.File, err)
		}
		return nil, err
	}
	return cfg, nil
}

// environment merges dir/.env under the process environment. Only
// RESXKIT_* entries of .env are taken.
func environment(dir string) (map[string]string, error) {
	environ := env.ToMap(os.Environ())

	path := filepath.Join(dir, ".env")
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return environ, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for k, v := range dotenv {
		if !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		if _, set := environ[k]; !set {
			environ[k] = v
		}
	}
	return environ, nil
}

// Validate checks the settings for values resxkit cannot work with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return fmt.Errorf("extension %q must start with a dot", c.Extension)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be at least 1, got %d", c.RecentLimit)
	}
	if c.MaxReaders < 1 {
		return fmt.Errorf("max_readers must be at least 1, got %d", c.MaxReaders)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the zerolog level for LogLevel, warn when it is unset.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}
