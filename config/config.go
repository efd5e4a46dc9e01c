// Package config loads swarmquery settings from a yaml file and the
// environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds CLI settings. Environment variables take precedence over the
// file, which takes precedence over Default.
type Config struct {
	LogLevel  string `yaml:"logLevel" env:"SWARMDB_LOG_LEVEL"`
	LogFormat string `yaml:"logFormat" env:"SWARMDB_LOG_FORMAT"`
	// IndexCache is an afs base URL for persisted indexes; empty disables
	// the cache.
	IndexCache string `yaml:"indexCache" env:"SWARMDB_INDEX_CACHE"`
	Mmap       bool   `yaml:"mmap" env:"SWARMDB_MMAP"`
	Gops       bool   `yaml:"gops" env:"SWARMDB_GOPS"`
	// SQLiteTable is the export table used when none is given.
	SQLiteTable string `yaml:"sqliteTable" env:"SWARMDB_SQLITE_TABLE"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		LogFormat:   "text",
		Mmap:        true,
		SQLiteTable: "snapshots",
	}
}

// Load builds the configuration from defaults, the optional yaml file at
// path and the environment (including a .env file in the working
// directory, when present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		path, err := expandUserPath(path)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if cfg.IndexCache != "" {
		expanded, err := expandUserPath(cfg.IndexCache)
		if err != nil {
			return nil, err
		}
		cfg.IndexCache = expanded
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: unsupported log format %q", cfg.LogFormat)
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// NewLogger returns a logger writing to w in the configured format and
// level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func expandUserPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
