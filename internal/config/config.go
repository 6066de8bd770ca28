// Package config loads the teamtrack YAML configuration file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/teamtrack/internal/store"
)

type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`
	Timezone     string `yaml:"timezone"`
	// Per-IP request rate for the report API.
	RateLimit int `yaml:"rate_limit"`
	RateBurst int `yaml:"rate_burst"`
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig()
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values.
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3080"
	}
	if cfg.DatabasePath == "" {
		dbPath, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DatabasePath = dbPath
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 50
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 100
	}
	return &cfg, nil
}

func defaultConfig() (*Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return &Config{
		ListenAddr:   ":3080",
		DatabasePath: dbPath,
		Timezone:     "UTC",
		RateLimit:    50,
		RateBurst:    100,
	}, nil
}

// Location resolves the configured timezone, falling back to UTC on any
// unknown name.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "UTC" {
		return time.UTC
	}
	if c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
