package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Queue    QueueConfig    `yaml:"queue"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// service on in-memory stores.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	// Secret is the HS256 signing key bearer tokens are verified against.
	Secret string `yaml:"secret"`
}

// QueueConfig holds job queue settings.
type QueueConfig struct {
	Concurrency  int           `yaml:"concurrency"`   // simultaneous jobs (default: 5)
	MaxAttempts  int           `yaml:"max_attempts"`  // delivery attempts per job (default: 3)
	InitialDelay time.Duration `yaml:"initial_delay"` // base retry backoff (default: 1s)
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Queue: QueueConfig{
			Concurrency:  5,
			MaxAttempts:  3,
			InitialDelay: time.Second,
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
// Environment variables DATABASE_URL and AUTH_SECRET override the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns defaults with env overrides applied.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
}
