// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Content sources.
const (
	SourceFS       = "fs"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Content       ContentConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Log           LogConfig
	DefaultLocale string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ContentConfig says where courses and messages come from.
type ContentConfig struct {
	Path   string
	Source string // "fs" or "postgres"
	Watch  bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables the page cache.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARN_SERVER_PORT", 8080),
			Host: envStr("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Content: ContentConfig{
			Path:   envStr("LEARN_CONTENT_PATH", "./content"),
			Source: envStr("LEARN_CONTENT_SOURCE", SourceFS),
			Watch:  envBool("LEARN_CONTENT_WATCH", false),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("LEARN_CACHE_URL", ""),
			TTL: time.Duration(envInt("LEARN_CACHE_TTL", 300)) * time.Second,
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
		DefaultLocale: envStr("LEARN_DEFAULT_LOCALE", "en"),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Content.Source != SourceFS && c.Content.Source != SourcePostgres {
		return fmt.Errorf("LEARN_CONTENT_SOURCE must be 'fs' or 'postgres', got %q", c.Content.Source)
	}

	if c.Content.Source == SourcePostgres && c.Database.URL == "" {
		return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_CONTENT_SOURCE is postgres")
	}

	if c.Content.Watch && c.Content.Source != SourceFS {
		return fmt.Errorf("LEARN_CONTENT_WATCH requires LEARN_CONTENT_SOURCE=fs")
	}

	if _, err := language.Parse(c.DefaultLocale); err != nil {
		return fmt.Errorf("LEARN_DEFAULT_LOCALE %q is not a BCP 47 tag: %w", c.DefaultLocale, err)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("LEARN_CACHE_TTL must not be negative")
	}

	return nil
}

// UseCache reports whether a page cache is configured.
func (c *Config) UseCache() bool {
	return c.Cache.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
