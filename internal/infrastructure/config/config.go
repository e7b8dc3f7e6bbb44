package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendHTTP   = "http"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Overlay   OverlayConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects and tunes the selection document backend
type StoreConfig struct {
	Backend     string        `envconfig:"STORE_BACKEND" default:"memory"`
	Dir         string        `envconfig:"STORE_DIR" default:"./data"`
	URL         string        `envconfig:"STORE_URL"`
	Key         string        `envconfig:"STORE_KEY" default:"theme_customization_overlay_packages"`
	MaxAttempts int           `envconfig:"STORE_MAX_ATTEMPTS" default:"5"`
	Timeout     time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
}

// OverlayConfig locates overlay packs and the catalog naming config
type OverlayConfig struct {
	PacksDir      string `envconfig:"OVERLAY_PACKS_DIR" default:"./packs"`
	CatalogConfig string `envconfig:"CATALOG_CONFIG" default:"catalog.toml"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Backend:     BackendMemory,
			Dir:         "./data",
			Key:         "theme_customization_overlay_packages",
			MaxAttempts: 5,
			Timeout:     5 * time.Second,
		},
		Overlay: OverlayConfig{
			PacksDir:      "./packs",
			CatalogConfig: "catalog.toml",
		},
	}
}

// Validate checks cross-field constraints envconfig cannot express
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendHTTP:
		if c.Store.URL == "" {
			return fmt.Errorf("STORE_URL is required for the http backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.MaxAttempts < 1 {
		return fmt.Errorf("STORE_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
