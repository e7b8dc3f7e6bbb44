package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Store.MaxAttempts)
	assert.Equal(t, "theme_customization_overlay_packages", cfg.Store.Key)
	assert.Equal(t, "./packs", cfg.Overlay.PacksDir)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	env := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_ENABLED": "false",
		"STORE_BACKEND":      "http",
		"STORE_URL":          "http://settings:8000",
		"STORE_MAX_ATTEMPTS": "8",
		"STORE_TIMEOUT":      "250ms",
		"OVERLAY_PACKS_DIR":  "/srv/packs",
		"CATALOG_CONFIG":     "/etc/picker/catalog.toml",
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, BackendHTTP, cfg.Store.Backend)
	assert.Equal(t, "http://settings:8000", cfg.Store.URL)
	assert.Equal(t, 8, cfg.Store.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, "/srv/packs", cfg.Overlay.PacksDir)
	assert.Equal(t, "/etc/picker/catalog.toml", cfg.Overlay.CatalogConfig)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "redis"}},
		{"http without url", map[string]string{"STORE_BACKEND": "http"}},
		{"zero attempts", map[string]string{"STORE_MAX_ATTEMPTS": "0"}},
		{"bad number", map[string]string{"RATE_LIMIT_RPS": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}
