package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/manager"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/tests/helpers/testutil"
)

var wifiIcons = []string{"ic_wifi_signal_0", "ic_wifi_signal_1", "ic_wifi_signal_2", "ic_wifi_signal_3", "ic_wifi_signal_4"}

func testConfig(t *testing.T, packsDir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	cfg.Overlay.PacksDir = packsDir
	cfg.Overlay.CatalogConfig = filepath.Join(t.TempDir(), "missing.toml")
	return cfg
}

func writePacks(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WritePack(t, root, testutil.PackageSpec{
		ID:        "com.android.systemui",
		Resources: testutil.Icons(wifiIcons...),
	})
	testutil.WritePack(t, root, testutil.PackageSpec{
		ID:        "com.pack.a.wifi",
		Label:     "Pack A",
		Category:  types.CategoryIconWifi,
		Targets:   []string{"com.android.systemui"},
		Resources: testutil.Icons(wifiIcons...),
	})
	return root
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServerEndToEnd(t *testing.T) {
	s := newTestServer(t, testConfig(t, writePacks(t)))
	h := s.Handler()

	w := get(t, h, "/domains")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), manager.DomainWifiIcons)
	assert.Contains(t, w.Body.String(), manager.DomainLockFont)

	w = get(t, h, "/domains/wifi_icons/options")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"com.pack.a"`)
	assert.Contains(t, w.Body.String(), `"active_id":"default"`)

	req := httptest.NewRequest(http.MethodPost, "/domains/wifi_icons/apply", bytes.NewBufferString(`{"option_id":"com.pack.a"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	active, ok := mustManager(t, s, manager.DomainWifiIcons).Active()
	require.True(t, ok)
	assert.Equal(t, "com.pack.a", active.ID())

	w = get(t, h, "/domains/wifi_icons/options/com.pack.a/previews/0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = get(t, h, "/kv/theme_customization_overlay_packages")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"android.theme.customization.icon_pack.wifi":"com.pack.a.wifi"}`, w.Body.String())

	w = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `overlay_picker_applies_total{domain="wifi_icons",outcome="applied"} 1`)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestServerRestoresPersistedSelection(t *testing.T) {
	cfg := testConfig(t, writePacks(t))
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Dir = t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.Store.Dir, cfg.Store.Key+".json"),
		[]byte(`{"android.theme.customization.icon_pack.wifi":"com.pack.a.wifi"}`),
		0o644))

	s := newTestServer(t, cfg)

	active, ok := mustManager(t, s, manager.DomainWifiIcons).Active()
	require.True(t, ok)
	assert.Equal(t, "com.pack.a", active.ID())
}

func TestServerWithoutPacks(t *testing.T) {
	s := newTestServer(t, testConfig(t, filepath.Join(t.TempDir(), "absent")))

	m := mustManager(t, s, manager.DomainWifiIcons)
	assert.False(t, m.IsAvailable())

	w := get(t, s.Handler(), "/domains/wifi_icons/options")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Store.Backend = config.BackendHTTP
	cfg.Store.URL = ""

	_, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: config.StoreConfig{Backend: config.BackendMemory}, want: "memory"},
		{name: "file", cfg: config.StoreConfig{Backend: config.BackendFile, Dir: t.TempDir()}, want: "file"},
		{name: "http", cfg: config.StoreConfig{Backend: config.BackendHTTP, URL: "http://127.0.0.1:1"}, want: "http"},
		{name: "unknown", cfg: config.StoreConfig{Backend: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := newBackend(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, backend.Name())
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestServer(t, testConfig(t, writePacks(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func mustManager(t *testing.T, s *Server, domain string) *manager.Manager {
	t.Helper()
	m, ok := s.Registry().Get(domain)
	require.True(t, ok)
	return m
}
