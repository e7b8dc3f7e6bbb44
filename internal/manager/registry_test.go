package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/tests/helpers/testutil"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	idx, res := testutil.Packages(t,
		testutil.PackageSpec{ID: "android", Resources: testutil.Icons("ic_wifi", "ic_wifi_signal_0", "ic_signal_cellular_4_4_bar"),
			Strings: map[string]string{"config_clockFontFamily": "sans-serif"}},
		testutil.PackageSpec{ID: "com.pack.a.wifi", Label: "Pack A", Category: types.CategoryIconWifi,
			Targets: []string{"com.android.systemui"}, Resources: testutil.Icons("ic_wifi", "ic_wifi_signal_4")},
		testutil.PackageSpec{ID: "com.pack.a.signal", Label: "Pack A", Category: types.CategoryIconSignal,
			Targets: []string{"com.android.systemui"}, Resources: testutil.Icons("ic_signal_cellular_4_4_bar")},
	)
	store := selection.NewStore(selection.NewMemoryBackend(), selection.DefaultConfig(), nil, nil, nil)

	r := NewRegistry()
	for _, def := range Builtin(catalog.Config{}) {
		m, err := New(def, Dependencies{Index: idx, Resolver: res, Store: store})
		require.NoError(t, err)
		require.NoError(t, r.Register(m))
	}
	return r
}

func TestRegistryRegister(t *testing.T) {
	r := newRegistry(t)

	m, ok := r.Get(DomainWifiIcons)
	require.True(t, ok)
	assert.Equal(t, DomainWifiIcons, m.ID())

	_, ok = r.Get("unknown")
	assert.False(t, ok)

	assert.Error(t, r.Register(m), "duplicate domain")
	assert.Error(t, r.Register(nil))
}

func TestRegistryList(t *testing.T) {
	r := newRegistry(t)

	var ids []string
	for _, m := range r.List() {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []string{DomainLockFont, DomainStatusBarIcons, DomainWifiIcons}, ids)

	statuses := r.Statuses()
	require.Len(t, statuses, 3)
	assert.Equal(t, DomainLockFont, statuses[0].ID)
}

func TestRegistryFetchAll(t *testing.T) {
	r := newRegistry(t)

	all, err := r.FetchAll(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 3)

	statusBar := all[DomainStatusBarIcons]
	require.Len(t, statusBar, 2)
	assert.Equal(t, "com.pack.a", statusBar[1].ID())
	assert.Len(t, statusBar[1].Previews(), 2)

	wifi := all[DomainWifiIcons]
	require.Len(t, wifi, 2)
	assert.Len(t, wifi[1].Previews(), 1, "only ic_wifi_signal_4 exists")

	font := all[DomainLockFont]
	require.Len(t, font, 1)
	assert.True(t, font[0].IsDefault())

	for _, m := range r.List() {
		assert.Equal(t, StateReady, m.State())
	}
}

func TestRegistryStats(t *testing.T) {
	r := newRegistry(t)

	stats := r.Stats()
	assert.Equal(t, 3, stats["total_domains"])
	assert.Equal(t, 3, stats["available_domains"])
	assert.Equal(t, 0, stats["applying"])

	categories := stats["categories"].(map[string]int)
	assert.Equal(t, 2, categories[types.CategoryIconWifi.String()])
	assert.Equal(t, 1, categories[types.CategoryLockFont.String()])
}
