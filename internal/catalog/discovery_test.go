package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/tests/helpers/testutil"
)

func TestDiscoveryFallbackOrder(t *testing.T) {
	discovery := Discovery{
		Names:    []string{"ic_wifi_signal_4"},
		Patterns: []string{"ic_wifi_signal_*", "ic_wifi_*", "ic_wifi"},
	}

	tests := []struct {
		name         string
		resources    []string
		wantStrategy Strategy
		wantNames    []string
		wantPattern  string
	}{
		{
			name:         "explicit name",
			resources:    []string{"ic_wifi_signal_4", "ic_wifi_alt"},
			wantStrategy: StrategyExplicit,
			wantNames:    []string{"ic_wifi_signal_4"},
		},
		{
			name:         "first pattern",
			resources:    []string{"ic_wifi_signal_2", "ic_wifi_signal_1"},
			wantStrategy: StrategyDiscovery,
			wantNames:    []string{"ic_wifi_signal_1"},
			wantPattern:  "ic_wifi_signal_*",
		},
		{
			name:         "second pattern",
			resources:    []string{"ic_wifi_alt", "unrelated"},
			wantStrategy: StrategyDiscovery,
			wantNames:    []string{"ic_wifi_alt"},
			wantPattern:  "ic_wifi_*",
		},
		{
			name:         "literal pattern",
			resources:    []string{"ic_wifi"},
			wantStrategy: StrategyDiscovery,
			wantNames:    []string{"ic_wifi"},
			wantPattern:  "ic_wifi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := testutil.Packages(t, testutil.PackageSpec{ID: "com.pack.wifi", Resources: testutil.Icons(tt.resources...)})

			assets, resolution, err := discovery.Resolve(context.Background(), res, "com.pack.wifi")
			require.NoError(t, err)
			require.Len(t, assets, 1)
			assert.Equal(t, tt.wantNames[0], assets[0].Name)
			assert.Equal(t, tt.wantStrategy, resolution.Strategy)
			assert.Equal(t, tt.wantNames, resolution.Names)
			assert.Equal(t, tt.wantPattern, resolution.Pattern)
		})
	}
}

func TestDiscoveryNothingMatches(t *testing.T) {
	_, res := testutil.Packages(t, testutil.PackageSpec{ID: "com.pack.wifi", Resources: testutil.Icons("other")})

	_, _, err := Discovery{Names: []string{"a"}, Patterns: []string{"b*"}}.Resolve(context.Background(), res, "com.pack.wifi")
	assert.ErrorIs(t, err, overlay.ErrAssetNotFound)
}

func TestDiscoveryMissingPackage(t *testing.T) {
	_, res := testutil.Packages(t)

	_, _, err := Discovery{Names: []string{"a"}}.Resolve(context.Background(), res, types.PackageID("com.gone"))
	assert.ErrorIs(t, err, overlay.ErrPackageNotFound)
}

func TestDiscoveryValidate(t *testing.T) {
	assert.NoError(t, Discovery{Patterns: []string{"ic_*", "ic_{a,b}", "plain"}}.Validate())
	assert.Error(t, Discovery{Patterns: []string{"ic_[unclosed"}}.Validate())
}

func TestGroupingKey(t *testing.T) {
	assert.Equal(t, "com.pack.a", GroupingKey("com.pack.a.wifi"))
	assert.Equal(t, "android", GroupingKey("android"))
}
