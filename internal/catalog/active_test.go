package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

type enabledMap = map[types.Category]*types.PackageID

func TestResolveActive(t *testing.T) {
	preview := []overlay.Asset{{Name: "p"}}
	def := NewOption(DefaultOptionID, "Default", true, enabledMap{
		types.CategoryIconWifi:   nil,
		types.CategoryIconSignal: nil,
	}, preview, nil)
	packX := NewOption("com.x", "X", false, enabledMap{
		types.CategoryIconWifi:   types.PackagePtr("pkgX"),
		types.CategoryIconSignal: types.PackagePtr("pkgX"),
	}, preview, nil)
	packY := NewOption("com.y", "Y", false, enabledMap{
		types.CategoryIconWifi:   types.PackagePtr("pkgY.wifi"),
		types.CategoryIconSignal: types.PackagePtr("pkgY.signal"),
	}, preview, nil)
	catalog := []Option{def, packX, packY}

	tests := []struct {
		name    string
		enabled enabledMap
		wantID  string
		wantOK  bool
	}{
		{"nothing enabled", enabledMap{}, DefaultOptionID, true},
		{"explicit nils", enabledMap{types.CategoryIconWifi: nil, types.CategoryIconSignal: nil}, DefaultOptionID, true},
		{"both match X", enabledMap{types.CategoryIconWifi: types.PackagePtr("pkgX"), types.CategoryIconSignal: types.PackagePtr("pkgX")}, "com.x", true},
		{"signal differs", enabledMap{types.CategoryIconWifi: types.PackagePtr("pkgX"), types.CategoryIconSignal: types.PackagePtr("other")}, "", false},
		{"wifi differs", enabledMap{types.CategoryIconWifi: types.PackagePtr("other"), types.CategoryIconSignal: types.PackagePtr("pkgX")}, "", false},
		{"one missing", enabledMap{types.CategoryIconWifi: types.PackagePtr("pkgX")}, "", false},
		{"Y", enabledMap{types.CategoryIconWifi: types.PackagePtr("pkgY.wifi"), types.CategoryIconSignal: types.PackagePtr("pkgY.signal")}, "com.y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveActive(catalog, tt.enabled)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID())
			}
		})
	}
}

func TestDefaultOptionIgnoresPackages(t *testing.T) {
	def := NewOption(DefaultOptionID, "Default", true, enabledMap{types.CategoryLockFont: types.PackagePtr("ignored")}, nil, nil)

	assert.Nil(t, def.Package(types.CategoryLockFont))
	assert.True(t, IsActive(def, enabledMap{}))
}

func TestOptionAccessorsReturnCopies(t *testing.T) {
	opt := NewOption("com.x", "X", false, enabledMap{types.CategoryIconWifi: types.PackagePtr("pkgX")}, []overlay.Asset{{Name: "a"}}, nil)

	pkgs := opt.Packages()
	*pkgs[types.CategoryIconWifi] = "mutated"
	previews := opt.Previews()
	previews[0].Name = "mutated"

	assert.Equal(t, types.PackagePtr("pkgX"), opt.Package(types.CategoryIconWifi))
	assert.Equal(t, "a", opt.Previews()[0].Name)
}
