package manager

import (
	"fmt"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Built-in domain ids
const (
	DomainWifiIcons      = "wifi_icons"
	DomainStatusBarIcons = "status_bar_icons"
	DomainLockFont       = "lock_font"
)

// overlayTargets are the packages skins may overlay
var overlayTargets = []types.PackageID{
	types.AndroidPackage,
	types.SystemUIPackage,
	types.SettingsPackage,
}

// Definition pairs a domain's description with its catalog spec
type Definition struct {
	Domain types.Domain
	Spec   catalog.Spec
}

// Validate checks that the definition is usable
func (d Definition) Validate() error {
	if d.Domain.ID == "" {
		return fmt.Errorf("domain id is required")
	}
	if d.Domain.ID != d.Spec.Domain {
		return fmt.Errorf("domain %s has a catalog spec for %s", d.Domain.ID, d.Spec.Domain)
	}
	return d.Spec.Validate()
}

// WifiIcons is the wifi signal icon pack domain
func WifiIcons() Definition {
	categories := []types.Category{types.CategoryIconWifi}
	return Definition{
		Domain: types.Domain{
			ID:          DomainWifiIcons,
			Name:        "Wi-Fi icons",
			Description: "Wi-Fi signal strength icons",
			Categories:  categories,
		},
		Spec: catalog.Spec{
			Domain:         DomainWifiIcons,
			Categories:     categories,
			Required:       categories,
			Targets:        overlayTargets,
			DefaultSources: []types.PackageID{types.AndroidPackage, types.SystemUIPackage},
			Previews: map[types.Category]catalog.Discovery{
				types.CategoryIconWifi: {
					Names: []string{
						"ic_wifi_signal_0",
						"ic_wifi_signal_1",
						"ic_wifi_signal_2",
						"ic_wifi_signal_3",
						"ic_wifi_signal_4",
					},
					Patterns: []string{"ic_wifi_signal_*", "ic_wifi_*", "ic_wifi"},
				},
			},
		},
	}
}

// StatusBarIcons is the combined wifi and cellular status-bar glyph domain
func StatusBarIcons() Definition {
	categories := []types.Category{types.CategoryIconWifi, types.CategoryIconSignal}
	return Definition{
		Domain: types.Domain{
			ID:          DomainStatusBarIcons,
			Name:        "Status bar icons",
			Description: "Wi-Fi and cellular signal glyphs shown in the status bar",
			Categories:  categories,
		},
		Spec: catalog.Spec{
			Domain:         DomainStatusBarIcons,
			Categories:     categories,
			Required:       categories,
			Targets:        overlayTargets,
			DefaultSources: []types.PackageID{types.AndroidPackage, types.SystemUIPackage},
			Previews: map[types.Category]catalog.Discovery{
				types.CategoryIconWifi: {
					Names:    []string{"ic_wifi"},
					Patterns: []string{"ic_wifi_signal_4", "ic_wifi_*"},
				},
				types.CategoryIconSignal: {
					Names:    []string{"ic_signal_cellular_4_4_bar"},
					Patterns: []string{"ic_signal_cellular_*", "ic_signal_*"},
				},
			},
		},
	}
}

// LockFont is the lock-screen clock font domain. Its previews are the font
// family names overlays declare as string resources.
func LockFont() Definition {
	categories := []types.Category{types.CategoryLockFont}
	return Definition{
		Domain: types.Domain{
			ID:          DomainLockFont,
			Name:        "Lock screen font",
			Description: "Font family of the lock screen clock",
			Categories:  categories,
		},
		Spec: catalog.Spec{
			Domain:         DomainLockFont,
			Categories:     categories,
			Required:       categories,
			Targets:        []types.PackageID{types.AndroidPackage},
			DefaultSources: []types.PackageID{types.AndroidPackage},
			Previews: map[types.Category]catalog.Discovery{
				types.CategoryLockFont: {
					Names:    []string{"config_clockFontFamily"},
					Patterns: []string{"config_*FontFamily"},
				},
			},
		},
	}
}

// Builtin returns every built-in domain with cfg's overrides applied
func Builtin(cfg catalog.Config) []Definition {
	defs := []Definition{WifiIcons(), StatusBarIcons(), LockFont()}
	for i := range defs {
		defs[i].Spec = cfg.Apply(defs[i].Spec)
	}
	return defs
}
