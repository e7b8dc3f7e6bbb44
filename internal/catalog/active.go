package catalog

import "github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"

// IsActive reports whether option matches the enabled packages. The default
// option is active when none of its categories has an override; any other
// option when every mapped category has exactly its package enabled.
func IsActive(option Option, enabled map[types.Category]*types.PackageID) bool {
	for c, p := range option.packages {
		if option.isDefault {
			if enabled[c] != nil {
				return false
			}
			continue
		}
		if p == nil || !types.SamePackage(enabled[c], p) {
			return false
		}
	}
	return len(option.packages) > 0
}

// ResolveActive returns the first option in catalog that is active
func ResolveActive(catalog []Option, enabled map[types.Category]*types.PackageID) (Option, bool) {
	for _, o := range catalog {
		if IsActive(o, enabled) {
			return o, true
		}
	}
	return Option{}, false
}
