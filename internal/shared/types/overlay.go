package types

import "strings"

// Category identifies an independently themeable surface
type Category string

const (
	CategoryIconWifi   Category = "android.theme.customization.icon_pack.wifi"
	CategoryIconSignal Category = "android.theme.customization.icon_pack.signal"
	CategoryLockFont   Category = "android.theme.customization.lockscreen_clock_font"
)

// String returns the category identifier
func (c Category) String() string {
	return string(c)
}

// PackageID identifies an installed overlay package
type PackageID string

// Well-known target packages that overlays apply to
const (
	AndroidPackage  PackageID = "android"
	SystemUIPackage PackageID = "com.android.systemui"
	SettingsPackage PackageID = "com.android.settings"
)

// String returns the package identifier
func (p PackageID) String() string {
	return string(p)
}

// Prefix returns everything before the final "." segment.
// Packages without a dot are their own prefix.
func (p PackageID) Prefix() string {
	s := string(p)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// PackagePtr returns a pointer to a copy of p
func PackagePtr(p PackageID) *PackageID {
	return &p
}

// SamePackage reports whether two optional packages are equal.
// Two nil values are equal (both mean "no override").
func SamePackage(a, b *PackageID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
