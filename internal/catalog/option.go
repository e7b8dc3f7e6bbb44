package catalog

import (
	"maps"
	"slices"
	"strings"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// DefaultOptionID identifies the synthesized default option
const DefaultOptionID = "default"

// GroupingKey returns the id shared by all packages of one option: the
// package id up to its last dot
func GroupingKey(pkg types.PackageID) string {
	return pkg.Prefix()
}

// Option is one selectable skin. Options are immutable; accessors return copies.
type Option struct {
	id          string
	title       string
	isDefault   bool
	packages    map[types.Category]*types.PackageID
	previews    []overlay.Asset
	resolutions []Resolution
}

// NewOption creates an option. A default option maps every category to nil.
func NewOption(id, title string, isDefault bool, packages map[types.Category]*types.PackageID, previews []overlay.Asset, resolutions []Resolution) Option {
	o := Option{
		id:          id,
		title:       title,
		isDefault:   isDefault,
		packages:    make(map[types.Category]*types.PackageID, len(packages)),
		previews:    slices.Clone(previews),
		resolutions: slices.Clone(resolutions),
	}
	for c, p := range packages {
		if p != nil && !isDefault {
			p = types.PackagePtr(*p)
		} else {
			p = nil
		}
		o.packages[c] = p
	}
	return o
}

func (o Option) ID() string      { return o.id }
func (o Option) Title() string   { return o.title }
func (o Option) IsDefault() bool { return o.isDefault }

// Packages returns the category mapping
func (o Option) Packages() map[types.Category]*types.PackageID {
	out := make(map[types.Category]*types.PackageID, len(o.packages))
	for c, p := range o.packages {
		if p != nil {
			p = types.PackagePtr(*p)
		}
		out[c] = p
	}
	return out
}

// Package returns the package mapped for category, or nil
func (o Option) Package(category types.Category) *types.PackageID {
	if p := o.packages[category]; p != nil {
		return types.PackagePtr(*p)
	}
	return nil
}

// Categories returns the mapped categories in sorted order
func (o Option) Categories() []types.Category {
	return slices.Sorted(maps.Keys(o.packages))
}

// Previews returns the preview assets in resolution order
func (o Option) Previews() []overlay.Asset {
	return slices.Clone(o.previews)
}

// Resolutions reports how each category's previews were found
func (o Option) Resolutions() []Resolution {
	return slices.Clone(o.resolutions)
}

// Equal compares identity and mapping, ignoring previews
func (o Option) Equal(other Option) bool {
	if o.id != other.id || o.isDefault != other.isDefault || len(o.packages) != len(other.packages) {
		return false
	}
	for c, p := range o.packages {
		q, ok := other.packages[c]
		if !ok || !types.SamePackage(p, q) {
			return false
		}
	}
	return true
}

// Find returns the option with id
func Find(options []Option, id string) (Option, bool) {
	for _, o := range options {
		if o.id == id {
			return o, true
		}
	}
	return Option{}, false
}

func titleKey(title string) string {
	return strings.ToLower(title)
}
