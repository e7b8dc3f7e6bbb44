package catalog

import (
	"fmt"
	"slices"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// DefaultTitle is the title of the synthesized default option
const DefaultTitle = "Default"

// Spec describes what to build for one domain
type Spec struct {
	Domain string
	// Categories are walked in order; their order also orders previews
	Categories []types.Category
	// Required categories must be mapped for an option to be kept
	Required []types.Category
	// Targets filters packages by the package they overlay
	Targets []types.PackageID
	// DefaultSources are tried in order for the default option's previews
	DefaultSources []types.PackageID
	DefaultTitle   string
	Previews       map[types.Category]Discovery
}

// Validate checks a spec for internal consistency
func (s Spec) Validate() error {
	if s.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("domain %s has no categories", s.Domain)
	}
	for _, c := range s.Required {
		if !slices.Contains(s.Categories, c) {
			return fmt.Errorf("domain %s requires %s which it does not manage", s.Domain, c)
		}
	}
	for c, d := range s.Previews {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("domain %s category %s: %w", s.Domain, c, err)
		}
	}
	return nil
}

// Clone returns a deep copy
func (s Spec) Clone() Spec {
	out := s
	out.Categories = slices.Clone(s.Categories)
	out.Required = slices.Clone(s.Required)
	out.Targets = slices.Clone(s.Targets)
	out.DefaultSources = slices.Clone(s.DefaultSources)
	out.Previews = make(map[types.Category]Discovery, len(s.Previews))
	for c, d := range s.Previews {
		out.Previews[c] = Discovery{Names: slices.Clone(d.Names), Patterns: slices.Clone(d.Patterns)}
	}
	return out
}

func (s Spec) title() string {
	if s.DefaultTitle == "" {
		return DefaultTitle
	}
	return s.DefaultTitle
}
