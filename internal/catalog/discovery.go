package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Resolver loads package resources by name
type Resolver interface {
	// Load returns the asset or an error wrapping overlay.ErrAssetNotFound
	// or overlay.ErrPackageNotFound
	Load(ctx context.Context, pkg types.PackageID, name string) (overlay.Asset, error)
	ResourceExists(pkg types.PackageID, name string) bool
	ResourceNames(pkg types.PackageID) ([]string, error)
}

// Strategy names how previews were resolved
type Strategy string

const (
	StrategyExplicit  Strategy = "explicit"
	StrategyDiscovery Strategy = "discovery"
)

// Resolution records which strategy found a category's previews
type Resolution struct {
	Category types.Category  `json:"category"`
	Package  types.PackageID `json:"package"`
	Strategy Strategy        `json:"strategy"`
	Names    []string        `json:"names"`
	Pattern  string          `json:"pattern,omitempty"`
}

// Discovery is an ordered naming strategy for preview assets
type Discovery struct {
	// Names are loaded in order; every one that exists becomes a preview
	Names []string `toml:"names"`
	// Patterns are tried in order when no name resolves. A pattern is a
	// literal resource name or a doublestar glob; the first hit wins.
	Patterns []string `toml:"patterns"`
}

// IsZero reports whether no names or patterns are configured
func (d Discovery) IsZero() bool {
	return len(d.Names) == 0 && len(d.Patterns) == 0
}

// Validate checks that every pattern is well formed
func (d Discovery) Validate() error {
	for _, p := range d.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// Resolve finds preview assets for pkg. It returns an error wrapping
// overlay.ErrAssetNotFound when nothing matches and overlay.ErrPackageNotFound
// when the package disappeared.
func (d Discovery) Resolve(ctx context.Context, r Resolver, pkg types.PackageID) ([]overlay.Asset, Resolution, error) {
	res := Resolution{Package: pkg, Strategy: StrategyExplicit}

	var assets []overlay.Asset
	for _, name := range d.Names {
		asset, err := r.Load(ctx, pkg, name)
		if err != nil {
			if fatal(ctx, err) {
				return nil, Resolution{}, err
			}
			continue
		}
		assets = append(assets, asset)
		res.Names = append(res.Names, name)
	}
	if len(assets) > 0 {
		return assets, res, nil
	}

	res.Strategy = StrategyDiscovery
	for _, pattern := range d.Patterns {
		name, ok, err := d.match(r, pkg, pattern)
		if err != nil {
			return nil, Resolution{}, err
		}
		if !ok {
			continue
		}

		asset, err := r.Load(ctx, pkg, name)
		if err != nil {
			if fatal(ctx, err) {
				return nil, Resolution{}, err
			}
			continue
		}
		res.Names = []string{name}
		res.Pattern = pattern
		return []overlay.Asset{asset}, res, nil
	}

	return nil, Resolution{}, fmt.Errorf("%w: no preview for %s", overlay.ErrAssetNotFound, pkg)
}

func (d Discovery) match(r Resolver, pkg types.PackageID, pattern string) (string, bool, error) {
	if !isGlob(pattern) {
		return pattern, r.ResourceExists(pkg, pattern), nil
	}

	names, err := r.ResourceNames(pkg)
	if err != nil {
		return "", false, err
	}
	names = slices.Clone(names)
	slices.Sort(names)
	for _, name := range names {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return name, true, nil
		}
	}
	return "", false, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// fatal separates errors that end resolution for the package from a
// single missing name
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, overlay.ErrPackageNotFound) || ctx.Err() != nil
}
