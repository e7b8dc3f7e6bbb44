package catalog

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Builder assembles option catalogs from an overlay index
type Builder struct {
	index     overlay.Index
	resolver  Resolver
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	observer  Observer
}

// NewBuilder creates a builder. logger and observer may be nil.
func NewBuilder(index overlay.Index, resolver Resolver, logger *zap.Logger, observer Observer) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Builder{
		index:     index,
		resolver:  resolver,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
		observer:  observer,
	}
}

// draft is an option under construction
type draft struct {
	key      string
	title    string
	packages map[types.Category]*types.PackageID
}

// Build returns [Default?, ...options sorted by title]. Only index failures
// and cancellation are returned as errors; bad packages are skipped.
func (b *Builder) Build(ctx context.Context, spec Spec) ([]Option, error) {
	start := time.Now()
	log := b.logger.With(zap.String("domain", spec.Domain))

	var catalog []Option
	if def, ok := b.buildDefault(ctx, spec, log); ok {
		catalog = append(catalog, def)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	drafts, err := b.group(ctx, spec, log)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(drafts))
	for _, d := range drafts {
		opt, ok, err := b.finish(ctx, spec, d, log)
		if err != nil {
			return nil, err
		}
		if ok {
			options = append(options, opt)
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return titleKey(options[i].title) < titleKey(options[j].title)
	})
	catalog = append(catalog, options...)

	elapsed := time.Since(start)
	b.observer.CatalogBuilt(spec.Domain, len(catalog), elapsed)
	log.Debug("catalog built", zap.Int("options", len(catalog)), zap.Duration("elapsed", elapsed))
	return catalog, nil
}

// buildDefault tries each fallback source in order and stops at the first
// one that yields previews
func (b *Builder) buildDefault(ctx context.Context, spec Spec, log *zap.Logger) (Option, bool) {
	packages := make(map[types.Category]*types.PackageID, len(spec.Categories))
	for _, c := range spec.Categories {
		packages[c] = nil
	}

	for _, source := range spec.DefaultSources {
		var (
			previews    []overlay.Asset
			resolutions []Resolution
		)
		for _, c := range spec.Categories {
			assets, res, err := spec.Previews[c].Resolve(ctx, b.resolver, source)
			if err != nil {
				log.Debug("default source has no previews",
					zap.String("source", source.String()),
					zap.String("category", c.String()),
					zap.Error(err))
				continue
			}
			res.Category = c
			previews = append(previews, assets...)
			resolutions = append(resolutions, res)
			b.traceResolution(log, DefaultOptionID, res)
		}

		if len(previews) > 0 {
			return NewOption(DefaultOptionID, spec.title(), true, packages, previews, resolutions), true
		}
	}

	log.Warn("no default previews in any fallback source, omitting default option",
		zap.Any("sources", spec.DefaultSources))
	b.observer.OptionSkipped(spec.Domain, SkipNoPreview)
	return Option{}, false
}

// group collects packages into drafts keyed by grouping key, in discovery order
func (b *Builder) group(ctx context.Context, spec Spec, log *zap.Logger) ([]*draft, error) {
	byKey := make(map[string]*draft)
	var order []*draft

	for _, c := range spec.Categories {
		pkgs, err := b.index.PackagesForCategory(ctx, c, spec.Targets)
		if err != nil {
			return nil, fmt.Errorf("list %s packages: %w", c, err)
		}

		for _, pkg := range pkgs {
			key := GroupingKey(pkg)
			if key == DefaultOptionID {
				log.Warn("skipping package whose option id is reserved", zap.String("package", pkg.String()))
				b.observer.OptionSkipped(spec.Domain, SkipReservedID)
				continue
			}
			d, ok := byKey[key]
			if !ok {
				label, err := b.index.Label(ctx, pkg)
				if err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					log.Warn("skipping package without label", zap.String("package", pkg.String()), zap.Error(err))
					b.observer.OptionSkipped(spec.Domain, SkipPackageNotFound)
					continue
				}
				d = &draft{key: key, title: b.sanitize(label, pkg), packages: make(map[types.Category]*types.PackageID)}
				byKey[key] = d
				order = append(order, d)
			}

			if prev := d.packages[c]; prev != nil {
				if *prev != pkg {
					log.Warn("two packages share a grouping key and category, keeping the first",
						zap.String("kept", prev.String()),
						zap.String("ignored", pkg.String()))
				}
				continue
			}
			d.packages[c] = types.PackagePtr(pkg)
		}
	}
	return order, nil
}

// finish validates a draft and resolves its previews
func (b *Builder) finish(ctx context.Context, spec Spec, d *draft, log *zap.Logger) (Option, bool, error) {
	for _, c := range spec.Required {
		if d.packages[c] == nil {
			log.Warn("skipping incomplete option",
				zap.String("option", d.key),
				zap.String("missing", c.String()))
			b.observer.OptionSkipped(spec.Domain, SkipIncomplete)
			return Option{}, false, nil
		}
	}

	var (
		previews    []overlay.Asset
		resolutions []Resolution
	)
	for _, c := range spec.Categories {
		pkg := d.packages[c]
		if pkg == nil {
			continue
		}

		assets, res, err := spec.Previews[c].Resolve(ctx, b.resolver, *pkg)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return Option{}, false, ctx.Err()
		case errors.Is(err, overlay.ErrPackageNotFound):
			log.Warn("package uninstalled during build, skipping option",
				zap.String("option", d.key),
				zap.String("package", pkg.String()))
			b.observer.OptionSkipped(spec.Domain, SkipPackageNotFound)
			return Option{}, false, nil
		default:
			log.Debug("no previews for category",
				zap.String("option", d.key),
				zap.String("category", c.String()),
				zap.Error(err))
			continue
		}

		res.Category = c
		previews = append(previews, assets...)
		resolutions = append(resolutions, res)
		b.traceResolution(log, d.key, res)
	}

	if len(previews) == 0 {
		log.Warn("skipping option without previews", zap.String("option", d.key))
		b.observer.OptionSkipped(spec.Domain, SkipNoPreview)
		return Option{}, false, nil
	}

	return NewOption(d.key, d.title, false, d.packages, previews, resolutions), true, nil
}

func (b *Builder) traceResolution(log *zap.Logger, option string, res Resolution) {
	if ce := log.Check(zap.DebugLevel, "preview resolved"); ce != nil {
		ce.Write(
			zap.String("option", option),
			zap.String("category", res.Category.String()),
			zap.String("package", res.Package.String()),
			zap.String("strategy", string(res.Strategy)),
			zap.Strings("names", slices.Clone(res.Names)),
			zap.String("pattern", res.Pattern),
		)
	}
}

// sanitize strips markup from third-party labels
func (b *Builder) sanitize(label string, pkg types.PackageID) string {
	clean := strings.TrimSpace(html.UnescapeString(b.sanitizer.Sanitize(label)))
	if clean == "" {
		return pkg.String()
	}
	return clean
}
