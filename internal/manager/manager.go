package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/selection"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/eventbus"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/id"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

var (
	ErrBusy          = errors.New("an apply is already in progress")
	ErrInvalidOption = errors.New("option does not belong to this domain")
)

// AppliedEvent is published after an option has been persisted and enabled
type AppliedEvent struct {
	ID       id.ApplyID                          `json:"id"`
	Domain   string                              `json:"domain"`
	OptionID string                              `json:"option_id"`
	Title    string                              `json:"title"`
	Packages map[types.Category]*types.PackageID `json:"packages"`
	At       time.Time                           `json:"at"`
}

// Dependencies are the collaborators of a manager. Logger, Observer,
// CatalogObserver and Events may be nil.
type Dependencies struct {
	Index           overlay.Index
	Resolver        catalog.Resolver
	Store           *selection.Store
	Events          *eventbus.Bus[AppliedEvent]
	Logger          *zap.Logger
	Observer        Observer
	CatalogObserver catalog.Observer
}

// Manager is the option manager of one domain
type Manager struct {
	def      Definition
	index    overlay.Index
	store    *selection.Store
	builder  *catalog.Builder
	events   *eventbus.Bus[AppliedEvent]
	logger   *zap.Logger
	observer Observer

	mu      sync.Mutex
	state   State
	loaded  bool
	options []catalog.Option
	active  *catalog.Option
	// applied counts successful applies; a fetch that overlaps one does
	// not record its active option
	applied uint64
}

// New creates a manager for def
func New(def Definition, deps Dependencies) (*Manager, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if deps.Index == nil || deps.Resolver == nil || deps.Store == nil {
		return nil, fmt.Errorf("manager %s: index, resolver and store are required", def.Domain.ID)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("domain", def.Domain.ID))

	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	events := deps.Events
	if events == nil {
		events = eventbus.New[AppliedEvent]()
	}

	return &Manager{
		def:      def,
		index:    deps.Index,
		store:    deps.Store,
		builder:  catalog.NewBuilder(deps.Index, deps.Resolver, logger, deps.CatalogObserver),
		events:   events,
		logger:   logger,
		observer: observer,
	}, nil
}

// ID returns the domain id
func (m *Manager) ID() string {
	return m.def.Domain.ID
}

// Definition returns the domain description
func (m *Manager) Definition() types.Domain {
	d := m.def.Domain
	d.Categories = slices.Clone(d.Categories)
	return d
}

// Spec returns the catalog spec in effect
func (m *Manager) Spec() catalog.Spec {
	return m.def.Spec.Clone()
}

// IsAvailable reports whether the overlay service can be used
func (m *Manager) IsAvailable() bool {
	return m.index.IsAvailable()
}

// State returns the lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active returns the option recorded as active
func (m *Manager) Active() (catalog.Option, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return catalog.Option{}, false
	}
	return *m.active, true
}

// Status returns the definition together with the runtime state
func (m *Manager) Status() types.DomainStatus {
	status := types.DomainStatus{
		Domain:    m.Definition(),
		Available: m.IsAvailable(),
		State:     m.State().String(),
	}
	if active, ok := m.Active(); ok {
		activeID := active.ID()
		status.ActiveID = &activeID
	}
	return status
}

// Fetch returns the catalog and refreshes the active option. With reload
// false a previously built catalog is reused; the active option is always
// recomputed from the overlay index. Fetch never waits for an Apply.
func (m *Manager) Fetch(ctx context.Context, reload bool) *Task[[]catalog.Option] {
	return start(ctx, func(ctx context.Context) ([]catalog.Option, error) {
		return m.fetch(ctx, reload)
	})
}

func (m *Manager) fetch(ctx context.Context, reload bool) ([]catalog.Option, error) {
	m.mu.Lock()
	options, loaded, generation := m.options, m.loaded, m.applied
	m.mu.Unlock()

	if reload || !loaded {
		built, err := m.builder.Build(ctx, m.def.Spec)
		if err != nil {
			return nil, fmt.Errorf("build %s catalog: %w", m.def.Domain.ID, err)
		}
		options = built
	}

	enabled, err := m.enabled(ctx)
	if err != nil {
		return nil, err
	}
	active, ok := m.resolveActive(options, enabled)

	m.mu.Lock()
	m.options = options
	m.loaded = true
	switch {
	case m.applied != generation:
		m.logger.Debug("apply finished during fetch, keeping its active option")
	case ok:
		m.active = &active
	default:
		m.active = nil
	}
	if m.state == StateUninitialized {
		m.state = StateReady
	}
	m.mu.Unlock()

	return slices.Clone(options), nil
}

// Option returns the catalog entry with id from the last fetch
func (m *Manager) Option(optionID string) (catalog.Option, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return catalog.Find(m.options, optionID)
}

// resolveActive falls back to the first option when nothing matches
func (m *Manager) resolveActive(options []catalog.Option, enabled map[types.Category]*types.PackageID) (catalog.Option, bool) {
	if active, ok := catalog.ResolveActive(options, enabled); ok {
		return active, true
	}
	if len(options) == 0 {
		return catalog.Option{}, false
	}

	fields := []zap.Field{zap.String("fallback", options[0].ID())}
	for c, p := range enabled {
		if p != nil {
			fields = append(fields, zap.String(c.String(), p.String()))
		}
	}
	m.logger.Warn("no option matches the enabled overlays", fields...)
	m.observer.ActiveDegraded(m.def.Domain.ID)
	return options[0], true
}

// enabled queries the overlay index for every managed category
func (m *Manager) enabled(ctx context.Context) (map[types.Category]*types.PackageID, error) {
	out := make(map[types.Category]*types.PackageID, len(m.def.Spec.Categories))
	for _, c := range m.def.Spec.Categories {
		pkg, err := m.index.EnabledPackage(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("enabled package for %s: %w", c, err)
		}
		out[c] = pkg
	}
	return out, nil
}

// Apply persists option to the shared selection document and then enables
// its overlays. The recorded active option changes only when both steps
// succeed. Calling Apply while another Apply runs returns ErrBusy.
func (m *Manager) Apply(ctx context.Context, option catalog.Option) *Task[struct{}] {
	if err := m.validate(option); err != nil {
		return failed[struct{}](err)
	}

	m.mu.Lock()
	if m.state == StateApplying {
		m.mu.Unlock()
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeBusy)
		return failed[struct{}](ErrBusy)
	}
	m.state = StateApplying
	m.mu.Unlock()

	applyID := id.NewApplyID()
	log := m.logger.With(zap.String("apply_id", applyID.String()), zap.String("option", option.ID()))

	return start(ctx, func(ctx context.Context) (struct{}, error) {
		err := m.apply(ctx, option, log)

		m.mu.Lock()
		m.state = StateReady
		if err == nil {
			m.active = &option
			m.applied++
		}
		m.mu.Unlock()

		if err != nil {
			return struct{}{}, err
		}

		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeApplied)
		log.Info("option applied")
		m.events.Publish(AppliedEvent{
			ID:       applyID,
			Domain:   m.def.Domain.ID,
			OptionID: option.ID(),
			Title:    option.Title(),
			Packages: m.selection(option),
			At:       time.Now().UTC(),
		})
		return struct{}{}, nil
	})
}

// validate rejects options that do not map every required category
func (m *Manager) validate(option catalog.Option) error {
	if option.IsDefault() {
		return nil
	}
	for _, c := range m.def.Spec.Required {
		if option.Package(c) == nil {
			return fmt.Errorf("%w: %s has no package for %s", ErrInvalidOption, option.ID(), c)
		}
	}
	return nil
}

// selection is the document patch for option, limited to this domain
func (m *Manager) selection(option catalog.Option) selection.Document {
	doc := make(selection.Document, len(m.def.Spec.Categories))
	for _, c := range m.def.Spec.Categories {
		doc[c] = option.Package(c)
	}
	return doc
}

func (m *Manager) apply(ctx context.Context, option catalog.Option, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeFailed)
		return err
	}

	previous, err := m.enabled(ctx)
	if err != nil {
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeFailed)
		return err
	}
	current, err := m.store.Read(ctx)
	if err != nil {
		log.Error("failed to read selection", zap.Error(err))
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeFailed)
		return err
	}
	prior := make(selection.Document, len(m.def.Spec.Categories))
	for _, c := range m.def.Spec.Categories {
		prior[c] = current.Get(c)
	}

	if err := m.store.Merge(ctx, m.selection(option)); err != nil {
		log.Error("failed to persist selection", zap.Error(err))
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeFailed)
		return err
	}

	// The selection is persisted; overlay calls run to completion even if
	// the task is cancelled so the document and the index stay in step.
	steps := context.WithoutCancel(ctx)
	if err := m.enable(steps, option, previous); err != nil {
		log.Error("failed to enable overlays, rolling back", zap.Error(err))
		if rbErr := m.rollback(steps, previous, prior); rbErr != nil {
			log.Error("rollback incomplete", zap.Error(rbErr))
			err = errors.Join(err, rbErr)
		}
		m.observer.ApplyOutcome(m.def.Domain.ID, OutcomeRolledBack)
		return fmt.Errorf("enable %s: %w", option.ID(), err)
	}
	return nil
}

// enable switches every managed category to the option's package. The
// default option disables whatever is enabled.
func (m *Manager) enable(ctx context.Context, option catalog.Option, previous map[types.Category]*types.PackageID) error {
	for _, c := range m.def.Spec.Categories {
		if err := m.set(ctx, c, option.Package(c), previous[c]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) set(ctx context.Context, category types.Category, want, enabled *types.PackageID) error {
	if want != nil {
		if err := m.index.SetExclusive(ctx, category, *want); err != nil {
			return fmt.Errorf("enable %s: %w", *want, err)
		}
		return nil
	}
	if enabled == nil {
		return nil
	}
	return m.disableAll(ctx, category, *enabled)
}

// disableAll disables every package of category, since more than one
// overlay of a category can be enabled outside this service
func (m *Manager) disableAll(ctx context.Context, category types.Category, enabled types.PackageID) error {
	pkgs, err := m.index.PackagesForCategory(ctx, category, m.def.Spec.Targets)
	if err != nil {
		return fmt.Errorf("list %s: %w", category, err)
	}
	if !slices.Contains(pkgs, enabled) {
		pkgs = append(pkgs, enabled)
	}
	for _, pkg := range pkgs {
		if err := m.index.Disable(ctx, category, pkg); err != nil && !errors.Is(err, overlay.ErrPackageNotFound) {
			return fmt.Errorf("disable %s: %w", pkg, err)
		}
	}
	return nil
}

// Restore brings the overlay index in line with the persisted selection.
// Categories the document does not mention keep their current state, and
// a selected package that is no longer installed is left alone. It is
// meant to run once at startup, before any Apply.
func (m *Manager) Restore(ctx context.Context) error {
	if !m.IsAvailable() {
		return nil
	}

	doc, err := m.store.Read(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, c := range m.def.Spec.Categories {
		want, ok := doc[c]
		if !ok {
			continue
		}
		enabled, err := m.index.EnabledPackage(ctx, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("enabled package for %s: %w", c, err))
			continue
		}
		if want != nil && types.SamePackage(enabled, want) {
			continue
		}

		err = m.set(ctx, c, want, enabled)
		switch {
		case err == nil:
			if want != nil || enabled != nil {
				m.logger.Info("restored persisted selection",
					zap.String("category", c.String()),
					zap.Stringp("package", (*string)(want)))
			}
		case errors.Is(err, overlay.ErrPackageNotFound):
			m.logger.Warn("persisted package is not installed",
				zap.String("category", c.String()),
				zap.Stringp("package", (*string)(want)))
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// rollback restores the previously enabled overlays and merges the previous
// selection back. It attempts every step and reports all failures.
func (m *Manager) rollback(ctx context.Context, previous map[types.Category]*types.PackageID, prior selection.Document) error {
	var errs []error
	for _, c := range m.def.Spec.Categories {
		now, err := m.index.EnabledPackage(ctx, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if types.SamePackage(now, previous[c]) {
			continue
		}
		if err := m.set(ctx, c, previous[c], now); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.store.Merge(ctx, prior); err != nil {
		errs = append(errs, fmt.Errorf("restore selection: %w", err))
	}
	return errors.Join(errs...)
}
