package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/catalog"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Registry holds the managers built by the composition root
type Registry struct {
	managers sync.Map
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a manager. Domain ids must be unique.
func (r *Registry) Register(m *Manager) error {
	if m == nil {
		return fmt.Errorf("manager cannot be nil")
	}
	if _, loaded := r.managers.LoadOrStore(m.ID(), m); loaded {
		return fmt.Errorf("domain %s already registered", m.ID())
	}
	return nil
}

// Get retrieves a manager by domain id
func (r *Registry) Get(domainID string) (*Manager, bool) {
	val, ok := r.managers.Load(domainID)
	if !ok {
		return nil, false
	}
	return val.(*Manager), true
}

// List returns every manager ordered by domain id
func (r *Registry) List() []*Manager {
	var out []*Manager
	r.managers.Range(func(_, value interface{}) bool {
		out = append(out, value.(*Manager))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Statuses describes every domain
func (r *Registry) Statuses() []types.DomainStatus {
	managers := r.List()
	out := make([]types.DomainStatus, len(managers))
	for i, m := range managers {
		out[i] = m.Status()
	}
	return out
}

// RestoreAll restores the persisted selection of every domain. Domains
// share categories, so they run one after another.
func (r *Registry) RestoreAll(ctx context.Context) error {
	var errs []error
	for _, m := range r.List() {
		if err := m.Restore(ctx); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", m.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// FetchAll fetches every domain concurrently. Unavailable domains are skipped.
func (r *Registry) FetchAll(ctx context.Context, reload bool) (map[string][]catalog.Option, error) {
	managers := r.List()
	results := make([][]catalog.Option, len(managers))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range managers {
		if !m.IsAvailable() {
			continue
		}
		g.Go(func() error {
			task := m.Fetch(ctx, reload)
			options, err := task.Wait(ctx)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", m.ID(), err)
			}
			results[i] = options
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]catalog.Option, len(managers))
	for i, m := range managers {
		if m.IsAvailable() {
			out[m.ID()] = results[i]
		}
	}
	return out, nil
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	var total, available, applying int
	categories := make(map[string]int)

	for _, m := range r.List() {
		total++
		if m.IsAvailable() {
			available++
		}
		if m.State() == StateApplying {
			applying++
		}
		for _, c := range m.def.Spec.Categories {
			categories[c.String()]++
		}
	}

	return map[string]interface{}{
		"total_domains":     total,
		"available_domains": available,
		"applying":          applying,
		"categories":        categories,
	}
}
