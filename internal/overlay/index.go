package overlay

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

var (
	ErrPackageNotFound = errors.New("overlay package not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrUnavailable     = errors.New("overlay service unavailable")
)

// Index is the overlay service as seen by option managers
type Index interface {
	IsAvailable() bool
	// EnabledPackage returns the enabled package for category, or nil
	EnabledPackage(ctx context.Context, category types.Category) (*types.PackageID, error)
	// PackagesForCategory lists packages of category that overlay any of targets
	PackagesForCategory(ctx context.Context, category types.Category, targets []types.PackageID) ([]types.PackageID, error)
	// SetExclusive enables pkg and disables every other package in category
	SetExclusive(ctx context.Context, category types.Category, pkg types.PackageID) error
	Disable(ctx context.Context, category types.Category, pkg types.PackageID) error
	// Label returns the human-readable label, or ErrPackageNotFound
	Label(ctx context.Context, pkg types.PackageID) (string, error)
}

// Package is an installed overlay or base resource package
type Package struct {
	ID       types.PackageID
	Label    string
	Category types.Category // empty for base packages such as "android"
	Targets  []types.PackageID
	Enabled  bool
	// Resources maps resource names to files on disk
	Resources map[string]string
	// Strings maps resource names to inline string values
	Strings map[string]string
}

// IsOverlay reports whether the package belongs to a category
func (p Package) IsOverlay() bool {
	return p.Category != ""
}

func (p Package) overlays(targets []types.PackageID) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range p.Targets {
		if slices.Contains(targets, t) {
			return true
		}
	}
	return false
}

// MemoryIndex keeps installed packages and their enabled state in memory
type MemoryIndex struct {
	mu        sync.RWMutex
	packages  map[types.PackageID]*Package
	available bool
}

// NewMemoryIndex creates an index holding pkgs
func NewMemoryIndex(pkgs ...Package) *MemoryIndex {
	idx := &MemoryIndex{
		packages:  make(map[types.PackageID]*Package),
		available: true,
	}
	for _, p := range pkgs {
		idx.Install(p)
	}
	return idx
}

// Install adds or replaces a package
func (m *MemoryIndex) Install(p Package) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := p
	cp.Targets = slices.Clone(p.Targets)
	cp.Resources = maps.Clone(p.Resources)
	cp.Strings = maps.Clone(p.Strings)
	m.packages[p.ID] = &cp
}

// Uninstall removes a package
func (m *MemoryIndex) Uninstall(id types.PackageID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.packages, id)
}

// SetAvailable toggles service availability
func (m *MemoryIndex) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.available = available
}

// Packages returns a snapshot of installed packages sorted by ID
func (m *MemoryIndex) Packages() []Package {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Package, 0, len(m.packages))
	for _, p := range m.packages {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsAvailable implements Index
func (m *MemoryIndex) IsAvailable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.available
}

// EnabledPackage implements Index
func (m *MemoryIndex) EnabledPackage(ctx context.Context, category types.Category) (*types.PackageID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx); err != nil {
		return nil, err
	}

	for _, id := range m.sortedIDs(category, nil) {
		if m.packages[id].Enabled {
			return types.PackagePtr(id), nil
		}
	}
	return nil, nil
}

// PackagesForCategory implements Index
func (m *MemoryIndex) PackagesForCategory(ctx context.Context, category types.Category, targets []types.PackageID) ([]types.PackageID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(ctx); err != nil {
		return nil, err
	}
	return m.sortedIDs(category, targets), nil
}

// SetExclusive implements Index
func (m *MemoryIndex) SetExclusive(ctx context.Context, category types.Category, pkg types.PackageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return err
	}

	target, ok := m.packages[pkg]
	if !ok || target.Category != category {
		return fmt.Errorf("%w: %s in %s", ErrPackageNotFound, pkg, category)
	}

	for _, p := range m.packages {
		if p.Category == category {
			p.Enabled = p.ID == pkg
		}
	}
	return nil
}

// Disable implements Index
func (m *MemoryIndex) Disable(ctx context.Context, category types.Category, pkg types.PackageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(ctx); err != nil {
		return err
	}

	p, ok := m.packages[pkg]
	if !ok || p.Category != category {
		return fmt.Errorf("%w: %s in %s", ErrPackageNotFound, pkg, category)
	}
	p.Enabled = false
	return nil
}

// Label implements Index
func (m *MemoryIndex) Label(ctx context.Context, pkg types.PackageID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	p, ok := m.packages[pkg]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPackageNotFound, pkg)
	}
	return p.Label, nil
}

func (m *MemoryIndex) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.available {
		return ErrUnavailable
	}
	return nil
}

// sortedIDs must be called with the lock held
func (m *MemoryIndex) sortedIDs(category types.Category, targets []types.PackageID) []types.PackageID {
	var ids []types.PackageID
	for id, p := range m.packages {
		if p.Category == category && p.overlays(targets) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
