package overlay

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/utils"
)

const stringContentType = "text/plain; charset=utf-8"

// Asset is one loaded resource
type Asset struct {
	Package     types.PackageID `json:"package"`
	Name        string          `json:"name"`
	ContentType string          `json:"content_type"`
	Data        []byte          `json:"-"`
}

// ResourceStore resolves package resources from disk
type ResourceStore struct {
	mu       sync.RWMutex
	packages map[types.PackageID]Package
}

// NewResourceStore creates a store serving pkgs
func NewResourceStore(pkgs ...Package) *ResourceStore {
	s := &ResourceStore{packages: make(map[types.PackageID]Package, len(pkgs))}
	for _, p := range pkgs {
		s.Add(p)
	}
	return s
}

// Add registers or replaces a package's resources
func (s *ResourceStore) Add(p Package) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packages[p.ID] = p
}

// Remove drops a package
func (s *ResourceStore) Remove(id types.PackageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.packages, id)
}

// Load reads a resource. String resources return their value as text.
func (s *ResourceStore) Load(ctx context.Context, pkg types.PackageID, name string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	p, err := s.lookup(pkg)
	if err != nil {
		return Asset{}, err
	}

	if value, ok := p.Strings[name]; ok {
		return Asset{Package: pkg, Name: name, ContentType: stringContentType, Data: []byte(value)}, nil
	}

	path, ok := p.Resources[name]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s/%s", ErrAssetNotFound, pkg, name)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Asset{}, fmt.Errorf("%w: %s/%s (file missing)", ErrAssetNotFound, pkg, name)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("read %s/%s: %w", pkg, name, err)
	}
	if err := utils.ValidateSize(data, utils.MaxAssetSize); err != nil {
		return Asset{}, fmt.Errorf("%s/%s: %w", pkg, name, err)
	}

	return Asset{
		Package:     pkg,
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// ResourceExists reports whether pkg declares name
func (s *ResourceStore) ResourceExists(pkg types.PackageID, name string) bool {
	p, err := s.lookup(pkg)
	if err != nil {
		return false
	}
	_, file := p.Resources[name]
	_, str := p.Strings[name]
	return file || str
}

// ResourceNames lists every resource name of pkg in sorted order
func (s *ResourceStore) ResourceNames(pkg types.PackageID) ([]string, error) {
	p, err := s.lookup(pkg)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(p.Resources)+len(p.Strings))
	for name := range p.Resources {
		names = append(names, name)
	}
	for name := range p.Strings {
		if _, dup := p.Resources[name]; !dup {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *ResourceStore) lookup(pkg types.PackageID) (Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.packages[pkg]
	if !ok {
		return Package{}, fmt.Errorf("%w: %s", ErrPackageNotFound, pkg)
	}
	return p, nil
}
