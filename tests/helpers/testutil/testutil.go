// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/overlay"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// PNG is a minimal PNG header, enough for content type detection.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// MockIndex is a mock implementation of overlay.Index for testing.
type MockIndex struct {
	mock.Mock
}

var _ overlay.Index = (*MockIndex)(nil)

// IsAvailable mocks the IsAvailable method.
func (m *MockIndex) IsAvailable() bool {
	return m.Called().Bool(0)
}

// EnabledPackage mocks the EnabledPackage method.
func (m *MockIndex) EnabledPackage(ctx context.Context, category types.Category) (*types.PackageID, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PackageID), args.Error(1)
}

// PackagesForCategory mocks the PackagesForCategory method.
func (m *MockIndex) PackagesForCategory(ctx context.Context, category types.Category, targets []types.PackageID) ([]types.PackageID, error) {
	args := m.Called(ctx, category, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PackageID), args.Error(1)
}

// SetExclusive mocks the SetExclusive method.
func (m *MockIndex) SetExclusive(ctx context.Context, category types.Category, pkg types.PackageID) error {
	return m.Called(ctx, category, pkg).Error(0)
}

// Disable mocks the Disable method.
func (m *MockIndex) Disable(ctx context.Context, category types.Category, pkg types.PackageID) error {
	return m.Called(ctx, category, pkg).Error(0)
}

// Label mocks the Label method.
func (m *MockIndex) Label(ctx context.Context, pkg types.PackageID) (string, error) {
	args := m.Called(ctx, pkg)
	return args.String(0), args.Error(1)
}

// NewMockIndex creates a mock index that reports itself available.
func NewMockIndex(t *testing.T) *MockIndex {
	t.Helper()
	m := new(MockIndex)

	m.On("IsAvailable").Return(true).Maybe()

	return m
}

// PackageSpec describes a package written by WritePack.
type PackageSpec struct {
	ID        string
	Label     string
	Category  types.Category
	Targets   []string
	Enabled   bool
	Resources map[string][]byte // name -> file content
	Strings   map[string]string
}

// WritePack writes a package directory with an overlay.yaml manifest under root.
func WritePack(t *testing.T, root string, spec PackageSpec) string {
	t.Helper()

	dir := filepath.Join(root, spec.ID)
	if err := os.MkdirAll(filepath.Join(dir, "res"), 0o755); err != nil {
		t.Fatalf("create pack dir: %v", err)
	}

	manifest := overlay.Manifest{
		Package:   spec.ID,
		Label:     spec.Label,
		Category:  spec.Category.String(),
		Targets:   spec.Targets,
		Enabled:   spec.Enabled,
		Resources: map[string]string{},
		Strings:   spec.Strings,
	}
	for name, content := range spec.Resources {
		rel := filepath.Join("res", name)
		if err := os.WriteFile(filepath.Join(dir, rel), content, 0o644); err != nil {
			t.Fatalf("write resource %s: %v", name, err)
		}
		manifest.Resources[name] = rel
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "overlay.yaml"), data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

// Icons returns a resource map with a PNG for every name.
func Icons(names ...string) map[string][]byte {
	out := make(map[string][]byte, len(names))
	for _, n := range names {
		out[n] = PNG
	}
	return out
}

// Packages builds an in-memory index and resource store from specs without
// touching disk; resources are served as strings.
func Packages(t *testing.T, specs ...PackageSpec) (*overlay.MemoryIndex, *overlay.ResourceStore) {
	t.Helper()

	pkgs := make([]overlay.Package, 0, len(specs))
	for _, spec := range specs {
		p := overlay.Package{
			ID:       types.PackageID(spec.ID),
			Label:    spec.Label,
			Category: spec.Category,
			Enabled:  spec.Enabled,
			Strings:  map[string]string{},
		}
		for _, target := range spec.Targets {
			p.Targets = append(p.Targets, types.PackageID(target))
		}
		for name, content := range spec.Resources {
			p.Strings[name] = string(content)
		}
		for name, value := range spec.Strings {
			p.Strings[name] = value
		}
		pkgs = append(pkgs, p)
	}
	return overlay.NewMemoryIndex(pkgs...), overlay.NewResourceStore(pkgs...)
}
