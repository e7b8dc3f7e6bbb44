package overlay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/utils"
)

// ManifestPattern matches manifest files relative to the packs directory
const ManifestPattern = "**/overlay.yaml"

// Manifest is the on-disk description of a package:
//
//	package: com.pack.a.wifi
//	label: Pack A
//	category: android.theme.customization.icon_pack.wifi
//	targets: [com.android.systemui]
//	enabled: false
//	resources:
//	  ic_wifi_signal_4: drawable/ic_wifi_signal_4.svg
//	strings:
//	  config_clockFontFamily: sans-serif-condensed
type Manifest struct {
	Package   string            `yaml:"package"`
	Label     string            `yaml:"label"`
	Category  string            `yaml:"category"`
	Targets   []string          `yaml:"targets"`
	Enabled   bool              `yaml:"enabled"`
	Resources map[string]string `yaml:"resources"`
	Strings   map[string]string `yaml:"strings"`
}

// ParseManifest decodes a manifest. Resource paths are resolved against dir
// and may not leave it.
func ParseManifest(data []byte, dir string) (Package, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Package{}, fmt.Errorf("parse manifest: %w", err)
	}

	if err := utils.ValidatePackage(m.Package); err != nil {
		return Package{}, err
	}
	if m.Label == "" {
		m.Label = m.Package
	}

	pkg := Package{
		ID:        types.PackageID(m.Package),
		Label:     m.Label,
		Category:  types.Category(m.Category),
		Enabled:   m.Enabled,
		Resources: make(map[string]string, len(m.Resources)),
		Strings:   make(map[string]string, len(m.Strings)),
	}
	for _, t := range m.Targets {
		pkg.Targets = append(pkg.Targets, types.PackageID(t))
	}
	for name, rel := range m.Resources {
		if !filepath.IsLocal(rel) {
			return Package{}, fmt.Errorf("resource %s of %s escapes the package directory", name, m.Package)
		}
		pkg.Resources[name] = filepath.Join(dir, rel)
	}
	for name, value := range m.Strings {
		pkg.Strings[name] = value
	}
	return pkg, nil
}

// Loader scans a packs directory for manifests
type Loader struct {
	root   string
	logger *zap.Logger
}

// NewLoader creates a loader for root
func NewLoader(root string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{root: root, logger: logger}
}

// Load parses every manifest under the root. Broken manifests are logged and
// skipped; duplicate package ids keep the first manifest in path order.
func (l *Loader) Load(ctx context.Context) ([]Package, error) {
	paths, err := l.manifests(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.PackageID]string, len(paths))
	pkgs := make([]Package, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable manifest", zap.String("path", path), zap.Error(err))
			continue
		}

		pkg, err := ParseManifest(data, filepath.Dir(path))
		if err != nil {
			l.logger.Warn("skipping invalid manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		if prev, dup := seen[pkg.ID]; dup {
			l.logger.Warn("duplicate package id",
				zap.String("package", pkg.ID.String()),
				zap.String("kept", prev),
				zap.String("ignored", path))
			continue
		}

		seen[pkg.ID] = path
		pkgs = append(pkgs, pkg)
	}

	l.logger.Info("loaded overlay packages", zap.String("root", l.root), zap.Int("count", len(pkgs)))
	return pkgs, nil
}

// manifests returns manifest paths in sorted order
func (l *Loader) manifests(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)

	if _, err := os.Stat(l.root); err != nil {
		return nil, fmt.Errorf("packs dir: %w", err)
	}

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, l.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.PathMatch(ManifestPattern, rel); ok {
			mu.Lock()
			paths = append(paths, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadPacks scans root and returns an index and resource store over the
// packages found
func LoadPacks(ctx context.Context, root string, logger *zap.Logger) (*MemoryIndex, *ResourceStore, error) {
	pkgs, err := NewLoader(root, logger).Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewMemoryIndex(pkgs...), NewResourceStore(pkgs...), nil
}
