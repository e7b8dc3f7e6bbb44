package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/types"
)

// Config overrides naming strategies per domain. Example catalog.toml:
//
//	default_title = "System"
//
//	[domains.wifi_icons]
//	default_sources = ["android", "com.android.systemui"]
//
//	[domains.wifi_icons.previews."android.theme.customization.icon_pack.wifi"]
//	names = ["ic_wifi_signal_4"]
//	patterns = ["ic_wifi_signal_*", "ic_wifi"]
type Config struct {
	DefaultTitle string                  `toml:"default_title"`
	Domains      map[string]DomainConfig `toml:"domains"`
}

// DomainConfig overrides one domain. Empty fields keep the built-in values.
type DomainConfig struct {
	DefaultTitle   string               `toml:"default_title"`
	DefaultSources []string             `toml:"default_sources"`
	Targets        []string             `toml:"targets"`
	Previews       map[string]Discovery `toml:"previews"`
}

// LoadConfig reads a TOML file. A missing file yields an empty config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read catalog config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes TOML and validates every pattern
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse catalog config: %w", err)
	}

	for name, dc := range cfg.Domains {
		for category, d := range dc.Previews {
			if err := d.Validate(); err != nil {
				return Config{}, fmt.Errorf("domain %s category %s: %w", name, category, err)
			}
		}
	}
	return cfg, nil
}

// Apply returns spec with this config's overrides for spec.Domain
func (c Config) Apply(spec Spec) Spec {
	out := spec.Clone()

	if c.DefaultTitle != "" {
		out.DefaultTitle = c.DefaultTitle
	}

	dc, ok := c.Domains[spec.Domain]
	if !ok {
		return out
	}

	if dc.DefaultTitle != "" {
		out.DefaultTitle = dc.DefaultTitle
	}
	if len(dc.DefaultSources) > 0 {
		out.DefaultSources = toPackages(dc.DefaultSources)
	}
	if len(dc.Targets) > 0 {
		out.Targets = toPackages(dc.Targets)
	}
	for category, d := range dc.Previews {
		if !d.IsZero() {
			out.Previews[types.Category(category)] = d
		}
	}
	return out
}

// Encode renders the config as TOML
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func toPackages(ids []string) []types.PackageID {
	out := make([]types.PackageID, len(ids))
	for i, id := range ids {
		out[i] = types.PackageID(id)
	}
	return out
}
