// Package config holds the run configuration of capletgeo and loads it
// from YAML or TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/chazu/caplet/pkg/basis"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Request types.
const (
	TypePWC          = "pwc"
	TypeInstantiable = "ins"
)

// DefaultSize returns the size default of a request type: the panel size
// for pwc and the arch length for ins, both in layout units.
func DefaultSize(typ string) float64 {
	if typ == TypePWC {
		return 50
	}
	return 300
}

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is one extraction run. Size is in layout units; the three
// distances are physical lengths in meters.
type Config struct {
	Type string `yaml:"type" toml:"type"`
	// Unit is one of n, u, m or 1.
	Unit string `yaml:"unit" toml:"unit"`
	// Size is the pwc panel size or the ins arch length. Nil selects the
	// type default. An ins size of zero disables arches and a negative one
	// disables basis generation.
	Size               *float64      `yaml:"size,omitempty" toml:"size,omitempty"`
	ProjectionDistance float64       `yaml:"projection_distance" toml:"projection_distance"`
	MergeDistance      float64       `yaml:"merge_distance" toml:"merge_distance"`
	CoincidentMargin   float64       `yaml:"coincident_margin" toml:"coincident_margin"`
	ArchSource         string        `yaml:"arch_source" toml:"arch_source"`
	Workers            int           `yaml:"workers" toml:"workers"`
	EvalTimeout        time.Duration `yaml:"eval_timeout" toml:"eval_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Type:               TypeInstantiable,
		Unit:               "n",
		ProjectionDistance: 1e-6,
		MergeDistance:      1e-9,
		CoincidentMargin:   0.1,
		ArchSource:         "projections",
		EvalTimeout:        5 * time.Second,
	}
}

var units = map[string]float64{"n": 1e-9, "u": 1e-6, "m": 1e-3, "1": 1}

// UnitScale returns the length of one layout unit in meters.
func UnitScale(unit string) (float64, error) {
	s, ok := units[unit]
	if !ok {
		return 0, errors.Wrapf(ErrInvalid, "unknown unit %q, want n, u, m or 1", unit)
	}
	return s, nil
}

// Load reads path over Default. The format follows the extension: .yaml
// and .yml for YAML, .toml for TOML.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return cfg, errors.Wrapf(ErrInvalid, "unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// SetSize sets Size to v.
func (c *Config) SetSize(v float64) { c.Size = &v }

// EffectiveSize resolves an unset size to the type default.
func (c Config) EffectiveSize() float64 {
	if c.Size == nil {
		return DefaultSize(c.Type)
	}
	return *c.Size
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Type {
	case TypePWC:
		if c.EffectiveSize() <= 0 {
			return errors.Wrapf(ErrInvalid, "pwc panel size must be positive, got %g", c.EffectiveSize())
		}
	case TypeInstantiable:
	default:
		return errors.Wrapf(ErrInvalid, "unknown type %q, want pwc or ins", c.Type)
	}
	if _, err := UnitScale(c.Unit); err != nil {
		return err
	}
	if _, err := c.archSource(); err != nil {
		return err
	}
	switch {
	case c.ProjectionDistance <= 0:
		return errors.Wrapf(ErrInvalid, "projection distance must be positive, got %g", c.ProjectionDistance)
	case c.MergeDistance < 0:
		return errors.Wrapf(ErrInvalid, "merge distance must not be negative, got %g", c.MergeDistance)
	case c.CoincidentMargin < 0 || c.CoincidentMargin >= 0.5:
		return errors.Wrapf(ErrInvalid, "coincident margin must be in [0, 0.5), got %g", c.CoincidentMargin)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalid, "workers must not be negative, got %d", c.Workers)
	case c.EvalTimeout < 0:
		return errors.Wrapf(ErrInvalid, "eval timeout must not be negative, got %s", c.EvalTimeout)
	}
	return nil
}

func (c Config) archSource() (basis.ArchSource, error) {
	switch c.ArchSource {
	case "", "projections":
		return basis.ArchFromProjections, nil
	case "supports":
		return basis.ArchFromSupports, nil
	}
	return 0, errors.Wrapf(ErrInvalid, "unknown arch source %q, want projections or supports", c.ArchSource)
}

// BasisParams converts the ins settings for a layout unit of unit meters.
func (c Config) BasisParams(unit float64) (basis.Params, error) {
	src, err := c.archSource()
	if err != nil {
		return basis.Params{}, err
	}
	return basis.Params{
		ArchLength:         c.EffectiveSize() * unit,
		ProjectionDistance: c.ProjectionDistance,
		MergeDistance:      c.MergeDistance,
		Margin:             c.CoincidentMargin,
		ArchSource:         src,
		Workers:            c.Workers,
	}, nil
}
