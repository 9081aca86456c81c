// Package config implements the YAML configuration file: window, page,
// dpi, projection, bgcolor, threads, render-all-nodes, need-index,
// landscape, grid, and per-action parameter maps, with Validate/Hash
// methods and a Load/LoadFromBytes pair.
package config

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smrender/smrender/pkg/geo"
)

// Config holds every recognised configuration option.
type Config struct {
	// Seed is the master seed for the random action and any other
	// deterministic jitter; 0 auto-generates from the config hash.
	Seed uint64 `yaml:"seed" json:"seed"`

	Window string `yaml:"window" json:"window"`
	Page   string `yaml:"page" json:"page"`
	DPI    int    `yaml:"dpi" json:"dpi"`

	Projection string `yaml:"projection" json:"projection"`
	BGColor    string `yaml:"bgcolor" json:"bgcolor"`

	Threads int `yaml:"threads" json:"threads"`

	RenderAllNodes    bool `yaml:"renderAllNodes" json:"renderAllNodes"`
	NeedIndexOverride bool `yaml:"needIndex" json:"needIndex"`
	Landscape         bool `yaml:"landscape" json:"landscape"`

	// Grid is the "G[:T[:S]]" arc-minute spec: graticule step, ruler
	// section size, ruler section count.
	Grid string `yaml:"grid,omitempty" json:"grid,omitempty"`

	// Actions carries per-action parameter overrides keyed by action
	// name (e.g. "cat_poly": {"ign_incomplete": "1", "vcdist": "5"}),
	// merged over whatever a rule's own _action_ tag specifies.
	Actions map[string]map[string]string `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// ResolvedGrid is the parsed form of the Grid string: graticule step in
// degrees, ruler section length in km, and ruler section count.
type ResolvedGrid struct {
	GraticuleStepDeg float64
	RulerSectionKM   float64
	RulerSections    int
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates YAML configuration from a
// byte slice, for tests and programmatic config generation.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = binary.LittleEndian.Uint64(cfg.Hash()[:8])
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every option that can be checked without a runtime
// frame: page/window parse, DPI range, projection name, thread count.
// A malformed window or page is fatal at startup.
func (c *Config) Validate() error {
	if c.DPI < 0 {
		return fmt.Errorf("dpi must be non-negative, got %d", c.DPI)
	}
	if c.Window == "" {
		return fmt.Errorf("window must be specified")
	}
	if _, err := ParseWindow(c.Window); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if c.Page == "" {
		return fmt.Errorf("page must be specified")
	}
	if _, err := geo.ParsePageSpec(c.Page, c.DPI); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	if _, err := geo.ParseProjKind(c.Projection); err != nil {
		return fmt.Errorf("projection: %w", err)
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must be non-negative, got %d", c.Threads)
	}
	if c.Grid != "" {
		if _, err := ParseGrid(c.Grid); err != nil {
			return fmt.Errorf("grid: %w", err)
		}
	}
	return nil
}

// ToYAML serializes the config back to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Hash computes a deterministic SHA-256 fingerprint of the
// configuration, used to derive per-stage RNG seeds and to auto-pick a
// seed when none is configured.
func (c *Config) Hash() []byte {
	data, err := c.ToYAML()
	if err != nil {
		h := sha256.New()
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], c.Seed)
		h.Write(buf[:])
		return h.Sum(nil)
	}
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}

// ResolvedPage parses the configured page spec into a geo.Page, applying
// Landscape.
func (c *Config) ResolvedPage() (geo.Page, error) {
	p, err := geo.ParsePageSpec(c.Page, c.DPI)
	if err != nil {
		return geo.Page{}, err
	}
	p.Landscape = c.Landscape
	return p, nil
}

// ResolvedProjection parses the configured projection name.
func (c *Config) ResolvedProjection() (geo.ProjKind, error) {
	return geo.ParseProjKind(c.Projection)
}

// ResolvedWindow parses the configured window spec.
func (c *Config) ResolvedWindow() (geo.Window, error) {
	return ParseWindow(c.Window)
}

// ResolvedGrid parses the configured grid spec, or the zero value
// (disabled) if Grid is empty.
func (c *Config) ResolvedGrid() (ResolvedGrid, error) {
	if c.Grid == "" {
		return ResolvedGrid{}, nil
	}
	return ParseGrid(c.Grid)
}

// ActionParams merges a rule's own _action_ parameters with any
// config-level overrides for that action name, config values taking
// precedence, so global tuning never requires touching the rules file.
func (c *Config) ActionParams(actionName string, ruleParams map[string]string) map[string]string {
	merged := make(map[string]string, len(ruleParams))
	for k, v := range ruleParams {
		merged[k] = v
	}
	for k, v := range c.Actions[actionName] {
		merged[k] = v
	}
	return merged
}
