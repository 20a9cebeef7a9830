// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"spoofdefense-sim/internal/engine"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Arena is the size of the simulated airspace in arena units.
type Arena struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Defaults are the operator settings a fresh engine starts with.
type Defaults struct {
	Scenario  string             `yaml:"scenario"`
	Drones    int                `yaml:"drones"`
	Intensity float64            `yaml:"intensity"`
	Control   engine.ControlType `yaml:"control"`
	Zone      string             `yaml:"zone"`
}

// SimulationConfig is the root configuration for the arena, zones and defaults
type SimulationConfig struct {
	Arena                  Arena           `yaml:"arena"`
	SensitiveArea          engine.Zone     `yaml:"sensitive_area"`
	WarningDistance        float64         `yaml:"warning_distance"`
	DiversionZones         []engine.Zone   `yaml:"diversion_zones"`
	Towers                 []engine.Tower  `yaml:"towers"`
	SpawnPadding           float64         `yaml:"spawn_padding"`
	RequireAlertForDefense bool            `yaml:"require_alert_for_defense"`
	ZoneMode               engine.ZoneMode `yaml:"zone_mode"`
	TickInterval           time.Duration   `yaml:"tick_interval"`
	ScenarioFile           string          `yaml:"scenario_file"`
	Defaults               Defaults        `yaml:"defaults"`
}

// Default returns the stock 800x600 arena configuration.
func Default() *SimulationConfig {
	p := engine.DefaultParams()
	return &SimulationConfig{
		Arena:           Arena{Width: p.Width, Height: p.Height},
		SensitiveArea:   p.SensitiveArea,
		WarningDistance: p.WarningDistance,
		DiversionZones:  p.Zones,
		Towers:          p.Towers,
		SpawnPadding:    p.SpawnPadding,
		ZoneMode:        p.ZoneMode,
		TickInterval:    16 * time.Millisecond,
		Defaults: Defaults{
			Scenario:  "wifi",
			Drones:    p.DefaultDroneCount,
			Intensity: p.DefaultIntensity,
			Control:   p.DefaultControl,
			Zone:      p.Zones[0].ID,
		},
	}
}

// Load loads YAML config and validates it against a CUE schema. Fields absent
// from the file keep their Default values. An empty schema path skips the CUE
// step.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration",
		"path", configPath,
		"zones", len(cfg.DiversionZones),
		"towers", len(cfg.Towers),
		"drones", cfg.Defaults.Drones)

	return cfg, nil
}

// ApplyEnv overrides settings from the environment. Only TICK_INTERVAL is
// read here; sink settings are resolved by the command layer.
func (c *SimulationConfig) ApplyEnv() error {
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: TICK_INTERVAL: %w", ErrInvalid, err)
		}
		c.TickInterval = d
	}
	return c.Validate()
}

// Validate enforces the ranges the engine expects.
func (c *SimulationConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		bad("arena must have positive size, got %vx%v", c.Arena.Width, c.Arena.Height)
	}
	if c.SensitiveArea.Radius <= 0 {
		bad("sensitive area radius must be positive")
	}
	if c.WarningDistance <= 0 {
		bad("warning distance must be positive")
	}
	if len(c.DiversionZones) == 0 {
		bad("at least one diversion zone is required")
	}
	seen := map[string]bool{}
	for _, z := range c.DiversionZones {
		if z.ID == "" {
			bad("diversion zone %q has no id", z.Name)
			continue
		}
		if seen[z.ID] {
			bad("diversion zone %s defined twice", z.ID)
		}
		seen[z.ID] = true
		if z.Radius <= 0 {
			bad("diversion zone %s radius must be positive", z.ID)
		}
	}
	if c.SpawnPadding < 0 {
		bad("spawn padding must not be negative")
	}
	if !c.ZoneMode.Valid() {
		bad("unknown zone mode %q", c.ZoneMode)
	}
	if c.TickInterval <= 0 {
		bad("tick interval must be positive")
	}
	d := c.Defaults
	if d.Intensity < engine.MinIntensity || d.Intensity > engine.MaxIntensity {
		bad("default intensity %v outside [%d, %d]", d.Intensity, engine.MinIntensity, engine.MaxIntensity)
	}
	if d.Drones < engine.MinDroneCount || d.Drones > engine.MaxDroneCount {
		bad("default drone count %d outside [%d, %d]", d.Drones, engine.MinDroneCount, engine.MaxDroneCount)
	}
	if !d.Control.Valid() {
		bad("unknown control type %q", d.Control)
	}
	if d.Zone != "" && !seen[d.Zone] {
		bad("default zone %q is not a diversion zone", d.Zone)
	}
	return errors.Join(errs...)
}

// Params converts the configuration into the engine's arena definition.
func (c *SimulationConfig) Params() engine.Params {
	p := engine.DefaultParams()
	p.Width = c.Arena.Width
	p.Height = c.Arena.Height
	p.SensitiveArea = c.SensitiveArea
	p.WarningDistance = c.WarningDistance
	p.Zones = append([]engine.Zone(nil), c.DiversionZones...)
	p.Towers = append([]engine.Tower(nil), c.Towers...)
	p.SpawnPadding = c.SpawnPadding
	p.RequireAlertForDefense = c.RequireAlertForDefense
	if c.ZoneMode != "" {
		p.ZoneMode = c.ZoneMode
	}
	p.DefaultIntensity = c.Defaults.Intensity
	p.DefaultDroneCount = c.Defaults.Drones
	p.DefaultControl = c.Defaults.Control
	p.DefaultZone = c.Defaults.Zone
	return p
}
