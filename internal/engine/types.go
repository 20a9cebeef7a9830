// Package engine advances drones, spoofing and threat state one frame at a time.
//
// The engine owns no timers and performs no I/O. A driver calls Tick once per
// frame while the run is running and reads Snapshot for rendering or export.
package engine

import (
	"spoofdefense-sim/internal/geom"
)

// Zone is a circular area of the arena: the sensitive area or a diversion zone.
type Zone struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Center geom.Vec2 `json:"center" yaml:"center"`
	Radius float64   `json:"radius" yaml:"radius"`
}

// Tower is a cellular tower position. Towers carry no radius.
type Tower struct {
	ID  string    `json:"id" yaml:"id"`
	Pos geom.Vec2 `json:"pos" yaml:"pos"`
}

// Scenario holds the profile values the engine consumes.
type Scenario struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Speed    float64 `json:"speed"`
	Altitude float64 `json:"altitude"`
}

// ControlType is the guidance channel a drone relies on.
type ControlType string

const (
	ControlGPS ControlType = "gps"
	ControlSIM ControlType = "sim"
)

// Spoofable reports whether perceived-position spoofing applies to the channel.
func (c ControlType) Spoofable() bool { return c == ControlGPS }

// Valid reports whether c is a known control type.
func (c ControlType) Valid() bool { return c == ControlGPS || c == ControlSIM }

// Drone is the per-drone simulation state.
type Drone struct {
	ID             string      `json:"id"`
	Actual         geom.Vec2   `json:"actual"`
	Perceived      geom.Vec2   `json:"perceived"`
	Velocity       geom.Vec2   `json:"velocity"`
	PropellerAngle float64     `json:"propeller_angle"`
	Control        ControlType `json:"control"`
	Target         Zone        `json:"target"`
	Neutralized    bool        `json:"neutralized"`
	// LinkTower is the nearest tower for cellular drones. Presentation only.
	LinkTower string `json:"link_tower,omitempty"`
}

// PositionError is the distance between actual and perceived positions.
func (d Drone) PositionError() float64 { return geom.Dist(d.Actual, d.Perceived) }

// Satellite is a cosmetic orbital phase.
type Satellite struct {
	Angle       float64 `json:"angle"`
	OrbitRadius float64 `json:"orbit_radius"`
}

// Alert is the operator-facing banner.
type Alert struct {
	Show    bool   `json:"show"`
	Message string `json:"message"`
}

// Alert messages.
const (
	WarningMessage = "WARNING: DRONE APPROACHING SENSITIVE AREA"
	SuccessMessage = "SUCCESS: ALL THREATS NEUTRALIZED"
)

// RunState is the driver-facing lifecycle of a run.
type RunState string

const (
	RunIdle     RunState = "idle"
	RunRunning  RunState = "running"
	RunPaused   RunState = "paused"
	RunComplete RunState = "complete"
)

// Telemetry aggregates the active drones after each frame.
type Telemetry struct {
	ClosestDistance  float64     `json:"closest_distance"`
	Altitude         float64     `json:"altitude"`
	MaxPositionError float64     `json:"max_position_error"`
	Threat           ThreatLevel `json:"threat"`
	Active           int         `json:"active"`
	Neutralized      int         `json:"neutralized"`
	Total            int         `json:"total"`
}

// State is the complete simulation aggregate.
type State struct {
	Scenario      *Scenario   `json:"scenario,omitempty"`
	Run           RunState    `json:"run"`
	Frame         uint64      `json:"frame"`
	DefenseActive bool        `json:"defense_active"`
	Intensity     float64     `json:"intensity"`
	DroneCount    int         `json:"drone_count"`
	Control       ControlType `json:"control"`
	SelectedZone  Zone        `json:"selected_zone"`
	Drones        []Drone     `json:"drones"`
	Satellites    []Satellite `json:"satellites"`
	Telemetry     Telemetry   `json:"telemetry"`
	Stage         Stage       `json:"stage"`
	Alert         Alert       `json:"alert"`
	// Warned records that the one-shot warning already fired this run.
	Warned bool `json:"warned"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.Scenario != nil {
		sc := *s.Scenario
		out.Scenario = &sc
	}
	out.Drones = append([]Drone(nil), s.Drones...)
	out.Satellites = append([]Satellite(nil), s.Satellites...)
	return out
}
