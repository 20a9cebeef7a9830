package engine

import "spoofdefense-sim/internal/geom"

// Limits for operator-controlled inputs.
const (
	MinIntensity  = 0
	MaxIntensity  = 100
	MinDroneCount = 1
	MaxDroneCount = 20
)

// ZoneMode decides how drones get their diversion zone.
type ZoneMode string

const (
	// ZoneModeSwarm is auto for swarms and manual for a single drone.
	ZoneModeSwarm ZoneMode = "swarm"
	// ZoneModeAuto assigns zones round-robin and re-targets to the nearest one.
	ZoneModeAuto ZoneMode = "auto"
	// ZoneModeManual sends every drone to the operator-selected zone.
	ZoneModeManual ZoneMode = "manual"
)

// Valid reports whether m is a known mode. Empty means ZoneModeSwarm.
func (m ZoneMode) Valid() bool {
	switch m {
	case "", ZoneModeSwarm, ZoneModeAuto, ZoneModeManual:
		return true
	}
	return false
}

// Params is the static arena definition. It is immutable for the lifetime of
// an Engine.
type Params struct {
	Width           float64
	Height          float64
	SensitiveArea   Zone
	WarningDistance float64
	Zones           []Zone
	Towers          []Tower
	SpawnPadding    float64
	PropellerStep   float64
	SatelliteStep   float64
	SatelliteCount  int
	// RequireAlertForDefense only allows defense activation while an alert shows.
	RequireAlertForDefense bool
	ZoneMode               ZoneMode

	DefaultIntensity  float64
	DefaultDroneCount int
	DefaultControl    ControlType
	// DefaultZone is the diversion zone selected before the operator picks
	// one. Empty selects the first zone.
	DefaultZone string
}

// DefaultParams returns the stock 800x600 arena.
func DefaultParams() Params {
	return Params{
		Width:           800,
		Height:          600,
		SensitiveArea:   Zone{ID: "sensitive", Name: "Sensitive Area", Center: geom.Vec2{X: 400, Y: 300}, Radius: 80},
		WarningDistance: 200,
		Zones: []Zone{
			{ID: "alpha", Name: "Safe Zone Alpha", Center: geom.Vec2{X: 640, Y: 480}, Radius: 60},
			{ID: "bravo", Name: "Safe Zone Bravo", Center: geom.Vec2{X: 160, Y: 480}, Radius: 60},
			{ID: "charlie", Name: "Safe Zone Charlie", Center: geom.Vec2{X: 680, Y: 120}, Radius: 60},
		},
		Towers: []Tower{
			{ID: "tower-nw", Pos: geom.Vec2{X: 100, Y: 100}},
			{ID: "tower-ne", Pos: geom.Vec2{X: 700, Y: 80}},
			{ID: "tower-sw", Pos: geom.Vec2{X: 80, Y: 540}},
			{ID: "tower-se", Pos: geom.Vec2{X: 720, Y: 560}},
		},
		SpawnPadding:      20,
		PropellerStep:     0.5,
		SatelliteStep:     0.005,
		SatelliteCount:    4,
		ZoneMode:          ZoneModeSwarm,
		DefaultIntensity:  50,
		DefaultDroneCount: 5,
		DefaultControl:    ControlGPS,
	}
}

// Zone returns the diversion zone with the given id.
func (p Params) Zone(id string) (Zone, bool) {
	for _, z := range p.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// AutoZones reports whether a swarm of n drones is assigned and re-targeted
// automatically.
func (p Params) AutoZones(n int) bool {
	switch p.ZoneMode {
	case ZoneModeAuto:
		return true
	case ZoneModeManual:
		return false
	}
	return n > 1
}

// ClampIntensity bounds v to [MinIntensity, MaxIntensity].
func ClampIntensity(v float64) float64 {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

// ClampDroneCount bounds n to [MinDroneCount, MaxDroneCount].
func ClampDroneCount(n int) int {
	if n < MinDroneCount {
		return MinDroneCount
	}
	if n > MaxDroneCount {
		return MaxDroneCount
	}
	return n
}
