package engine

import (
	"math"
	"testing"

	"spoofdefense-sim/internal/geom"
)

func TestMoveDroneTowardTarget(t *testing.T) {
	target := Zone{Center: geom.Vec2{X: 100, Y: 0}, Radius: 20}
	d := MoveDrone(Drone{Actual: geom.Vec2{}}, 2, target, 0.5)
	if d.Actual != (geom.Vec2{X: 2, Y: 0}) {
		t.Fatalf("expected drone at (2,0), got %v", d.Actual)
	}
	if d.Velocity != (geom.Vec2{X: 2, Y: 0}) {
		t.Fatalf("unexpected velocity %v", d.Velocity)
	}
	if d.PropellerAngle != 0.5 {
		t.Fatalf("expected propeller to advance, got %f", d.PropellerAngle)
	}
}

func TestMoveDroneHoldsInsideHalfRadius(t *testing.T) {
	target := Zone{Center: geom.Vec2{X: 100, Y: 0}, Radius: 20}
	start := geom.Vec2{X: 95, Y: 0}
	d := MoveDrone(Drone{Actual: start}, 2, target, 0.5)
	if d.Actual != start || d.Velocity != (geom.Vec2{}) {
		t.Fatalf("expected drone to hold, got pos %v vel %v", d.Actual, d.Velocity)
	}
	if d.PropellerAngle == 0 {
		t.Fatalf("propeller should advance while holding")
	}
}

func TestMoveDroneZeroRadiusAtTarget(t *testing.T) {
	target := Zone{Center: geom.Vec2{X: 10, Y: 10}}
	d := MoveDrone(Drone{Actual: geom.Vec2{X: 10, Y: 10.5}}, 1, target, 0)
	if math.IsNaN(d.Actual.X) || math.IsNaN(d.Actual.Y) {
		t.Fatalf("position became NaN")
	}
	if d.Velocity != (geom.Vec2{}) {
		t.Fatalf("expected zero velocity near target, got %v", d.Velocity)
	}
}

func TestMoveDronePropellerWraps(t *testing.T) {
	d := Drone{PropellerAngle: 2*math.Pi - 0.1}
	d = MoveDrone(d, 0, Zone{Radius: 10}, 0.5)
	if d.PropellerAngle < 0 || d.PropellerAngle >= 2*math.Pi {
		t.Fatalf("propeller angle out of range: %f", d.PropellerAngle)
	}
	if math.Abs(d.PropellerAngle-0.4) > 1e-9 {
		t.Fatalf("expected wrapped angle 0.4, got %f", d.PropellerAngle)
	}
}

func TestMoveDroneNeutralizedIsFrozen(t *testing.T) {
	d := Drone{Actual: geom.Vec2{X: 1, Y: 1}, Neutralized: true, PropellerAngle: 1}
	got := MoveDrone(d, 5, Zone{Center: geom.Vec2{X: 100, Y: 100}, Radius: 10}, 0.5)
	if got != d {
		t.Fatalf("neutralized drone changed: %+v", got)
	}
}

func TestSingleDroneConvergesToSensitiveArea(t *testing.T) {
	p := DefaultParams()
	start := geom.Vec2{X: 750, Y: -20}
	s := State{
		Scenario:   &Scenario{ID: "wifi", Speed: 0.6, Altitude: 100},
		Run:        RunRunning,
		Intensity:  50,
		Drones:     []Drone{{ID: "d1", Actual: start, Perceived: start, Control: ControlGPS, Target: p.Zones[0]}},
		Satellites: NewSatellites(p.SatelliteCount),
	}
	stop := p.SensitiveArea.Radius / 2
	prev := geom.Dist(start, p.SensitiveArea.Center)
	held := 0
	for i := 0; i < 2000; i++ {
		s = Advance(s, p)
		d := s.Drones[0]
		dist := geom.Dist(d.Actual, p.SensitiveArea.Center)
		if prev > stop {
			if dist >= prev {
				t.Fatalf("frame %d: distance did not decrease (%f >= %f)", s.Frame, dist, prev)
			}
		} else {
			if dist != prev || d.Velocity != (geom.Vec2{}) {
				t.Fatalf("frame %d: expected drone to hold at %f, got %f", s.Frame, prev, dist)
			}
			held++
		}
		if d.PositionError() != 0 {
			t.Fatalf("frame %d: position error without defense", s.Frame)
		}
		prev = dist
	}
	if held == 0 {
		t.Fatalf("drone never reached the hold radius")
	}
	if prev > stop {
		t.Fatalf("drone ended %f from sensitive area, want <= %f", prev, stop)
	}
	if s.Telemetry.Threat != ThreatCritical {
		t.Fatalf("expected critical threat, got %s", s.Telemetry.Threat)
	}
	if s.Stage != StageDetected {
		t.Fatalf("expected detected stage, got %s", s.Stage)
	}
	if !s.Alert.Show || s.Alert.Message != WarningMessage {
		t.Fatalf("expected warning alert, got %+v", s.Alert)
	}
}
