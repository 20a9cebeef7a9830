package engine

import (
	"math"

	"spoofdefense-sim/internal/geom"
)

// Advance computes the next frame from s. It never mutates s. Frames are only
// produced while the run is running with a scenario selected.
func Advance(s State, p Params) State {
	if s.Run != RunRunning || s.Scenario == nil {
		return s
	}
	next := s.Clone()
	next.Frame++
	auto := p.AutoZones(len(next.Drones))
	for i, d := range next.Drones {
		next.Drones[i] = stepDrone(d, p, s.Scenario.Speed, s.DefenseActive, s.Intensity, auto)
	}
	for i := range next.Satellites {
		next.Satellites[i].Angle = geom.WrapAngle(next.Satellites[i].Angle + p.SatelliteStep)
	}
	return Aggregate(next, p)
}

func stepDrone(d Drone, p Params, speed float64, defense bool, intensity float64, auto bool) Drone {
	if d.Neutralized {
		return d
	}
	if defense && auto {
		d = Retarget(d, p.Zones)
	}
	prevActual, prevPerceived := d.Actual, d.Perceived
	d = MoveDrone(d, speed, kinematicTarget(d, p, defense), p.PropellerStep)
	d.Perceived = SpoofPerceived(d, prevActual, prevPerceived, defense, intensity)
	if d.Control == ControlSIM {
		d.LinkTower = linkTower(d.Actual, p.Towers)
	}
	if defense && Inside(d.Actual, d.Target) {
		d.Neutralized = true
		d.Velocity = geom.Vec2{}
	}
	return d
}

// Aggregate recomputes telemetry, alert and stage from the drones in s.
// Completing the run halts further frames.
func Aggregate(s State, p Params) State {
	tel := Telemetry{Total: len(s.Drones)}
	levels := make([]ThreatLevel, 0, len(s.Drones))
	closest := math.Inf(1)
	warn := false
	if s.Scenario != nil {
		tel.Altitude = s.Scenario.Altitude
	}
	for _, d := range s.Drones {
		if d.Neutralized {
			tel.Neutralized++
			continue
		}
		tel.Active++
		dist := geom.Dist(d.Actual, p.SensitiveArea.Center)
		closest = math.Min(closest, dist)
		tel.MaxPositionError = math.Max(tel.MaxPositionError, d.PositionError())
		levels = append(levels, Classify(dist, p.WarningDistance, p.SensitiveArea.Radius))
		if dist < p.WarningDistance {
			warn = true
		}
	}
	if tel.Active > 0 {
		tel.ClosestDistance = closest
	}
	tel.Threat = MaxThreat(levels...)
	s.Telemetry = tel

	if warn && !s.DefenseActive && !s.Alert.Show && !s.Warned {
		s.Alert = Alert{Show: true, Message: WarningMessage}
		s.Warned = true
	}

	allNeutralized := tel.Total > 0 && tel.Neutralized == tel.Total
	if allNeutralized && s.Run != RunComplete {
		s.Run = RunComplete
		s.Alert = Alert{Show: true, Message: SuccessMessage}
	}
	s.Stage = DeriveStage(allNeutralized, s.DefenseActive, tel.Threat, s.Alert.Show)
	return s
}
