package engine

import (
	"spoofdefense-sim/internal/geom"
)

// MoveDrone advances d one frame toward target at the given speed. The drone
// holds position once it is within half the target radius. The propeller phase
// advances regardless of motion.
func MoveDrone(d Drone, speed float64, target Zone, propStep float64) Drone {
	if d.Neutralized {
		return d
	}
	dir, mag := geom.Normalize(target.Center.Sub(d.Actual))
	d.Velocity = geom.Vec2{}
	if mag > target.Radius/2 {
		d.Velocity = dir.Scale(speed)
	}
	d.Actual = d.Actual.Add(d.Velocity)
	d.PropellerAngle = geom.WrapAngle(d.PropellerAngle + propStep)
	return d
}

// kinematicTarget is the sensitive area until defense activates, then the
// drone's diversion zone.
func kinematicTarget(d Drone, p Params, defense bool) Zone {
	if defense {
		return d.Target
	}
	return p.SensitiveArea
}
