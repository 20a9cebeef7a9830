package engine

import "spoofdefense-sim/internal/geom"

// spoofGain converts the operator intensity into the per-frame bias factor.
const spoofGain = 0.01 * 2

// SpoofPerceived returns the drone's perceived position after a move from
// prevActual to d.Actual. Without an active, applicable defense the perceived
// position snaps to the actual position. Otherwise it follows the true
// displacement plus a bias toward the diversion zone scaled by intensity.
func SpoofPerceived(d Drone, prevActual, prevPerceived geom.Vec2, defense bool, intensity float64) geom.Vec2 {
	if !defense || !d.Control.Spoofable() {
		return d.Actual
	}
	moved := d.Actual.Sub(prevActual)
	bias := d.Target.Center.Sub(d.Actual).Scale(spoofGain * ClampIntensity(intensity) / 100)
	return prevPerceived.Add(moved).Add(bias)
}
