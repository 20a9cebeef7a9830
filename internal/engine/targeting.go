package engine

import "spoofdefense-sim/internal/geom"

// NearestZone returns the zone closest to p. The first zone wins ties; ok is
// false when zones is empty.
func NearestZone(p geom.Vec2, zones []Zone) (Zone, bool) {
	centers := make([]geom.Vec2, len(zones))
	for i, z := range zones {
		centers[i] = z.Center
	}
	idx, ok := geom.Nearest(p, centers)
	if !ok {
		return Zone{}, false
	}
	return zones[idx], true
}

// Retarget switches d to the nearest diversion zone when that zone is strictly
// closer than the current target.
func Retarget(d Drone, zones []Zone) Drone {
	z, ok := NearestZone(d.Actual, zones)
	if !ok || z.ID == d.Target.ID {
		return d
	}
	if geom.Dist(d.Actual, z.Center) < geom.Dist(d.Actual, d.Target.Center) {
		d.Target = z
	}
	return d
}

// Inside reports whether p lies strictly within z.
func Inside(p geom.Vec2, z Zone) bool {
	return geom.Dist(p, z.Center) < z.Radius
}

// AssignZones pre-assigns diversion zones round-robin over zones.
func AssignZones(drones []Drone, zones []Zone) {
	if len(zones) == 0 {
		return
	}
	for i := range drones {
		drones[i].Target = zones[i%len(zones)]
	}
}

// linkTower returns the id of the tower closest to p.
func linkTower(p geom.Vec2, towers []Tower) string {
	pts := make([]geom.Vec2, len(towers))
	for i, t := range towers {
		pts[i] = t.Pos
	}
	idx, ok := geom.Nearest(p, pts)
	if !ok {
		return ""
	}
	return towers[idx].ID
}
