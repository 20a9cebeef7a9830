// 2D vector primitives for the simulation arena
package geom

import "math"

// Vec2 is a point or displacement in arena units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean magnitude of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec2) float64 { return b.Sub(a).Len() }

// Normalize returns the unit vector of v and its magnitude. Magnitudes below 1
// are treated as arrival and yield the zero vector.
func Normalize(v Vec2) (Vec2, float64) {
	mag := v.Len()
	if mag < 1 {
		return Vec2{}, mag
	}
	return Vec2{X: v.X / mag, Y: v.Y / mag}, mag
}

// Nearest returns the index of the point closest to p. The first point wins
// ties. ok is false when points is empty.
func Nearest(p Vec2, points []Vec2) (idx int, ok bool) {
	if len(points) == 0 {
		return -1, false
	}
	idx = 0
	best := Dist(p, points[0])
	for i := 1; i < len(points); i++ {
		if d := Dist(p, points[i]); d < best {
			best = d
			idx = i
		}
	}
	return idx, true
}

// WrapAngle maps a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
