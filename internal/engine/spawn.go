package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"spoofdefense-sim/internal/geom"
)

// Rand is the randomness consumed at run start. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// perimeterPoint picks a uniformly random edge and a uniform position along
// it, pushed outward by padding.
func perimeterPoint(rnd Rand, p Params) geom.Vec2 {
	switch rnd.Intn(4) {
	case 0: // top
		return geom.Vec2{X: rnd.Float64() * p.Width, Y: -p.SpawnPadding}
	case 1: // right
		return geom.Vec2{X: p.Width + p.SpawnPadding, Y: rnd.Float64() * p.Height}
	case 2: // bottom
		return geom.Vec2{X: rnd.Float64() * p.Width, Y: p.Height + p.SpawnPadding}
	default: // left
		return geom.Vec2{X: -p.SpawnPadding, Y: rnd.Float64() * p.Height}
	}
}

// SpawnDrones creates count drones on the arena perimeter. In auto zone mode
// zones are assigned round-robin; otherwise every drone takes selected.
// Positions are drawn before IDs, both from rnd.
func SpawnDrones(rnd Rand, p Params, count int, control ControlType, selected Zone) []Drone {
	drones := make([]Drone, count)
	for i := range drones {
		pos := perimeterPoint(rnd, p)
		drones[i] = Drone{
			Actual:    pos,
			Perceived: pos,
			Control:   control,
			Target:    selected,
		}
	}
	ids := randReader{rnd}
	for i := range drones {
		drones[i].ID = generateDroneID(ids, i)
	}
	if p.AutoZones(count) {
		AssignZones(drones, p.Zones)
	}
	return drones
}

// NewSatellites lays out n satellites at evenly spaced phases.
func NewSatellites(n int) []Satellite {
	sats := make([]Satellite, n)
	for i := range sats {
		sats[i] = Satellite{
			Angle:       float64(i) * math.Pi / 2,
			OrbitRadius: 250 + float64(i)*20,
		}
	}
	return sats
}

// randReader turns a Rand into a byte stream so UUIDs replay with the seed.
type randReader struct{ rnd Rand }

func (r randReader) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = byte(r.rnd.Intn(256))
	}
	return len(b), nil
}

func generateDroneID(r io.Reader, index int) string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		id = uuid.New()
	}
	return fmt.Sprintf("drone-%02d-%s", index, id.String()[:8])
}
