package engine

import "fmt"

// ThreatLevel is an ordered severity. The zero value is ThreatNone.
type ThreatLevel int

const (
	ThreatNone ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

var threatNames = [...]string{"none", "low", "medium", "high", "critical"}

func (t ThreatLevel) String() string {
	if t < ThreatNone || t > ThreatCritical {
		return fmt.Sprintf("threat(%d)", int(t))
	}
	return threatNames[t]
}

// MarshalText encodes the level by name.
func (t ThreatLevel) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a level name.
func (t *ThreatLevel) UnmarshalText(b []byte) error {
	for i, n := range threatNames {
		if n == string(b) {
			*t = ThreatLevel(i)
			return nil
		}
	}
	return fmt.Errorf("unknown threat level %q", b)
}

// Classify maps a distance to the sensitive area onto a severity. Thresholds
// are checked in ascending order and the last one satisfied wins.
func Classify(dist, warning, radius float64) ThreatLevel {
	level := ThreatNone
	if dist < warning*1.5 {
		level = ThreatLow
	}
	if dist < warning {
		level = ThreatMedium
	}
	if dist < radius*1.5 {
		level = ThreatHigh
	}
	if dist < radius {
		level = ThreatCritical
	}
	return level
}

// MaxThreat returns the highest level in levels, or ThreatNone when empty.
func MaxThreat(levels ...ThreatLevel) ThreatLevel {
	top := ThreatNone
	for _, l := range levels {
		if l > top {
			top = l
		}
	}
	return top
}
