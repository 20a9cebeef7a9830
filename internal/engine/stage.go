package engine

// Stage is the coarse simulation phase shown to the operator.
type Stage string

const (
	StageIngress       Stage = "ingress"
	StageDetected      Stage = "detected"
	StageDefenseActive Stage = "defense_active"
	StageNeutralized   Stage = "neutralized"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageIngress, StageDetected, StageDefenseActive, StageNeutralized}

// DeriveStage recomputes the stage from the current frame. It keeps no memory
// of earlier stages.
func DeriveStage(allNeutralized, defense bool, threat ThreatLevel, alertShowing bool) Stage {
	switch {
	case allNeutralized:
		return StageNeutralized
	case defense:
		return StageDefenseActive
	case threat >= ThreatHigh || alertShowing:
		return StageDetected
	default:
		return StageIngress
	}
}
