package telemetry

import (
	"time"

	"spoofdefense-sim/internal/engine"
)

// Generator turns engine snapshots into rows for a single run.
type Generator struct {
	RunID string
}

// NewGenerator creates a new row generator for a given run.
func NewGenerator(runID string) *Generator {
	return &Generator{RunID: runID}
}

// Telemetry returns one row per drone in s.
func (g *Generator) Telemetry(s engine.State, ts time.Time) []TelemetryRow {
	rows := make([]TelemetryRow, 0, len(s.Drones))
	scenario := scenarioID(s)
	for _, d := range s.Drones {
		rows = append(rows, TelemetryRow{
			RunID:         g.RunID,
			DroneID:       d.ID,
			Scenario:      scenario,
			Control:       string(d.Control),
			Frame:         s.Frame,
			X:             d.Actual.X,
			Y:             d.Actual.Y,
			PerceivedX:    d.Perceived.X,
			PerceivedY:    d.Perceived.Y,
			PositionError: d.PositionError(),
			Target:        d.Target.ID,
			Neutralized:   d.Neutralized,
			LinkTower:     d.LinkTower,
			Timestamp:     ts,
		})
	}
	return rows
}

// Stage returns the aggregate row for s.
func (g *Generator) Stage(s engine.State, ts time.Time) StageRow {
	t := s.Telemetry
	return StageRow{
		RunID:            g.RunID,
		Scenario:         scenarioID(s),
		Run:              string(s.Run),
		Stage:            string(s.Stage),
		Frame:            s.Frame,
		DefenseActive:    s.DefenseActive,
		Intensity:        s.Intensity,
		ClosestDistance:  t.ClosestDistance,
		Altitude:         t.Altitude,
		MaxPositionError: t.MaxPositionError,
		Threat:           t.Threat.String(),
		Active:           t.Active,
		Neutralized:      t.Neutralized,
		Total:            t.Total,
		Timestamp:        ts,
	}
}

// Intent returns an event recording an accepted operator intent.
func (g *Generator) Intent(s engine.State, name string, ts time.Time) EventRow {
	return EventRow{RunID: g.RunID, EventType: EventIntent, Detail: name, Frame: s.Frame, Timestamp: ts}
}

// Events compares two consecutive snapshots and reports what changed:
// newly neutralized drones, a newly shown alert, a stage change and run
// completion, in that order.
func (g *Generator) Events(prev, cur engine.State, ts time.Time) []EventRow {
	var out []EventRow
	ev := func(typ, detail string, ids []string) {
		out = append(out, EventRow{
			RunID:     g.RunID,
			EventType: typ,
			DroneIDs:  ids,
			Detail:    detail,
			Frame:     cur.Frame,
			Timestamp: ts,
		})
	}

	was := make(map[string]bool, len(prev.Drones))
	for _, d := range prev.Drones {
		was[d.ID] = d.Neutralized
	}
	var ids []string
	for _, d := range cur.Drones {
		if d.Neutralized && !was[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	if len(ids) > 0 {
		ev(EventNeutralized, "", ids)
	}
	if cur.Alert.Show && (!prev.Alert.Show || prev.Alert.Message != cur.Alert.Message) {
		ev(EventAlert, cur.Alert.Message, nil)
	}
	if cur.Stage != prev.Stage {
		ev(EventStage, string(prev.Stage)+" -> "+string(cur.Stage), nil)
	}
	if cur.Run == engine.RunComplete && prev.Run != engine.RunComplete {
		ev(EventComplete, "", nil)
	}
	return out
}

func scenarioID(s engine.State) string {
	if s.Scenario == nil {
		return ""
	}
	return s.Scenario.ID
}
