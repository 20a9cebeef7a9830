package telemetry

import "time"

const (
	EventIntent      = "intent"
	EventAlert       = "alert"
	EventNeutralized = "neutralized"
	EventStage       = "stage_change"
	EventComplete    = "run_complete"
)

// EventRow represents a discrete engagement event.
type EventRow struct {
	RunID     string    `json:"run_id"`
	EventType string    `json:"event_type"`
	DroneIDs  []string  `json:"drone_ids,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Frame     uint64    `json:"frame"`
	Timestamp time.Time `json:"ts"`
}
