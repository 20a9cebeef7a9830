// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// TelemetryRow represents one drone at one frame.
type TelemetryRow struct {
	RunID         string    `json:"run_id"`               // TAG
	DroneID       string    `json:"drone_id"`             // TAG
	Scenario      string    `json:"scenario"`             // TAG
	Control       string    `json:"control"`              // FIELD
	Frame         uint64    `json:"frame"`                // FIELD
	X             float64   `json:"x"`                    // FIELD
	Y             float64   `json:"y"`                    // FIELD
	PerceivedX    float64   `json:"perceived_x"`          // FIELD
	PerceivedY    float64   `json:"perceived_y"`          // FIELD
	PositionError float64   `json:"position_error"`       // FIELD
	Target        string    `json:"target"`               // FIELD
	Neutralized   bool      `json:"neutralized"`          // FIELD
	LinkTower     string    `json:"link_tower,omitempty"` // FIELD
	Timestamp     time.Time `json:"ts"`                   // TIME INDEX
}

// StageRow captures the per-frame engagement aggregate.
type StageRow struct {
	RunID            string    `json:"run_id"`
	Scenario         string    `json:"scenario"`
	Run              string    `json:"run"`
	Stage            string    `json:"stage"`
	Frame            uint64    `json:"frame"`
	DefenseActive    bool      `json:"defense_active"`
	Intensity        float64   `json:"intensity"`
	ClosestDistance  float64   `json:"closest_distance"`
	Altitude         float64   `json:"altitude"`
	MaxPositionError float64   `json:"max_position_error"`
	Threat           string    `json:"threat"`
	Active           int       `json:"active"`
	Neutralized      int       `json:"neutralized"`
	Total            int       `json:"total"`
	Timestamp        time.Time `json:"ts"`
}

// TablePrefix is prepended to every GreptimeDB table name. It can be set via
// the GREPTIMEDB_TABLE_PREFIX environment variable.
var TablePrefix = os.Getenv("GREPTIMEDB_TABLE_PREFIX")

func (TelemetryRow) TableName() string { return TablePrefix + "drone_telemetry" }

func (StageRow) TableName() string { return TablePrefix + "engagement_state" }

func (EventRow) TableName() string { return TablePrefix + "engagement_events" }
