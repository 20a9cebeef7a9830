package sim

import (
	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.TelemetryRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.TelemetryRow) error
}

// StageWriter handles the per-frame engagement aggregate.
type StageWriter interface {
	WriteStage(telemetry.StageRow) error
}

// EventWriter handles discrete engagement events.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// Optional: writers may support batch mode for events.
type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// SnapshotWriter receives the full engine state after every frame and intent.
type SnapshotWriter interface {
	WriteSnapshot(engine.State) error
}

// AdminStatusWriter is implemented by writers that display whether the admin
// API is listening.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}
