package sim

import (
	"errors"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/telemetry"
)

// MultiWriter fan-outs telemetry, stage, event and snapshot rows to multiple
// writers. Each optional row kind only reaches the writers that support it.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(ws ...TelemetryWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Write sends a telemetry row to all writers.
func (mw *MultiWriter) Write(row telemetry.TelemetryRow) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple telemetry rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	var errs []error
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// WriteStage sends a stage row to every stage writer.
func (mw *MultiWriter) WriteStage(row telemetry.StageRow) error {
	var errs []error
	for _, w := range mw.writers {
		if sw, ok := w.(StageWriter); ok {
			if err := sw.WriteStage(row); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event row to every event writer.
func (mw *MultiWriter) WriteEvent(e telemetry.EventRow) error {
	return mw.WriteEvents([]telemetry.EventRow{e})
}

// WriteEvents sends multiple events to every event writer, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.writers {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		ew, ok := w.(EventWriter)
		if !ok {
			continue
		}
		for _, r := range rows {
			if err := ew.WriteEvent(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// WriteSnapshot sends the engine state to every snapshot writer.
func (mw *MultiWriter) WriteSnapshot(s engine.State) error {
	var errs []error
	for _, w := range mw.writers {
		if sw, ok := w.(SnapshotWriter); ok {
			if err := sw.WriteSnapshot(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// SetAdminStatus forwards admin API status to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.writers {
		if aw, ok := w.(AdminStatusWriter); ok {
			aw.SetAdminStatus(listening)
		}
	}
}
