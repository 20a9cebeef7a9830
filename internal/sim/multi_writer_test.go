package sim

import (
	"errors"
	"testing"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/telemetry"
)

// plainWriter only supports telemetry rows.
type plainWriter struct {
	rows []telemetry.TelemetryRow
	err  error
}

func (p *plainWriter) Write(r telemetry.TelemetryRow) error {
	p.rows = append(p.rows, r)
	return p.err
}

// fullWriter supports every optional row kind.
type fullWriter struct {
	plainWriter
	stages    []telemetry.StageRow
	events    []telemetry.EventRow
	snapshots []engine.State
	admin     bool
}

func (f *fullWriter) WriteStage(r telemetry.StageRow) error {
	f.stages = append(f.stages, r)
	return nil
}

func (f *fullWriter) WriteEvent(e telemetry.EventRow) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fullWriter) WriteSnapshot(s engine.State) error {
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fullWriter) SetAdminStatus(listening bool) { f.admin = listening }

func TestMultiWriterDispatchesOptionalRows(t *testing.T) {
	p := &plainWriter{}
	f := &fullWriter{}
	mw := NewMultiWriter(p, nil, f)

	if err := mw.WriteBatch([]telemetry.TelemetryRow{{DroneID: "a"}, {DroneID: "b"}}); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := mw.WriteStage(telemetry.StageRow{Stage: "ingress"}); err != nil {
		t.Fatalf("WriteStage: %v", err)
	}
	if err := mw.WriteEvents([]telemetry.EventRow{{EventType: telemetry.EventAlert}}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if err := mw.WriteSnapshot(engine.State{Frame: 3}); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	mw.SetAdminStatus(true)

	if len(p.rows) != 2 || len(f.rows) != 2 {
		t.Fatalf("telemetry not fanned out: %d/%d", len(p.rows), len(f.rows))
	}
	if len(f.stages) != 1 || len(f.events) != 1 || len(f.snapshots) != 1 {
		t.Fatalf("optional rows not forwarded: %+v", f)
	}
	if !f.admin {
		t.Fatalf("admin status not forwarded")
	}
}

func TestMultiWriterKeepsWritingAfterError(t *testing.T) {
	boom := errors.New("boom")
	bad := &plainWriter{err: boom}
	good := &plainWriter{}
	mw := NewMultiWriter(bad, good)

	err := mw.Write(telemetry.TelemetryRow{DroneID: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(good.rows) != 1 {
		t.Fatalf("second writer skipped after first failed")
	}
}
