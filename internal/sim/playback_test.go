package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spoofdefense-sim/internal/telemetry"
)

type collectWriter struct{ rows []telemetry.TelemetryRow }

func (c *collectWriter) Write(r telemetry.TelemetryRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.TelemetryRow{
		{RunID: "r1", DroneID: "d1", Frame: 1, Timestamp: time.Unix(0, 0)},
		{RunID: "r1", DroneID: "d2", Frame: 2, Timestamp: time.Unix(0, int64(10*time.Millisecond))},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	n, err := ReplayLog(context.Background(), &buf, cw, 100)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != len(rows) || len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d/%d", len(rows), n, len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].DroneID != r.DroneID || cw.rows[i].Frame != r.Frame {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogStopsOnCancel(t *testing.T) {
	log := `{"drone_id":"d1","ts":"2025-01-01T00:00:00Z"}
{"drone_id":"d2","ts":"2025-01-01T01:00:00Z"}
`
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw := &collectWriter{}
	n, err := ReplayLog(ctx, strings.NewReader(log), cw, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row before cancel, got %d", n)
	}
}

func TestReplayLogFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	fw, err := NewFileWriter(path, "", "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteBatch([]telemetry.TelemetryRow{{DroneID: "a"}, {DroneID: "b"}, {DroneID: "c"}}); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	fw.Close()

	cw := &collectWriter{}
	n, err := ReplayLogFile(context.Background(), path, cw, 0)
	if err != nil || n != 3 {
		t.Fatalf("ReplayLogFile = %d, %v", n, err)
	}
	if _, err := ReplayLogFile(context.Background(), filepath.Join(t.TempDir(), "nope"), cw, 0); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
