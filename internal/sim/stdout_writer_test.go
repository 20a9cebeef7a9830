package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"spoofdefense-sim/internal/config"
	"spoofdefense-sim/internal/telemetry"
)

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	ts := time.Unix(0, 0).UTC()
	if err := w.WriteBatch([]telemetry.TelemetryRow{{DroneID: "d1", Timestamp: ts}}); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := w.WriteStage(telemetry.StageRow{Stage: "ingress", Timestamp: ts}); err != nil {
		t.Fatalf("WriteStage: %v", err)
	}
	if err := w.WriteEvent(telemetry.EventRow{EventType: telemetry.EventAlert, Timestamp: ts}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	kinds := []string{"telemetry", "stage", "event"}
	for i, line := range lines {
		var env struct {
			Kind string          `json:"kind"`
			Row  json.RawMessage `json:"row"`
		}
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if env.Kind != kinds[i] {
			t.Fatalf("line %d kind = %s, want %s", i, env.Kind, kinds[i])
		}
	}
}

func TestColorStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewColorStdoutWriter(config.Default())
	w.out = &buf
	ts := time.Unix(0, 0).UTC()

	_ = w.Write(telemetry.TelemetryRow{DroneID: "drone-3", Control: "sim", LinkTower: "tower-nw", Timestamp: ts})
	stage := telemetry.StageRow{Stage: "detected", Threat: "high", Active: 2, Total: 3, Timestamp: ts}
	_ = w.WriteStage(stage)
	_ = w.WriteStage(stage)
	_ = w.WriteEvent(telemetry.EventRow{EventType: telemetry.EventNeutralized, DroneIDs: []string{"drone-3"}, Timestamp: ts})

	out := buf.String()
	for _, want := range []string{"Simulation Configuration:", "alpha", "drone-3", "tower=tower-nw", "stage=detected", "EVENT", "neutralized"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "STAGE"); n != 1 {
		t.Fatalf("unchanged stage printed %d times", n)
	}
	if n := strings.Count(out, "Simulation Configuration:"); n != 1 {
		t.Fatalf("overview printed %d times", n)
	}
}
