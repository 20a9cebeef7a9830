package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"spoofdefense-sim/internal/telemetry"
)

func gather(t *testing.T, c *Collector, name string) []*dto.Metric {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestCollectorStage(t *testing.T) {
	c := New()
	row := telemetry.StageRow{Stage: "defense_active", Threat: "high", Frame: 12, DefenseActive: true, ClosestDistance: 90, Active: 3, Neutralized: 2, Total: 5}
	if err := c.WriteStage(row); err != nil {
		t.Fatalf("WriteStage: %v", err)
	}

	if m := gather(t, c, "spoofdefense_threat_level"); len(m) != 1 || m[0].GetGauge().GetValue() != 3 {
		t.Fatalf("threat level = %v, want 3", m)
	}
	if m := gather(t, c, "spoofdefense_defense_active"); len(m) != 1 || m[0].GetGauge().GetValue() != 1 {
		t.Fatalf("defense gauge not set")
	}
	stages := gather(t, c, "spoofdefense_stage")
	if len(stages) != 4 {
		t.Fatalf("expected 4 stage series, got %d", len(stages))
	}
	for _, m := range stages {
		want := 0.0
		if labelValue(m, "stage") == "defense_active" {
			want = 1
		}
		if m.GetGauge().GetValue() != want {
			t.Fatalf("stage %s = %v, want %v", labelValue(m, "stage"), m.GetGauge().GetValue(), want)
		}
	}
}

func TestCollectorTelemetryAndEvents(t *testing.T) {
	c := New()
	_ = c.Write(telemetry.TelemetryRow{DroneID: "drone-0", Control: "gps", PositionError: 42})
	_ = c.Write(telemetry.TelemetryRow{DroneID: "drone-1", Control: "sim"})
	_ = c.WriteEvent(telemetry.EventRow{EventType: telemetry.EventNeutralized, DroneIDs: []string{"drone-0", "drone-1"}})

	if m := gather(t, c, "spoofdefense_drone_position_error"); len(m) != 2 {
		t.Fatalf("expected 2 drone series, got %d", len(m))
	}
	if m := gather(t, c, "spoofdefense_neutralizations_total"); len(m) != 1 || m[0].GetCounter().GetValue() != 2 {
		t.Fatalf("neutralizations not counted")
	}

	_ = c.WriteEvent(telemetry.EventRow{EventType: telemetry.EventIntent, Detail: "start"})
	if m := gather(t, c, "spoofdefense_drone_position_error"); len(m) != 0 {
		t.Fatalf("per-drone gauges should reset on start, got %d", len(m))
	}
	events := gather(t, c, "spoofdefense_events_total")
	if len(events) != 2 {
		t.Fatalf("expected 2 event types, got %d", len(events))
	}
}

func TestCollectorHandler(t *testing.T) {
	c := New()
	_ = c.WriteStage(telemetry.StageRow{Stage: "ingress", Threat: "low"})
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `spoofdefense_stage{stage="ingress"} 1`) {
		t.Fatalf("exposition missing stage gauge:\n%s", body)
	}
}
