package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"spoofdefense-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	tables []*table.Table
	err    error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.tables = append(m.tables, tables...)
	if m.err != nil {
		return nil, m.err
	}
	return &gpb.GreptimeResponse{}, nil
}

func columnIndex(t *testing.T, rows *gpb.Rows, name string) int {
	t.Helper()
	for i, c := range rows.Schema {
		if c.ColumnName == name {
			return i
		}
	}
	t.Fatalf("column %s not found", name)
	return -1
}

func TestGreptimeWriterTelemetry(t *testing.T) {
	ts := time.Unix(10, 0).UTC()
	rows := []telemetry.TelemetryRow{
		{RunID: "r1", DroneID: "drone-0", Scenario: "wifi", Control: "gps", Frame: 7, X: 1, Y: 2, PerceivedX: 3, PerceivedY: 4, PositionError: 2.8, Target: "alpha", Timestamp: ts},
		{RunID: "r1", DroneID: "drone-1", Scenario: "wifi", Control: "gps", Frame: 7, Neutralized: true, Target: "bravo", Timestamp: ts},
	}
	m := &mockGreptimeClient{}
	w := newGreptimeDBWriter(m)

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(m.tables))
	}
	got := m.tables[0].GetRows()
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	idx := columnIndex(t, got, "drone_id")
	if got.Schema[idx].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("drone_id should be a tag")
	}
	if v := got.Rows[1].Values[idx].GetStringValue(); v != "drone-1" {
		t.Fatalf("drone_id = %s, want drone-1", v)
	}
	frame := columnIndex(t, got, "frame")
	if v := got.Rows[0].Values[frame].GetI64Value(); v != 7 {
		t.Fatalf("frame = %d, want 7", v)
	}
	perr := columnIndex(t, got, "position_error")
	if v := got.Rows[0].Values[perr].GetF64Value(); v != 2.8 {
		t.Fatalf("position_error = %v, want 2.8", v)
	}
	neut := columnIndex(t, got, "neutralized")
	if !got.Rows[1].Values[neut].GetBoolValue() {
		t.Fatalf("neutralized flag lost")
	}
}

func TestGreptimeWriterEventsJSON(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.EventRow{
		{RunID: "r1", EventType: telemetry.EventNeutralized, DroneIDs: []string{"d1", "d2"}, Frame: 3, Timestamp: ts},
		{RunID: "r1", EventType: telemetry.EventIntent, Detail: "start", Timestamp: ts},
	}
	m := &mockGreptimeClient{}
	w := newGreptimeDBWriter(m)

	if err := w.WriteEvents(rows); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	got := m.tables[0].GetRows()
	idx := columnIndex(t, got, "drone_ids")
	if got.Schema[idx].Datatype != gpb.ColumnDataType_STRING {
		t.Fatalf("drone_ids column type = %v", got.Schema[idx].Datatype)
	}
	if v := got.Rows[0].Values[idx].GetStringValue(); v != `["d1","d2"]` {
		t.Fatalf("drone_ids = %s", v)
	}
	if v := got.Rows[1].Values[idx].GetStringValue(); v != `[]` {
		t.Fatalf("empty drone_ids = %s, want []", v)
	}
}

func TestGreptimeWriterStage(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newGreptimeDBWriter(m)
	row := telemetry.StageRow{RunID: "r1", Stage: "detected", Threat: "high", Active: 4, Total: 5, Timestamp: time.Unix(0, 0)}
	if err := w.WriteStage(row); err != nil {
		t.Fatalf("WriteStage: %v", err)
	}
	got := m.tables[0].GetRows()
	if v := got.Rows[0].Values[columnIndex(t, got, "threat")].GetStringValue(); v != "high" {
		t.Fatalf("threat = %s, want high", v)
	}
	if v := got.Rows[0].Values[columnIndex(t, got, "active")].GetI64Value(); v != 4 {
		t.Fatalf("active = %d, want 4", v)
	}
}

func TestGreptimeWriterPropagatesErrors(t *testing.T) {
	boom := errors.New("unavailable")
	w := newGreptimeDBWriter(&mockGreptimeClient{err: boom})
	if err := w.Write(telemetry.TelemetryRow{DroneID: "d"}); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{"localhost", "localhost", defaultGreptimePort, false},
		{"db.example:4101", "db.example", 4101, false},
		{"db.example:grpc", "", 0, true},
	}
	for _, tc := range cases {
		host, port, err := splitEndpoint(tc.in)
		if (err != nil) != tc.err {
			t.Fatalf("%s: err = %v", tc.in, err)
		}
		if !tc.err && (host != tc.host || port != tc.port) {
			t.Fatalf("%s: got %s:%d", tc.in, host, port)
		}
	}
}
