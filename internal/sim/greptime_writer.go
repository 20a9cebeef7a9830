package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"spoofdefense-sim/internal/telemetry"
)

const (
	defaultGreptimePort = 4001
	greptimeTimeout     = 5 * time.Second
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes telemetry, stage and event rows to GreptimeDB via
// the ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client         greptimeClient
	telemetryTable string
	stageTable     string
	eventTable     string
	logger         *slog.Logger
}

// NewGreptimeDBWriter connects to the gRPC endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return newGreptimeDBWriter(client), nil
}

func newGreptimeDBWriter(client greptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:         client,
		telemetryTable: telemetry.TelemetryRow{}.TableName(),
		stageTable:     telemetry.StageRow{}.TableName(),
		eventTable:     telemetry.EventRow{}.TableName(),
		logger:         slog.Default().With("writer", "greptimedb"),
	}
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptime endpoint %q: invalid port: %w", endpoint, err)
	}
	return host, port, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, rows int) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger.Error("write failed", "table", name, "err", err)
		return err
	}
	w.logger.Debug("wrote rows", "table", name, "rows", rows)
	return nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.telemetryTable)
	if err != nil {
		return err
	}
	if err := errors.Join(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("drone_id", types.STRING),
		tbl.AddTagColumn("scenario", types.STRING),
		tbl.AddFieldColumn("control", types.STRING),
		tbl.AddFieldColumn("frame", types.INT64),
		tbl.AddFieldColumn("x", types.FLOAT64),
		tbl.AddFieldColumn("y", types.FLOAT64),
		tbl.AddFieldColumn("perceived_x", types.FLOAT64),
		tbl.AddFieldColumn("perceived_y", types.FLOAT64),
		tbl.AddFieldColumn("position_error", types.FLOAT64),
		tbl.AddFieldColumn("target", types.STRING),
		tbl.AddFieldColumn("neutralized", types.BOOLEAN),
		tbl.AddFieldColumn("link_tower", types.STRING),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.DroneID, r.Scenario, r.Control, int64(r.Frame),
			r.X, r.Y, r.PerceivedX, r.PerceivedY, r.PositionError,
			r.Target, r.Neutralized, r.LinkTower, r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(w.telemetryTable, tbl, len(rows))
}

// WriteStage inserts the per-frame engagement aggregate.
func (w *GreptimeDBWriter) WriteStage(r telemetry.StageRow) error {
	tbl, err := table.New(w.stageTable)
	if err != nil {
		return err
	}
	if err := errors.Join(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("scenario", types.STRING),
		tbl.AddFieldColumn("run", types.STRING),
		tbl.AddFieldColumn("stage", types.STRING),
		tbl.AddFieldColumn("frame", types.INT64),
		tbl.AddFieldColumn("defense_active", types.BOOLEAN),
		tbl.AddFieldColumn("intensity", types.FLOAT64),
		tbl.AddFieldColumn("closest_distance", types.FLOAT64),
		tbl.AddFieldColumn("altitude", types.FLOAT64),
		tbl.AddFieldColumn("max_position_error", types.FLOAT64),
		tbl.AddFieldColumn("threat", types.STRING),
		tbl.AddFieldColumn("active", types.INT64),
		tbl.AddFieldColumn("neutralized", types.INT64),
		tbl.AddFieldColumn("total", types.INT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	if err := tbl.AddRow(
		r.RunID, r.Scenario, r.Run, r.Stage, int64(r.Frame), r.DefenseActive,
		r.Intensity, r.ClosestDistance, r.Altitude, r.MaxPositionError, r.Threat,
		int64(r.Active), int64(r.Neutralized), int64(r.Total), r.Timestamp,
	); err != nil {
		return err
	}
	return w.write(w.stageTable, tbl, 1)
}

// WriteEvent inserts a single engagement event.
func (w *GreptimeDBWriter) WriteEvent(e telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{e})
}

// WriteEvents inserts engagement events. Drone IDs are stored as a JSON array.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := errors.Join(
		tbl.AddTagColumn("run_id", types.STRING),
		tbl.AddTagColumn("event_type", types.STRING),
		tbl.AddFieldColumn("drone_ids", types.STRING),
		tbl.AddFieldColumn("detail", types.STRING),
		tbl.AddFieldColumn("frame", types.INT64),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	); err != nil {
		return err
	}
	for _, e := range rows {
		ids := e.DroneIDs
		if ids == nil {
			ids = []string{}
		}
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if err := tbl.AddRow(e.RunID, e.EventType, string(data), e.Detail, int64(e.Frame), e.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.eventTable, tbl, len(rows))
}
