package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"spoofdefense-sim/internal/telemetry"
)

// JSONStdoutWriter prints telemetry, stage and event rows as JSON lines.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) print(kind string, v any) error {
	data, err := json.Marshal(struct {
		Kind string `json:"kind"`
		Row  any    `json:"row"`
	}{kind, v})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a telemetry row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.TelemetryRow) error {
	return w.print("telemetry", row)
}

// WriteBatch outputs multiple telemetry rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStage outputs the engagement aggregate in JSON format.
func (w *JSONStdoutWriter) WriteStage(row telemetry.StageRow) error {
	return w.print("stage", row)
}

// WriteEvent outputs an engagement event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	return w.print("event", e)
}
