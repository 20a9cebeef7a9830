package sim

import (
	"encoding/json"
	"os"

	"spoofdefense-sim/internal/telemetry"
)

// FileWriter writes telemetry, stage and event rows to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	stageFile *os.File
	eventFile *os.File
	teleEnc   *json.Encoder
	stageEnc  *json.Encoder
	eventEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. stagePath or eventPath may be empty to skip those logs.
func NewFileWriter(telemetryPath, stagePath, eventPath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if stagePath != "" {
		sf, err := os.Create(stagePath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.stageFile = sf
		fw.stageEnc = json.NewEncoder(sf)
	}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	return fw, nil
}

// Write logs a single telemetry row.
func (f *FileWriter) Write(row telemetry.TelemetryRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple telemetry rows.
func (f *FileWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStage logs a stage row, if enabled.
func (f *FileWriter) WriteStage(row telemetry.StageRow) error {
	if f.stageEnc == nil {
		return nil
	}
	return f.stageEnc.Encode(row)
}

// WriteEvent logs a single event row, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple event rows.
func (f *FileWriter) WriteEvents(rows []telemetry.EventRow) error {
	for _, r := range rows {
		if err := f.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.teleFile, f.stageFile, f.eventFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
