package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"spoofdefense-sim/internal/config"
	"spoofdefense-sim/internal/sim"
)

const defaultDatabase = "public"

// colorMode values for --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// useColor decides between the colored and the JSON stdout writer.
func useColor(mode string, fd uintptr) (bool, error) {
	switch mode {
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	case colorAuto, "":
		return term.IsTerminal(int(fd)), nil
	}
	return false, fmt.Errorf("unknown color mode %q", mode)
}

// newWriters sets up the writer chain based on flags and env vars. extra
// writers, such as a metrics collector, are always attached. It returns the
// writer and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, printOnly bool, colorMode, logFile string, extra ...sim.TelemetryWriter) (sim.TelemetryWriter, func(), error) {
	cleanup := func() {}

	base, err := baseWriter(cfg, printOnly, colorMode)
	if err != nil {
		return nil, nil, err
	}
	ws := append([]sim.TelemetryWriter{base}, extra...)
	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".stage", logFile+".events")
		if err != nil {
			return nil, nil, err
		}
		ws = append(ws, fw)
		cleanup = func() { fw.Close() }
	}
	if len(ws) == 1 {
		return base, cleanup, nil
	}
	return sim.NewMultiWriter(ws...), cleanup, nil
}

// baseWriter chooses the underlying writer based on printOnly flag and env vars.
func baseWriter(cfg *config.SimulationConfig, printOnly bool, colorMode string) (sim.TelemetryWriter, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		color, err := useColor(colorMode, os.Stdout.Fd())
		if err != nil {
			return nil, err
		}
		if color {
			return sim.NewColorStdoutWriter(cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	}

	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = defaultDatabase
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database)
	if err != nil {
		return nil, fmt.Errorf("init GreptimeDB writer: %w", err)
	}
	return w, nil
}

// adminStatus returns w as an AdminStatusWriter when it can display the
// admin API state.
func adminStatus(w sim.TelemetryWriter) sim.AdminStatusWriter {
	if aw, ok := w.(sim.AdminStatusWriter); ok {
		return aw
	}
	return nil
}
