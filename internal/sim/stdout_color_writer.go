// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"spoofdefense-sim/internal/config"
	"spoofdefense-sim/internal/telemetry"
)

var (
	colorTime     = color.New(color.FgHiBlack)
	colorDrone    = color.New(color.FgWhite, color.Bold)
	colorActual   = color.New(color.FgGreen)
	colorSpoofed  = color.New(color.FgYellow)
	colorError    = color.New(color.FgMagenta)
	colorStage    = color.New(color.FgBlue, color.Bold)
	colorEvent    = color.New(color.FgCyan, color.Bold)
	colorAlert    = color.New(color.FgRed, color.Bold)
	colorSuccess  = color.New(color.FgGreen, color.Bold)
	colorDisabled = color.New(color.FgHiBlack)
)

var threatColors = map[string]*color.Color{
	"low":      color.New(color.FgGreen),
	"medium":   color.New(color.FgYellow),
	"high":     color.New(color.FgRed),
	"critical": color.New(color.FgRed, color.Bold),
}

// ColorStdoutWriter prints telemetry, stage and event rows using ANSI colors.
// Stage rows are only printed when the stage or threat level changes.
type ColorStdoutWriter struct {
	cfg        *config.SimulationConfig
	out        io.Writer
	once       sync.Once
	mu         sync.Mutex
	lastStage  string
	lastThreat string
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Arena:\t%.0fx%.0f\n", w.cfg.Arena.Width, w.cfg.Arena.Height)
	fmt.Fprintf(tw, "Sensitive Area:\t(%.0f,%.0f) r=%.0f\n", w.cfg.SensitiveArea.Center.X, w.cfg.SensitiveArea.Center.Y, w.cfg.SensitiveArea.Radius)
	fmt.Fprintf(tw, "Warning Distance:\t%.0f\n", w.cfg.WarningDistance)
	fmt.Fprintf(tw, "Tick Interval:\t%s\n", w.cfg.TickInterval)
	fmt.Fprintf(tw, "Drones:\t%d\n", w.cfg.Defaults.Drones)
	fmt.Fprintf(tw, "Control:\t%s\n", w.cfg.Defaults.Control)
	fmt.Fprintf(tw, "Intensity:\t%.0f%%\n", w.cfg.Defaults.Intensity)
	tw.Flush()

	fmt.Fprintln(w.out, "\nDiversion Zones:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tCenter\tRadius\n")
	for _, z := range w.cfg.DiversionZones {
		fmt.Fprintf(tw, "%s\t%s\t(%.0f,%.0f)\t%.0f\n", colorSuccess.Sprint(z.ID), z.Name, z.Center.X, z.Center.Y, z.Radius)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func (w *ColorStdoutWriter) stamp(ts time.Time) string {
	return colorTime.Sprintf("[%s]", ts.Format(time.RFC3339))
}

// Write outputs a single telemetry row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.TelemetryRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "%s frame=%d ", w.stamp(row.Timestamp), row.Frame)
	fmt.Fprintf(w.out, "drone=%s ", colorDrone.Sprint(row.DroneID))
	fmt.Fprintf(w.out, "ctl=%s ", row.Control)
	fmt.Fprintf(w.out, "pos=%s ", colorActual.Sprintf("(%.1f,%.1f)", row.X, row.Y))
	fmt.Fprintf(w.out, "gps=%s ", colorSpoofed.Sprintf("(%.1f,%.1f)", row.PerceivedX, row.PerceivedY))
	fmt.Fprintf(w.out, "err=%s ", colorError.Sprintf("%.1f", row.PositionError))
	fmt.Fprintf(w.out, "target=%s", row.Target)
	if row.LinkTower != "" {
		fmt.Fprintf(w.out, " tower=%s", row.LinkTower)
	}
	if row.Neutralized {
		fmt.Fprintf(w.out, " %s", colorSuccess.Sprint("neutralized"))
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteStage prints the engagement aggregate when the stage or threat changes.
func (w *ColorStdoutWriter) WriteStage(row telemetry.StageRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()
	if row.Stage == w.lastStage && row.Threat == w.lastThreat {
		return nil
	}
	w.lastStage, w.lastThreat = row.Stage, row.Threat

	threat, ok := threatColors[row.Threat]
	if !ok {
		threat = colorDisabled
	}
	defense := colorDisabled.Sprint("off")
	if row.DefenseActive {
		defense = colorSuccess.Sprint("on")
	}
	fmt.Fprintf(w.out, "%s %s stage=%s threat=%s defense=%s closest=%.0f alt=%.0f active=%d/%d\n",
		w.stamp(row.Timestamp), colorStage.Sprint("STAGE"),
		row.Stage, threat.Sprint(row.Threat), defense,
		row.ClosestDistance, row.Altitude, row.Active, row.Total)
	return nil
}

// WriteEvent prints an engagement event to STDOUT.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	label := colorEvent
	switch e.EventType {
	case telemetry.EventAlert:
		label = colorAlert
	case telemetry.EventComplete, telemetry.EventNeutralized:
		label = colorSuccess
	}
	fmt.Fprintf(w.out, "%s %s type=%s frame=%d", w.stamp(e.Timestamp), label.Sprint("EVENT"), e.EventType, e.Frame)
	if len(e.DroneIDs) > 0 {
		fmt.Fprintf(w.out, " drones=%v", e.DroneIDs)
	}
	if e.Detail != "" {
		fmt.Fprintf(w.out, " detail=%q", e.Detail)
	}
	fmt.Fprintln(w.out)
	return nil
}
