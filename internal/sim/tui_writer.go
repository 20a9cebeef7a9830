package sim

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/geom"
	"spoofdefense-sim/internal/scenario"
	"spoofdefense-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// Controller is the set of operator intents the console can issue.
// *Simulator implements it.
type Controller interface {
	SelectScenario(id string) error
	Start() error
	TogglePause() error
	Reset()
	ActivateDefense() error
	DismissAlert() error
	SetIntensity(v float64) float64
	SetDroneCount(n int) error
	SetControlType(c engine.ControlType) error
	SelectZone(id string) error
}

// eventMsg carries an engagement event line for the viewport.
type eventMsg struct{ line string }

// telemetryMsg carries the latest rows for the drone table.
type telemetryMsg struct{ rows []telemetry.TelemetryRow }

// snapshotMsg carries the full engine state for the arena view.
type snapshotMsg struct{ state engine.State }

// adminMsg reports admin API status.
type adminMsg struct{ active bool }

type controllerMsg struct{ ctrl Controller }

// intentMsg is the result of an intent issued from a key press.
type intentMsg struct {
	name string
	err  error
}

const (
	maxEventLines  = 1000
	intensityStep  = 10
	mapHeightPct   = 0.4
	minMapHeight   = 6
	tableHeight    = 6
	minEventHeight = 3
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleSelected  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleWarning   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1)
	styleSuccess   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Padding(0, 1)
	styleSensitive = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleZone      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleTower     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleDrone     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleSpoofed   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleNeutral   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var threatStyles = map[engine.ThreatLevel]lipgloss.Style{
	engine.ThreatNone:     styleDim,
	engine.ThreatLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	engine.ThreatMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	engine.ThreatHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	engine.ThreatCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
}

// TUIWriter renders the engagement using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. Quitting the
// program interrupts the process unless Close was called first.
func NewTUIWriter(p engine.Params, cat scenario.Catalogue) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	prog := tea.NewProgram(newTUIModel(p, cat), tea.WithAltScreen())
	w.program = prog
	go func() {
		_, _ = prog.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// SetController registers the intent target for key bindings.
func (w *TUIWriter) SetController(c Controller) {
	w.program.Send(controllerMsg{ctrl: c})
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch replaces the drone table with the rows of one frame.
func (w *TUIWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	w.program.Send(telemetryMsg{rows: append([]telemetry.TelemetryRow(nil), rows...)})
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.EventRow) error {
	w.program.Send(eventMsg{line: formatEvent(e)})
	return nil
}

// WriteSnapshot implements SnapshotWriter.
func (w *TUIWriter) WriteSnapshot(s engine.State) error {
	w.program.Send(snapshotMsg{state: s})
	return nil
}

// SetAdminStatus updates the admin API indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Done is closed when the program exits.
func (w *TUIWriter) Done() <-chan struct{} { return w.done }

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func formatEvent(e telemetry.EventRow) string {
	line := fmt.Sprintf("%s frame=%d %s",
		styleDim.Render("["+e.Timestamp.Format(time.TimeOnly)+"]"), e.Frame, e.EventType)
	if len(e.DroneIDs) > 0 {
		line += fmt.Sprintf(" drones=%s", strings.Join(e.DroneIDs, ","))
	}
	if e.Detail != "" {
		line += " " + e.Detail
	}
	switch e.EventType {
	case telemetry.EventAlert:
		return styleError.Render(line)
	case telemetry.EventNeutralized, telemetry.EventComplete:
		return styleNeutral.Render(line)
	}
	return line
}

type tuiModel struct {
	params     engine.Params
	catalogue  scenario.Catalogue
	ids        []string
	ctrl       Controller
	state      engine.State
	table      table.Model
	vp         viewport.Model
	logs       []string
	width      int
	height     int
	admin      bool
	wrap       bool
	autoscroll bool
	help       bool
}

func newTUIModel(p engine.Params, cat scenario.Catalogue) tuiModel {
	cols := []table.Column{
		{Title: "Drone", Width: 10},
		{Title: "Ctl", Width: 4},
		{Title: "Position", Width: 14},
		{Title: "GPS", Width: 14},
		{Title: "Error", Width: 7},
		{Title: "Target", Width: 8},
		{Title: "Status", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(tableHeight))
	eng := engine.New(p, nil)
	return tuiModel{
		params:     p,
		catalogue:  cat,
		ids:        cat.IDs(),
		state:      eng.Snapshot(),
		table:      t,
		vp:         viewport.New(0, minEventHeight),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case eventMsg:
		m.appendLog(msg.line)
	case intentMsg:
		if msg.err != nil {
			m.appendLog(styleError.Render(fmt.Sprintf("%s: %v", msg.name, msg.err)))
		}
	case telemetryMsg:
		m.table.SetRows(telemetryRows(msg.rows))
	case snapshotMsg:
		m.state = msg.state
	case adminMsg:
		m.admin = msg.active
	case controllerMsg:
		m.ctrl = msg.ctrl
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		switch msg.String() {
		case "?", "h", "esc":
			m.help = false
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "h", "?":
		m.help = true
		return m, nil
	case "w":
		m.wrap = !m.wrap
		m.refreshViewport()
		return m, nil
	case "s":
		m.autoscroll = !m.autoscroll
		if m.autoscroll {
			m.vp.GotoBottom()
		}
		return m, nil
	case "enter":
		return m, m.intent("start", Controller.Start)
	case " ", "p":
		return m, m.intent("pause", Controller.TogglePause)
	case "d":
		return m, m.intent("defense", Controller.ActivateDefense)
	case "x":
		return m, m.intent("dismiss", Controller.DismissAlert)
	case "r":
		return m, m.intent("reset", func(c Controller) error {
			c.Reset()
			return nil
		})
	case "+", "=":
		v := m.state.Intensity + intensityStep
		return m, m.intent("intensity", func(c Controller) error {
			c.SetIntensity(v)
			return nil
		})
	case "-":
		v := m.state.Intensity - intensityStep
		return m, m.intent("intensity", func(c Controller) error {
			c.SetIntensity(v)
			return nil
		})
	case "]":
		n := m.state.DroneCount + 1
		return m, m.intent("drones", func(c Controller) error { return c.SetDroneCount(n) })
	case "[":
		n := m.state.DroneCount - 1
		return m, m.intent("drones", func(c Controller) error { return c.SetDroneCount(n) })
	case "c":
		next := engine.ControlSIM
		if m.state.Control == engine.ControlSIM {
			next = engine.ControlGPS
		}
		return m, m.intent("control", func(c Controller) error { return c.SetControlType(next) })
	case "z":
		id := m.nextZone()
		if id == "" {
			return m, nil
		}
		return m, m.intent("zone", func(c Controller) error { return c.SelectZone(id) })
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(m.ids) {
			id := m.ids[idx]
			return m, m.intent("scenario", func(c Controller) error { return c.SelectScenario(id) })
		}
		return m, nil
	}
	if !m.autoscroll {
		switch key {
		case "j", "down":
			m.vp.LineDown(1)
		case "k", "up":
			m.vp.LineUp(1)
		case "pgdown", "ctrl+n":
			m.vp.LineDown(10)
		case "pgup", "ctrl+p":
			m.vp.LineUp(10)
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// intent wraps a controller call in a command so it runs outside the event
// loop. Writers send to the program while an intent is applied.
func (m tuiModel) intent(name string, fn func(Controller) error) tea.Cmd {
	ctrl := m.ctrl
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		return intentMsg{name: name, err: fn(ctrl)}
	}
}

func (m tuiModel) nextZone() string {
	zones := m.params.Zones
	if len(zones) == 0 {
		return ""
	}
	for i, z := range zones {
		if z.ID == m.state.SelectedZone.ID {
			return zones[(i+1)%len(zones)].ID
		}
	}
	return zones[0].ID
}

func (m *tuiModel) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxEventLines {
		m.logs = m.logs[len(m.logs)-maxEventLines:]
	}
	m.refreshViewport()
}

func (m *tuiModel) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + 1 + m.mapHeight() + tableHeight + 2 + 6
	h := m.height - used
	if h < minEventHeight {
		h = minEventHeight
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		lines = make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = wordwrap.String(l, m.vp.Width)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) mapHeight() int {
	h := int(float64(m.height) * mapHeightPct)
	if h < minMapHeight {
		h = minMapHeight
	}
	return h
}

func telemetryRows(rows []telemetry.TelemetryRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		status := "inbound"
		if r.Neutralized {
			status = "neutralized"
		} else if r.LinkTower != "" {
			status = "link " + r.LinkTower
		}
		out = append(out, table.Row{
			r.DroneID,
			r.Control,
			fmt.Sprintf("%.0f,%.0f", r.X, r.Y),
			fmt.Sprintf("%.0f,%.0f", r.PerceivedX, r.PerceivedY),
			fmt.Sprintf("%.1f", r.PositionError),
			r.Target,
			status,
		})
	}
	return out
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.width)
	sections := []string{m.renderHeader()}
	if m.state.Alert.Show {
		sections = append(sections, m.renderAlert())
	}
	sections = append(sections,
		divider,
		m.renderArena(m.width, m.mapHeight()),
		divider,
		m.table.View(),
		divider,
		m.renderBriefing(),
		divider,
		"Events:",
		m.vp.View(),
		divider,
		m.renderBottom(),
	)
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	s := m.state
	var picks []string
	for i, id := range m.ids {
		label := fmt.Sprintf("%d %s", i+1, id)
		if s.Scenario != nil && s.Scenario.ID == id {
			label = styleSelected.Render(label)
		}
		picks = append(picks, label)
	}
	threat, ok := threatStyles[s.Telemetry.Threat]
	if !ok {
		threat = styleDim
	}
	defense := styleDim.Render("off")
	if s.DefenseActive {
		defense = styleNeutral.Render("on")
	}
	status := fmt.Sprintf("run=%s stage=%s threat=%s defense=%s intensity=%.0f%% drones=%d control=%s zone=%s frame=%d",
		s.Run, s.Stage, threat.Render(s.Telemetry.Threat.String()), defense,
		s.Intensity, s.DroneCount, s.Control, s.SelectedZone.ID, s.Frame)
	metrics := fmt.Sprintf("closest=%.0f altitude=%.0f max_error=%.1f active=%d neutralized=%d/%d",
		s.Telemetry.ClosestDistance, s.Telemetry.Altitude, s.Telemetry.MaxPositionError,
		s.Telemetry.Active, s.Telemetry.Neutralized, s.Telemetry.Total)
	return strings.Join([]string{
		styleTitle.Render("GPS Spoofing Defense") + "  " + strings.Join(picks, "  "),
		status,
		metrics,
	}, "\n")
}

func (m tuiModel) renderAlert() string {
	if m.state.Alert.Message == engine.SuccessMessage {
		return styleSuccess.Render(m.state.Alert.Message)
	}
	return styleWarning.Render(m.state.Alert.Message + "  (d: defend, x: dismiss)")
}

func (m tuiModel) renderBriefing() string {
	text := "Select a scenario (1-9) and press enter to start."
	if s := m.state.Scenario; s != nil {
		if sc, ok := m.catalogue[s.ID]; ok {
			if b, ok := sc.Briefing(m.state.Stage); ok {
				text = b
			}
		}
	}
	if m.width > 0 {
		text = wordwrap.String(text, m.width)
	}
	return text
}

// renderArena draws the arena onto a character grid of the given size.
func (m tuiModel) renderArena(width, height int) string {
	if width < 10 {
		width = 10
	}
	if height < 2 {
		height = 2
	}
	p := m.params
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = " "
		}
		grid[i] = row
	}
	cell := func(v geom.Vec2) (int, int, bool) {
		if p.Width <= 0 || p.Height <= 0 || v.X < 0 || v.Y < 0 || v.X > p.Width || v.Y > p.Height {
			return 0, 0, false
		}
		x := int(v.X / p.Width * float64(width-1))
		y := int(v.Y / p.Height * float64(height-1))
		return x, y, true
	}
	put := func(v geom.Vec2, s string) {
		if x, y, ok := cell(v); ok {
			grid[y][x] = s
		}
	}
	circle := func(z engine.Zone, style lipgloss.Style, label string) {
		for deg := 0; deg < 360; deg += 10 {
			rad := float64(deg) * math.Pi / 180
			put(geom.Vec2{X: z.Center.X + math.Cos(rad)*z.Radius, Y: z.Center.Y + math.Sin(rad)*z.Radius}, style.Render("·"))
		}
		put(z.Center, style.Render(label))
	}

	circle(p.SensitiveArea, styleSensitive, "S")
	for _, z := range p.Zones {
		label := "Z"
		if z.ID != "" {
			label = strings.ToUpper(z.ID[:1])
		}
		circle(z, styleZone, label)
	}
	for _, t := range p.Towers {
		put(t.Pos, styleTower.Render("T"))
	}
	for _, d := range m.state.Drones {
		if d.Control.Spoofable() && !d.Neutralized && d.PositionError() >= 1 {
			put(d.Perceived, styleSpoofed.Render("+"))
		}
	}
	for _, d := range m.state.Drones {
		if d.Neutralized {
			put(d.Actual, styleNeutral.Render("x"))
			continue
		}
		put(d.Actual, styleDrone.Render("D"))
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteByte('\n')
	}
	b.WriteString(styleDim.Render("S=sensitive area  A/B/C=diversion zones  T=tower  D=drone  +=perceived  x=neutralized"))
	return b.String()
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	return fmt.Sprintf("Admin API %s | Wrap %s | Scroll %s | h help | q quit",
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" 1-9      select scenario",
		" enter    start run",
		" space/p  pause or resume",
		" d        activate defense",
		" x        dismiss alert",
		" +/-      spoofing intensity",
		" [/]      drone count",
		" c        toggle gps/sim control",
		" z        cycle diversion zone",
		" r        reset",
		" w        toggle wrap for events",
		" s        toggle auto-scroll",
		" h/?      toggle this help view",
		" q        quit",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
