// Simulator driving the engine and fanning rows out to writers
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/scenario"
	"spoofdefense-sim/internal/telemetry"
)

var (
	// ErrRejected is returned when an intent does not apply in the current run state.
	ErrRejected = errors.New("intent not applicable")
	// ErrUnknown is returned when an intent names a scenario or zone that does not exist.
	ErrUnknown = errors.New("unknown identifier")
)

const maxHistory = 256

// Simulator owns an engine and serializes access to it. Rows produced by a
// frame or an intent are written after the engine lock is released.
type Simulator struct {
	mu           sync.Mutex
	eng          *engine.Engine
	catalogue    scenario.Catalogue
	runID        string
	teleGen      *telemetry.Generator
	writer       TelemetryWriter
	tickInterval time.Duration
	autoDefense  bool
	history      []telemetry.EventRow
	logger       *slog.Logger
	now          func() time.Time

	writeMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]chan engine.State
	nextSub int
}

// NewSimulator creates a simulator for the given arena and scenario
// catalogue. An empty runID is replaced with a random one. writer may be nil.
func NewSimulator(runID string, p engine.Params, cat scenario.Catalogue, writer TelemetryWriter, tickInterval time.Duration, rnd engine.Rand) *Simulator {
	if runID == "" {
		runID = uuid.New().String()
	}
	if cat == nil {
		cat = scenario.BuiltIn()
	}
	return &Simulator{
		eng:          engine.New(p, rnd),
		catalogue:    cat,
		runID:        runID,
		teleGen:      telemetry.NewGenerator(runID),
		writer:       writer,
		tickInterval: tickInterval,
		logger:       slog.Default(),
		now:          time.Now,
		subs:         make(map[int]chan engine.State),
	}
}

// SetLogger replaces the logger used for intents.
func (s *Simulator) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// SetAutoDefense makes the simulator activate the defense as soon as the
// warning alert is raised.
func (s *Simulator) SetAutoDefense(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoDefense = on
}

// RunID returns the identifier tagged on every row.
func (s *Simulator) RunID() string { return s.runID }

// TickInterval returns the frame period used by Run.
func (s *Simulator) TickInterval() time.Duration { return s.tickInterval }

// Params returns the arena definition.
func (s *Simulator) Params() engine.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Params()
}

// Snapshot returns a copy of the current engine state.
func (s *Simulator) Snapshot() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot()
}

// Scenarios returns the scenario catalogue.
func (s *Simulator) Scenarios() scenario.Catalogue { return s.catalogue }

// Briefing returns the operator briefing for the selected scenario and the
// current stage, or "" when no scenario is selected.
func (s *Simulator) Briefing() string {
	st := s.Snapshot()
	if st.Scenario == nil {
		return ""
	}
	sc, ok := s.catalogue[st.Scenario.ID]
	if !ok {
		return ""
	}
	text, _ := sc.Briefing(st.Stage)
	return text
}

// Events returns a copy of the most recent engagement events.
func (s *Simulator) Events() []telemetry.EventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]telemetry.EventRow, len(s.history))
	copy(events, s.history)
	return events
}

// SelectScenario picks a scenario from the catalogue for the next run.
func (s *Simulator) SelectScenario(id string) error {
	sc, ok := s.catalogue[id]
	if !ok {
		return fmt.Errorf("scenario %q: %w", id, ErrUnknown)
	}
	return s.apply("select_scenario:"+id, func(e *engine.Engine) bool {
		return e.SelectScenario(sc.Engine())
	})
}

// Start spawns the swarm and begins the run.
func (s *Simulator) Start() error {
	return s.apply("start", (*engine.Engine).Start)
}

// Pause suspends the run.
func (s *Simulator) Pause() error {
	return s.apply("pause", (*engine.Engine).Pause)
}

// Resume continues a paused run.
func (s *Simulator) Resume() error {
	return s.apply("resume", (*engine.Engine).Resume)
}

// TogglePause flips between running and paused.
func (s *Simulator) TogglePause() error {
	return s.apply("toggle_pause", (*engine.Engine).TogglePause)
}

// Reset discards the current run.
func (s *Simulator) Reset() {
	_ = s.apply("reset", func(e *engine.Engine) bool {
		e.Reset()
		return true
	})
}

// ActivateDefense turns the spoofer on.
func (s *Simulator) ActivateDefense() error {
	return s.apply("activate_defense", (*engine.Engine).ActivateDefense)
}

// DismissAlert hides the current alert.
func (s *Simulator) DismissAlert() error {
	return s.apply("dismiss_alert", (*engine.Engine).DismissAlert)
}

// SetIntensity sets the spoofing intensity and returns the clamped value.
func (s *Simulator) SetIntensity(v float64) float64 {
	var got float64
	_ = s.apply(fmt.Sprintf("set_intensity:%g", v), func(e *engine.Engine) bool {
		got = e.SetIntensity(v)
		return true
	})
	return got
}

// SetDroneCount sets the swarm size for the next run.
func (s *Simulator) SetDroneCount(n int) error {
	return s.apply(fmt.Sprintf("set_drone_count:%d", n), func(e *engine.Engine) bool {
		return e.SetDroneCount(n)
	})
}

// SetControlType sets the guidance channel for the next run.
func (s *Simulator) SetControlType(c engine.ControlType) error {
	if !c.Valid() {
		return fmt.Errorf("control type %q: %w", c, ErrUnknown)
	}
	return s.apply("set_control:"+string(c), func(e *engine.Engine) bool {
		return e.SetControlType(c)
	})
}

// SelectZone picks the diversion zone for a single-drone run.
func (s *Simulator) SelectZone(id string) error {
	if _, ok := s.Params().Zone(id); !ok {
		return fmt.Errorf("zone %q: %w", id, ErrUnknown)
	}
	return s.apply("select_zone:"+id, func(e *engine.Engine) bool {
		return e.SelectDiversionZone(id)
	})
}

// apply runs an intent against the engine and emits its events.
func (s *Simulator) apply(name string, fn func(*engine.Engine) bool) error {
	s.mu.Lock()
	prev := s.eng.Snapshot()
	ok := fn(s.eng)
	cur := s.eng.Snapshot()
	log := s.logger
	var events []telemetry.EventRow
	if ok {
		now := s.now().UTC()
		events = append(events, s.teleGen.Intent(cur, name, now))
		events = append(events, s.teleGen.Events(prev, cur, now)...)
		s.record(events)
	}
	s.mu.Unlock()

	if !ok {
		log.Warn("intent rejected", "intent", name, "run", cur.Run, "stage", cur.Stage)
		return fmt.Errorf("%s: %w", name, ErrRejected)
	}
	log.Info("intent applied", "intent", name, "run", cur.Run, "stage", cur.Stage)
	s.emit(log, nil, nil, events, cur)
	return nil
}

// record appends events to the bounded history. Callers hold s.mu.
func (s *Simulator) record(events []telemetry.EventRow) {
	s.history = append(s.history, events...)
	if over := len(s.history) - maxHistory; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// Subscribe returns a channel receiving a snapshot after every frame and
// intent. Slow subscribers miss snapshots rather than blocking the
// simulator. The returned func cancels the subscription.
func (s *Simulator) Subscribe(buffer int) (<-chan engine.State, func()) {
	ch := make(chan engine.State, buffer)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Simulator) broadcast(st engine.State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- st.Clone():
		default:
		}
	}
}
