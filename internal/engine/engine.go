package engine

// Engine owns a State and applies operator intents to it. It is not safe for
// concurrent use; drivers serialize access.
type Engine struct {
	params Params
	rnd    Rand
	state  State
}

// New creates an idle engine. rnd is consumed only when a run starts.
func New(p Params, rnd Rand) *Engine {
	e := &Engine{params: p, rnd: rnd}
	e.state = e.initialState()
	if z, ok := p.Zone(p.DefaultZone); ok {
		e.state.SelectedZone = z
	} else if len(p.Zones) > 0 {
		e.state.SelectedZone = p.Zones[0]
	}
	return e
}

func (e *Engine) initialState() State {
	return State{
		Run:        RunIdle,
		Intensity:  ClampIntensity(e.params.DefaultIntensity),
		DroneCount: ClampDroneCount(e.params.DefaultDroneCount),
		Control:    e.params.DefaultControl,
		Satellites: NewSatellites(e.params.SatelliteCount),
		Stage:      StageIngress,
	}
}

// Params returns the arena definition.
func (e *Engine) Params() Params { return e.params }

// Snapshot returns a copy of the current state that callers may retain.
func (e *Engine) Snapshot() State { return e.state.Clone() }

// Tick advances one frame. It reports false when the run is not running.
func (e *Engine) Tick() bool {
	if e.state.Run != RunRunning {
		return false
	}
	e.state = Advance(e.state, e.params)
	return true
}

// SelectScenario picks the profile for the next run. nil clears it.
func (e *Engine) SelectScenario(sc *Scenario) bool {
	if e.state.Run != RunIdle {
		return false
	}
	if sc == nil {
		e.state.Scenario = nil
		return true
	}
	cp := *sc
	e.state.Scenario = &cp
	return true
}

// Start spawns the drones and begins the run.
func (e *Engine) Start() bool {
	if e.state.Run != RunIdle || e.state.Scenario == nil {
		return false
	}
	s := e.state
	s.Drones = SpawnDrones(e.rnd, e.params, s.DroneCount, s.Control, s.SelectedZone)
	s.Satellites = NewSatellites(e.params.SatelliteCount)
	s.Run = RunRunning
	s.Frame = 0
	s.DefenseActive = false
	s.Alert = Alert{}
	s.Warned = false
	e.state = Aggregate(s, e.params)
	return true
}

// Pause suspends ticking.
func (e *Engine) Pause() bool {
	if e.state.Run != RunRunning {
		return false
	}
	e.state.Run = RunPaused
	return true
}

// Resume continues a paused run.
func (e *Engine) Resume() bool {
	if e.state.Run != RunPaused {
		return false
	}
	e.state.Run = RunRunning
	return true
}

// TogglePause flips between running and paused.
func (e *Engine) TogglePause() bool {
	if e.state.Run == RunRunning {
		return e.Pause()
	}
	return e.Resume()
}

// Reset discards the run and the selected scenario. Drone count, control type
// and selected zone are kept.
func (e *Engine) Reset() {
	keep := e.state
	e.state = e.initialState()
	e.state.DroneCount = keep.DroneCount
	e.state.Control = keep.Control
	e.state.SelectedZone = keep.SelectedZone
}

// ActivateDefense turns the spoofer on for the rest of the run.
func (e *Engine) ActivateDefense() bool {
	s := e.state
	if s.Run != RunRunning && s.Run != RunPaused {
		return false
	}
	if s.DefenseActive {
		return false
	}
	if e.params.RequireAlertForDefense && !s.Alert.Show {
		return false
	}
	s.DefenseActive = true
	e.state = Aggregate(s, e.params)
	return true
}

// SetIntensity sets the spoofing intensity, clamped to [0, 100], and returns
// the stored value.
func (e *Engine) SetIntensity(v float64) float64 {
	e.state.Intensity = ClampIntensity(v)
	return e.state.Intensity
}

// SetDroneCount sets the swarm size for the next run, clamped to [1, 20].
func (e *Engine) SetDroneCount(n int) bool {
	if e.state.Run != RunIdle {
		return false
	}
	e.state.DroneCount = ClampDroneCount(n)
	return true
}

// SetControlType sets the guidance channel for the next run.
func (e *Engine) SetControlType(c ControlType) bool {
	if e.state.Run != RunIdle || !c.Valid() {
		return false
	}
	e.state.Control = c
	return true
}

// SelectDiversionZone picks the zone a single drone is diverted to.
func (e *Engine) SelectDiversionZone(id string) bool {
	if e.state.Run != RunIdle {
		return false
	}
	z, ok := e.params.Zone(id)
	if !ok {
		return false
	}
	e.state.SelectedZone = z
	return true
}

// DismissAlert hides the current alert. A dismissed warning is not raised again
// during the same run.
func (e *Engine) DismissAlert() bool {
	if !e.state.Alert.Show {
		return false
	}
	e.state.Alert = Alert{}
	if e.state.Run != RunIdle {
		e.state = Aggregate(e.state, e.params)
	}
	return true
}
