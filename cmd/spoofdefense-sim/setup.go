package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"spoofdefense-sim/internal/config"
	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/scenario"
	"spoofdefense-sim/internal/sim"
)

// runOptions are the flags shared by simulate and tui.
type runOptions struct {
	configPath   string
	schemaPath   string
	scenarioFile string
	scenario     string
	drones       int
	control      string
	intensity    float64
	zone         string
	autoDefense  bool
	tick         time.Duration
	seed         int64
	logFile      string
	adminAddr    string
}

func (o *runOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	f.StringVar(&o.schemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	f.StringVar(&o.scenarioFile, "scenario-file", "", "YAML file with extra scenarios")
	f.StringVar(&o.scenario, "scenario", "", "Scenario to select (default from config)")
	f.IntVar(&o.drones, "drones", 0, "Number of drones in the swarm")
	f.StringVar(&o.control, "control", "", "Drone guidance channel (gps or sim)")
	f.Float64Var(&o.intensity, "intensity", 0, "Spoofing intensity in percent")
	f.StringVar(&o.zone, "zone", "", "Diversion zone for a single drone")
	f.BoolVar(&o.autoDefense, "auto-defense", false, "Activate the defense as soon as the warning is raised")
	f.DurationVar(&o.tick, "tick", 0, "Frame interval (default from config)")
	f.Int64Var(&o.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	f.StringVar(&o.logFile, "log-file", "", "Path to export telemetry, stage and event logs (JSONL)")
	f.StringVar(&o.adminAddr, "admin-addr", "", "Serve the admin API on this address (e.g. :8080)")
}

// load reads the configuration and the scenario catalogue. Extra scenarios
// override built-in ones with the same ID.
func (o *runOptions) load() (*config.SimulationConfig, scenario.Catalogue, error) {
	cfg, err := config.Load(o.configPath, o.schemaPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, err
	}
	if o.tick > 0 {
		cfg.TickInterval = o.tick
	}

	cat := scenario.BuiltIn()
	path := o.scenarioFile
	if path == "" {
		path = cfg.ScenarioFile
	}
	if path != "" {
		extra, err := scenario.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cat = cat.Merge(extra)
	}
	return cfg, cat, nil
}

func (o *runOptions) newRand() engine.Rand {
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// apply pushes the operator setup from flags into the simulator. Only flags
// that were set override the config defaults.
func (o *runOptions) apply(cmd *cobra.Command, s *sim.Simulator, cfg *config.SimulationConfig) error {
	changed := cmd.Flags().Changed
	s.SetAutoDefense(o.autoDefense)
	if changed("intensity") {
		s.SetIntensity(o.intensity)
	}
	if changed("drones") {
		if err := s.SetDroneCount(o.drones); err != nil {
			return err
		}
	}
	if changed("control") {
		if err := s.SetControlType(engine.ControlType(o.control)); err != nil {
			return err
		}
	}
	if changed("zone") {
		if err := s.SelectZone(o.zone); err != nil {
			return err
		}
	}
	id := o.scenario
	if id == "" {
		id = cfg.Defaults.Scenario
	}
	if id == "" {
		return nil
	}
	if err := s.SelectScenario(id); err != nil {
		return fmt.Errorf("select scenario: %w", err)
	}
	return nil
}
