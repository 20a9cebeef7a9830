package scenario

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"spoofdefense-sim/internal/engine"
)

// Scenario describes a threat profile with its flight parameters and the
// operator briefing for each stage of an engagement.
type Scenario struct {
	ID            string  `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Description   string  `yaml:"description,omitempty" json:"description,omitempty"`
	Range         string  `yaml:"range,omitempty" json:"range,omitempty"`
	Speed         float64 `yaml:"speed" json:"speed"`
	Altitude      float64 `yaml:"altitude" json:"altitude"`
	DefenseMethod string  `yaml:"defense_method,omitempty" json:"defense_method,omitempty"`
	BestUseCase   string  `yaml:"best_use_case,omitempty" json:"best_use_case,omitempty"`
	Phases        []Phase `yaml:"phases" json:"phases"`
}

// Phase is the briefing shown while the engagement is in the named stage.
type Phase struct {
	Name        engine.Stage `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
}

// Catalogue maps scenario IDs to scenarios.
type Catalogue map[string]Scenario

type catalogueFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads a YAML scenario catalogue from disk.
func Load(path string) (Catalogue, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var f catalogueFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	cat := make(Catalogue, len(f.Scenarios))
	for _, s := range f.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := cat[s.ID]; dup {
			return nil, fmt.Errorf("scenario %q defined twice", s.ID)
		}
		cat[s.ID] = s
	}
	return cat, nil
}

// Validate checks the values the engine relies on.
func (s Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario %q: missing id", s.Name)
	}
	if s.Speed <= 0 {
		return fmt.Errorf("scenario %s: speed must be positive, got %v", s.ID, s.Speed)
	}
	if s.Altitude < 0 {
		return fmt.Errorf("scenario %s: altitude must not be negative, got %v", s.ID, s.Altitude)
	}
	for _, p := range s.Phases {
		if !knownStage(p.Name) {
			return fmt.Errorf("scenario %s: unknown phase %q", s.ID, p.Name)
		}
	}
	return nil
}

// Briefing returns the description of the phase matching stage.
// If no phase matches, ok will be false.
func (s Scenario) Briefing(stage engine.Stage) (text string, ok bool) {
	for _, p := range s.Phases {
		if p.Name == stage {
			return p.Description, true
		}
	}
	return "", false
}

// Engine returns the values the engine consumes.
func (s Scenario) Engine() *engine.Scenario {
	return &engine.Scenario{ID: s.ID, Name: s.Name, Speed: s.Speed, Altitude: s.Altitude}
}

// IDs returns the catalogue keys in sorted order.
func (c Catalogue) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge returns a catalogue with the entries of o added to or replacing those of c.
func (c Catalogue) Merge(o Catalogue) Catalogue {
	out := make(Catalogue, len(c)+len(o))
	for id, s := range c {
		out[id] = s
	}
	for id, s := range o {
		out[id] = s
	}
	return out
}

func knownStage(st engine.Stage) bool {
	for _, s := range engine.Stages {
		if s == st {
			return true
		}
	}
	return false
}
