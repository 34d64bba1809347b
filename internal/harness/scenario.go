package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what the scenario pins down.
	Description string `yaml:"description,omitempty"`

	// Model is the path to the model file, relative to the scenario file.
	Model string `yaml:"model"`

	// Seed drives the run. Scenarios are deterministic per seed.
	Seed uint64 `yaml:"seed"`

	// MaxOps bounds the run; zero means the harness default.
	MaxOps int `yaml:"max_ops,omitempty"`

	// Expect is the required terminal state: "complete" (default) or
	// "contradiction".
	Expect string `yaml:"expect,omitempty"`

	// Assertions validate the final grid.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// dir is the directory the scenario was loaded from; model paths
	// resolve against it.
	dir string
}

// ScenarioError is returned when a scenario file is malformed.
type ScenarioError struct {
	Path    string
	Message string
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %s: %s", e.Path, e.Message)
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, &ScenarioError{Path: path, Message: err.Error()}
	}
	sc.dir = filepath.Dir(path)

	if err := sc.validate(path); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenarios reads every *.yaml scenario under dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	sort.Strings(matches)

	out := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// ModelPath returns the model path resolved against the scenario file.
func (s *Scenario) ModelPath() string {
	if filepath.IsAbs(s.Model) {
		return s.Model
	}
	return filepath.Join(s.dir, s.Model)
}

func (s *Scenario) validate(path string) error {
	if s.Name == "" {
		return &ScenarioError{Path: path, Message: "missing name"}
	}
	if s.Model == "" {
		return &ScenarioError{Path: path, Message: "missing model"}
	}
	switch s.Expect {
	case "", "complete", "contradiction":
	default:
		return &ScenarioError{Path: path, Message: fmt.Sprintf("unknown expect %q", s.Expect)}
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			return &ScenarioError{Path: path, Message: fmt.Sprintf("assertion %d: %v", i, err)}
		}
	}
	return nil
}
