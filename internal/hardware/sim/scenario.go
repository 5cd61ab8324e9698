package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/saaga0h/colorlux/internal/color"
)

// Button names accepted in scenario steps
const (
	ButtonReference = "reference"
	ButtonReset     = "reset"
)

// Scenario describes what the simulated sensors see over time
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Loop restarts the scenario after the last step
	Loop bool `yaml:"loop"`

	// IndicatorGain is how many raw counts the reference LED adds to each channel at full duty
	IndicatorGain float64 `yaml:"indicator_gain"`

	Steps []Step `yaml:"steps"`
}

// Step changes the environment at a point in scenario time
type Step struct {
	TimeMs      int           `yaml:"time_ms"` // Milliseconds from start
	Sample      *color.Sample `yaml:"sample,omitempty"`
	Lux         *int          `yaml:"lux,omitempty"`
	Press       string        `yaml:"press,omitempty"` // reference or reset
	Fail        string        `yaml:"fail,omitempty"`  // color or light: next read of that sensor fails
	Description string        `yaml:"description"`
}

// LoadScenario reads and validates the scenario stored at path
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	scenario, err := LoadScenarioFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return scenario, nil
}

// LoadScenarioFromBytes decodes and validates a YAML scenario
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	scenario := &Scenario{}
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := ValidateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	return scenario, nil
}

// Duration is the scenario time of the last step
func (s *Scenario) Duration() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].TimeMs
}
