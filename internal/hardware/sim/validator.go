package sim

import "fmt"

// ValidateScenario performs validation checks on a loaded scenario
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if s.IndicatorGain < 0 {
		return fmt.Errorf("indicator_gain cannot be negative")
	}

	if err := validateSteps(s.Steps); err != nil {
		return fmt.Errorf("steps validation failed: %w", err)
	}

	if s.Loop && s.Duration() == 0 {
		return fmt.Errorf("a looping scenario needs a last step after time 0")
	}

	return nil
}

func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	if steps[0].TimeMs != 0 {
		return fmt.Errorf("step 0: the first step must be at time 0")
	}
	if steps[0].Sample == nil || steps[0].Lux == nil {
		return fmt.Errorf("step 0: the first step must set both sample and lux")
	}

	for i, step := range steps {
		if step.TimeMs < 0 {
			return fmt.Errorf("step %d: time cannot be negative", i)
		}
		if i > 0 && step.TimeMs < steps[i-1].TimeMs {
			return fmt.Errorf("step %d: steps must be in time order", i)
		}

		if step.Lux != nil && (*step.Lux < 0 || *step.Lux > 65535) {
			return fmt.Errorf("step %d: lux must be between 0 and 65535", i)
		}

		switch step.Press {
		case "", ButtonReference, ButtonReset:
		default:
			return fmt.Errorf("step %d: unknown button %q (must be %s or %s)", i, step.Press, ButtonReference, ButtonReset)
		}

		switch step.Fail {
		case "", "color", "light":
		default:
			return fmt.Errorf("step %d: unknown sensor %q to fail (must be color or light)", i, step.Fail)
		}

		if step.Sample == nil && step.Lux == nil && step.Press == "" && step.Fail == "" {
			return fmt.Errorf("step %d: step changes nothing", i)
		}
	}

	return nil
}
