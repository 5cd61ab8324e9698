package sim

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
)

// ErrInjected is returned by a sensor read that the scenario asked to fail
var ErrInjected = errors.New("simulated bus error")

// Clock supplies the time scenario steps are measured against
type Clock interface {
	Now() time.Time
}

// Environment replays a scenario and backs the simulated sensors and indicator
type Environment struct {
	scenario *Scenario
	clock    Clock
	logger   *slog.Logger

	mu        sync.Mutex
	epoch     time.Time
	cursor    int
	sample    color.Sample
	lux       uint16
	levels    reference.Levels
	failColor int
	failLight int
	handlers  map[string]func()
}

// NewEnvironment starts the scenario clock at the current time
func NewEnvironment(scenario *Scenario, clock Clock, logger *slog.Logger) *Environment {
	return &Environment{
		scenario: scenario,
		clock:    clock,
		logger:   logger,
		epoch:    clock.Now(),
		handlers: make(map[string]func()),
	}
}

// OnPress registers the handler run when a step presses button
func (e *Environment) OnPress(button string, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[button] = fn
}

// Run advances the scenario in real time so button steps fire like interrupts
func (e *Environment) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	e.logger.Info("Running scenario", "name", e.scenario.Name, "steps", len(e.scenario.Steps), "loop", e.scenario.Loop)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Advance(e.clock.Now())
		}
	}
}

// Advance applies every step due by now. Button handlers run after the environment is unlocked.
func (e *Environment) Advance(now time.Time) {
	var presses []func()

	e.mu.Lock()
	steps := e.scenario.Steps
	for {
		if e.cursor >= len(steps) {
			if !e.scenario.Loop {
				break
			}
			e.epoch = e.epoch.Add(time.Duration(e.scenario.Duration()) * time.Millisecond)
			e.cursor = 0
		}

		step := steps[e.cursor]
		if now.Sub(e.epoch) < time.Duration(step.TimeMs)*time.Millisecond {
			break
		}
		if fn := e.apply(step); fn != nil {
			presses = append(presses, fn)
		}
		e.cursor++
	}
	e.mu.Unlock()

	for _, fn := range presses {
		fn()
	}
}

func (e *Environment) apply(step Step) func() {
	if step.Description != "" {
		e.logger.Debug("Scenario step", "time_ms", step.TimeMs, "description", step.Description)
	}
	if step.Sample != nil {
		e.sample = *step.Sample
	}
	if step.Lux != nil {
		e.lux = uint16(*step.Lux)
	}
	switch step.Fail {
	case "color":
		e.failColor++
	case "light":
		e.failLight++
	}
	if step.Press != "" {
		e.logger.Info("Scenario pressed button", "button", step.Press)
		return e.handlers[step.Press]
	}
	return nil
}

// ReadColor returns the scenario sample plus the light the reference LED throws on the sensor
func (e *Environment) ReadColor() (color.Sample, error) {
	e.Advance(e.clock.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failColor > 0 {
		e.failColor--
		return color.Sample{}, ErrInjected
	}

	gain := e.scenario.IndicatorGain
	s := e.sample
	s.R = addClamped(s.R, bleed(e.levels.R, gain))
	s.G = addClamped(s.G, bleed(e.levels.G, gain))
	s.B = addClamped(s.B, bleed(e.levels.B, gain))
	s.C = addClamped(s.C, bleed(e.levels.R, gain)+bleed(e.levels.G, gain)+bleed(e.levels.B, gain))
	return s, nil
}

// ReadLux returns the scenario illuminance
func (e *Environment) ReadLux() (uint16, error) {
	e.Advance(e.clock.Now())

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failLight > 0 {
		e.failLight--
		return 0, ErrInjected
	}
	return e.lux, nil
}

// SetLevels records the reference LED duty levels
func (e *Environment) SetLevels(r, g, b uint16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.levels = reference.Levels{R: r, G: g, B: b}
	return nil
}

// Levels returns the reference LED duty levels
func (e *Environment) Levels() reference.Levels {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.levels
}

func bleed(level uint16, gain float64) float64 {
	return float64(level) / float64(reference.PWMFull) * gain
}

func addClamped(v uint16, extra float64) uint16 {
	return uint16(math.Min(float64(v)+math.Round(extra), math.MaxUint16))
}
