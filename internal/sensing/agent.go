package sensing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/illuminance"
	"github.com/saaga0h/colorlux/internal/reference"
)

// noState forces the first cycle to apply the reference levels
const noState = -1

// Agent is the sensing loop. It owns the hardware; only the reference cell is shared with
// the button handlers.
type Agent struct {
	hw        Hardware
	reference *reference.Cell
	clock     Clock
	settings  Settings
	logger    *slog.Logger
	sinks     []Sink

	// Loop state, touched only by the goroutine running cycles
	prevState int
	lastColor color.Label
	latch     *illuminance.LowLightLatch
	cycles    uint64

	lastReport atomic.Pointer[Report]

	// mu orders Start against Stop so a stopped agent never boots
	mu       sync.Mutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewAgent creates a new sensing agent
func NewAgent(hw Hardware, cell *reference.Cell, clock Clock, settings Settings, logger *slog.Logger, sinks ...Sink) *Agent {
	return &Agent{
		hw:        hw,
		reference: cell,
		clock:     clock,
		settings:  settings,
		logger:    logger,
		sinks:     sinks,
		prevState: noState,
		lastColor: color.Undefined,
		latch:     illuminance.NewLowLightLatch(settings.LowLightThreshold),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Boot shows the splash screen, waits for the sensors to settle and lights the initial reference.
// The first cycle still re-applies the reference and waits the stabilization delay.
func (a *Agent) Boot() error {
	a.logger.Info("Booting sensing agent", "device_id", a.settings.DeviceID)

	if err := renderSplash(a.hw.Display); err != nil {
		return fmt.Errorf("failed to draw splash screen: %w", err)
	}
	a.clock.Sleep(a.settings.BootSplashDelay)

	state := a.reference.Load()
	if err := a.applyReference(state); err != nil {
		return err
	}

	a.logger.Info("Sensing agent booted", "reference", state)
	return nil
}

// Start boots the hardware and runs cycles until ctx is cancelled or Stop is called.
// A collaborator failure ends the loop with an error. Start after Stop returns immediately.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped || a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.mu.Unlock()
	defer close(a.done)

	a.logger.Info("Starting sensing agent",
		"cycle_interval", a.settings.CycleInterval,
		"stabilization_delay", a.settings.StabilizationDelay,
		"low_light_threshold", a.settings.LowLightThreshold,
		"sinks", len(a.sinks))

	if err := a.Boot(); err != nil {
		return fmt.Errorf("failed to boot: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Sensing agent stopping", "cycles", a.cycles)
			return nil
		case <-a.stopChan:
			a.logger.Info("Sensing agent stopping", "cycles", a.cycles)
			return nil
		default:
		}

		if _, err := a.RunCycle(ctx); err != nil {
			return err
		}
		a.clock.Sleep(a.settings.CycleInterval)
	}
}

// Stop ends the loop after the running cycle and switches the outputs off
func (a *Agent) Stop() error {
	a.mu.Lock()
	if !a.stopped {
		a.stopped = true
		close(a.stopChan)
	}
	started := a.started
	a.mu.Unlock()

	if started {
		<-a.done
	}

	a.logger.Info("Switching outputs off")

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record(a.hw.Indicator.SetLevels(0, 0, 0))
	record(a.hw.Matrix.SetColor(0, 0, 0))
	record(a.hw.ColorBuzzer.StopTone())
	record(a.hw.AlertBuzzer.StopTone())

	if firstErr != nil {
		return fmt.Errorf("failed to switch outputs off: %w", firstErr)
	}
	return nil
}

// RunCycle performs one sense/decide/actuate pass
func (a *Agent) RunCycle(ctx context.Context) (*Report, error) {
	report := &Report{Cycle: a.cycles + 1}

	state := a.reference.Load()
	report.Reference = state
	if int(state) != a.prevState {
		if err := a.applyReference(state); err != nil {
			return nil, err
		}
		a.prevState = int(state)
		a.clock.Sleep(a.settings.StabilizationDelay)
		report.ReferenceChanged = true

		a.logger.Info("Reference state applied", "reference", state, "levels", state.Levels())
	}

	sample, err := a.readColor()
	if err != nil {
		return nil, err
	}
	lux, err := a.readLux()
	if err != nil {
		return nil, err
	}
	report.Timestamp = a.clock.Now()
	report.Sample = sample
	report.Lux = lux

	label := color.Classify(sample.R, sample.G, sample.B)
	report.Label = label
	report.Saturation = color.Saturation(sample.R, sample.G, sample.B)

	if label != a.lastColor && label.Audible() {
		hz := color.FrequencyFor(label)
		if err := a.playTone(a.hw.ColorBuzzer, hz, a.settings.ToneDuration); err != nil {
			return nil, fmt.Errorf("failed to play colour cue: %w", err)
		}
		a.logger.Info("Colour changed", "from", a.lastColor, "to", label, "tone_hz", hz)
		a.lastColor = label
		report.ToneHz = hz
	}

	report.Brightness = illuminance.Brightness(lux)
	report.LowLight = a.latch.IsLow(lux)

	if err := renderStatus(a.hw.Display, report); err != nil {
		return nil, fmt.Errorf("failed to render status: %w", err)
	}

	report.Matrix = sample.Scaled(report.Brightness)
	if err := a.hw.Matrix.SetColor(report.Matrix.R, report.Matrix.G, report.Matrix.B); err != nil {
		return nil, fmt.Errorf("failed to set matrix colour: %w", err)
	}

	if a.latch.Update(lux) {
		if err := a.soundAlert(); err != nil {
			return nil, fmt.Errorf("failed to sound low-light alert: %w", err)
		}
		a.logger.Info("Low light alert", "lux", lux, "threshold", a.settings.LowLightThreshold)
		report.Alert = true
	}

	a.cycles++
	a.lastReport.Store(report)

	a.logger.Debug("Cycle completed",
		"cycle", report.Cycle,
		"label", label,
		"r", sample.R, "g", sample.G, "b", sample.B, "c", sample.C,
		"saturation", report.Saturation,
		"lux", lux,
		"brightness", report.Brightness)

	a.publish(ctx, *report)
	return report, nil
}

// LastReport returns the report of the latest completed cycle
func (a *Agent) LastReport() (*Report, bool) {
	r := a.lastReport.Load()
	return r, r != nil
}

// Cycles returns how many cycles completed
func (a *Agent) Cycles() uint64 {
	if r := a.lastReport.Load(); r != nil {
		return r.Cycle
	}
	return 0
}

func (a *Agent) applyReference(state reference.State) error {
	levels := state.Levels()
	if err := a.hw.Indicator.SetLevels(levels.R, levels.G, levels.B); err != nil {
		return fmt.Errorf("failed to apply reference %s: %w", state, err)
	}
	return nil
}

func (a *Agent) readColor() (color.Sample, error) {
	var err error
	for attempt := 0; attempt <= a.settings.SensorReadRetries; attempt++ {
		var sample color.Sample
		if sample, err = a.hw.ColorSensor.Read(); err == nil {
			return sample, nil
		}
		a.logger.Warn("Colour sensor read failed", "attempt", attempt+1, "error", err)
	}
	return color.Sample{}, fmt.Errorf("failed to read colour sensor: %w", err)
}

func (a *Agent) readLux() (uint16, error) {
	var err error
	for attempt := 0; attempt <= a.settings.SensorReadRetries; attempt++ {
		var lux uint16
		if lux, err = a.hw.LightSensor.Read(); err == nil {
			return lux, nil
		}
		a.logger.Warn("Light sensor read failed", "attempt", attempt+1, "error", err)
	}
	return 0, fmt.Errorf("failed to read light sensor: %w", err)
}

func (a *Agent) playTone(b Buzzer, hz uint16, d time.Duration) error {
	if err := b.PlayTone(hz); err != nil {
		return err
	}
	a.clock.Sleep(d)
	return b.StopTone()
}

// soundAlert plays two pulses on the alert buzzer separated by the alert gap
func (a *Agent) soundAlert() error {
	for pulse := 0; pulse < 2; pulse++ {
		if pulse > 0 {
			a.clock.Sleep(a.settings.AlertGap)
		}
		if err := a.playTone(a.hw.AlertBuzzer, a.settings.AlertToneHz, a.settings.AlertPulse); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) publish(ctx context.Context, report Report) {
	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, report); err != nil {
			a.logger.Warn("Failed to publish cycle report", "cycle", report.Cycle, "error", err)
		}
	}
}
