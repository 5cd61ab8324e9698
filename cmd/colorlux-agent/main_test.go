package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/journal"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
)

func TestLoopSettings(t *testing.T) {
	cfg := config.NewConfig()
	cfg.DeviceID = "bench"
	cfg.SensorReadRetries = 2

	s := loopSettings(cfg)

	defaults := sensing.DefaultSettings()
	defaults.DeviceID = "bench"
	defaults.SensorReadRetries = 2
	assert.Equal(t, defaults, s)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestOpenSimHardware(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = "sim"
	cfg.Scenario = "../../scenarios/desk-lamp.yaml"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cell := &reference.Cell{}
	debouncer := reference.NewDebouncer(cell, sensing.SystemClock{}, time.Millisecond)
	reset := reference.NewResetTrigger(func() {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hw, closeHardware, err := openHardware(ctx, cfg, debouncer, reset, logger)
	require.NoError(t, err)
	defer closeHardware()

	assert.NotNil(t, hw.ColorSensor)
	assert.NotNil(t, hw.AlertBuzzer)
}

func TestStatusWithoutStores(t *testing.T) {
	cfg := config.NewConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cell := &reference.Cell{}
	cell.Store(reference.Blue)

	src := &statusSource{
		cfg:       cfg,
		agent:     sensing.NewAgent(sensing.Hardware{}, cell, sensing.SystemClock{}, loopSettings(cfg), logger),
		debouncer: reference.NewDebouncer(cell, sensing.SystemClock{}, 0),
		sinks:     &sinkSet{},
	}

	body, err := src.Status(context.Background())
	require.NoError(t, err)

	st, ok := body.(*Status)
	require.True(t, ok)
	assert.Equal(t, "colorlux", st.DeviceID)
	assert.Equal(t, reference.Blue, st.Reference)
	assert.Nil(t, st.Last)
	assert.Empty(t, st.BootID)
	assert.Nil(t, st.History)
}

type darkColorSensor struct{}

func (darkColorSensor) Read() (color.Sample, error) { return color.Sample{}, nil }

type steadyLightSensor struct{ lux uint16 }

func (s steadyLightSensor) Read() (uint16, error) { return s.lux, nil }

// quietOutputs accepts every display, LED and buzzer call
type quietOutputs struct{}

func (quietOutputs) Clear()                         {}
func (quietOutputs) DrawText(string, int16, int16)  {}
func (quietOutputs) Flush() error                   { return nil }
func (quietOutputs) SetLevels(_, _, _ uint16) error { return nil }
func (quietOutputs) SetColor(_, _, _ uint8) error   { return nil }
func (quietOutputs) PlayTone(uint16) error          { return nil }
func (quietOutputs) StopTone() error                { return nil }

func TestStatusInDarkRoomWithJournal(t *testing.T) {
	cfg := config.NewConfig()
	cfg.StabilizationDelayMs = 0
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cell := &reference.Cell{}

	hw := sensing.Hardware{
		ColorSensor: darkColorSensor{},
		LightSensor: steadyLightSensor{lux: 300},
		Display:     quietOutputs{},
		Indicator:   quietOutputs{},
		Matrix:      quietOutputs{},
		ColorBuzzer: quietOutputs{},
		AlertBuzzer: quietOutputs{},
	}
	agent := sensing.NewAgent(hw, cell, sensing.SystemClock{}, loopSettings(cfg), logger)
	report, err := agent.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, color.Dark, report.Label)

	// A black sample never reaches the database
	src := &statusSource{
		cfg:       cfg,
		agent:     agent,
		debouncer: reference.NewDebouncer(cell, sensing.SystemClock{}, 0),
		sinks:     &sinkSet{journal: journal.NewJournal(nil)},
	}

	body, err := src.Status(context.Background())
	require.NoError(t, err)

	st, ok := body.(*Status)
	require.True(t, ok)
	require.NotNil(t, st.Last)
	assert.Nil(t, st.Nearest)
}

func TestOpenSinksFailureReturnsError(t *testing.T) {
	cfg := config.NewConfig()
	cfg.RedisEnabled = true
	cfg.RedisHost = "127.0.0.1"
	cfg.RedisPort = 1
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	debouncer := reference.NewDebouncer(&reference.Cell{}, sensing.SystemClock{}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sinks, err := openSinks(ctx, cfg, debouncer, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
	assert.Nil(t, sinks)
}

func TestSinkSetCloseWithoutStores(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &sinkSet{}

	assert.NotPanics(t, func() { s.close(logger) })
	assert.Empty(t, s.all())
	assert.Empty(t, s.dropped())
}
