package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saaga0h/colorlux/internal/hardware/periph"
	"github.com/saaga0h/colorlux/internal/hardware/sim"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/health"
)

const (
	// simTick is how often the simulated environment checks for due scenario steps
	simTick = 10 * time.Millisecond

	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "colorlux-agent: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource of the agent; its deferred cleanups run on all exit paths
func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("Starting colorlux agent",
		"device_id", cfg.DeviceID,
		"backend", cfg.Backend,
		"config_file", cfg.ConfigFile,
		"mqtt_enabled", cfg.MQTTEnabled,
		"redis_enabled", cfg.RedisEnabled,
		"postgres_enabled", cfg.PostgresEnabled,
		"log_level", cfg.LogLevel)

	// Cancelled by signals, the reset button or a failed loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Written by the button handlers, read once per cycle
	cell := &reference.Cell{}
	debouncer := reference.NewDebouncer(cell, sensing.SystemClock{}, config.Millis(cfg.DebounceWindowMs))
	reset := reference.NewResetTrigger(func() {
		logger.Warn("Reset button pressed, shutting down")
		cancel()
	})

	hw, closeHardware, err := openHardware(ctx, cfg, debouncer, reset, logger)
	if err != nil {
		return fmt.Errorf("open %s hardware: %w", cfg.Backend, err)
	}
	defer closeHardware()

	sinks, err := openSinks(ctx, cfg, debouncer, logger)
	if err != nil {
		return fmt.Errorf("set up sinks: %w", err)
	}
	defer sinks.close(logger)

	agent := sensing.NewAgent(hw, cell, sensing.SystemClock{}, loopSettings(cfg), logger, sinks.all()...)

	status := &statusSource{
		cfg:       cfg,
		agent:     agent,
		debouncer: debouncer,
		sinks:     sinks,
	}
	healthChecker := health.NewChecker(sinks.mqttClient, sinks.redisClient, sinks.pgClient, status.Status, logger)
	httpServer := startHealthServer(cfg.HealthPort, healthChecker, logger)

	agentErr := make(chan error, 1)
	go func() {
		if err := agent.Start(ctx); err != nil {
			logger.Error("Agent error", "error", err)
			agentErr <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
	case <-ctx.Done():
		logger.Info("Reset requested")
	case err := <-agentErr:
		logger.Error("Agent failed", "error", err)
	}

	logger.Info("Stopping colorlux agent")
	cancel()

	if err := agent.Stop(); err != nil {
		logger.Error("Error stopping agent", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown failed", "error", err)
	}

	logger.Info("Colorlux agent stopped", "cycles", agent.Cycles())
	return nil
}

// loadConfig layers defaults, the optional config file, the environment and flags
func loadConfig(args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if path := config.ConfigPath(args); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openHardware builds the collaborators of the configured backend and binds the buttons
func openHardware(ctx context.Context, cfg *config.Config, debouncer *reference.Debouncer, reset *reference.ResetTrigger, logger *slog.Logger) (sensing.Hardware, func(), error) {
	switch cfg.Backend {
	case "sim":
		scenario, err := sim.LoadScenario(cfg.Scenario)
		if err != nil {
			return sensing.Hardware{}, nil, err
		}

		env := sim.NewEnvironment(scenario, sensing.SystemClock{}, logger)
		env.OnPress(sim.ButtonReference, func() { debouncer.Press() })
		env.OnPress(sim.ButtonReset, func() { reset.Press() })
		go env.Run(ctx, simTick)

		panel := sim.NewPanel(os.Stdout, logger)
		return sim.NewHardware(env, panel), func() {}, nil

	default:
		board, err := periph.Open(cfg, logger)
		if err != nil {
			return sensing.Hardware{}, nil, err
		}

		buttons, err := board.Buttons(debouncer, reset)
		if err != nil {
			board.Close()
			return sensing.Hardware{}, nil, err
		}
		for _, btn := range buttons {
			go btn.Watch(ctx)
		}
		return board.Hardware, board.Close, nil
	}
}

// loopSettings maps the configuration onto the sensing loop parameters
func loopSettings(cfg *config.Config) sensing.Settings {
	return sensing.Settings{
		DeviceID:           cfg.DeviceID,
		CycleInterval:      config.Millis(cfg.CycleIntervalMs),
		StabilizationDelay: config.Millis(cfg.StabilizationDelayMs),
		BootSplashDelay:    config.Millis(cfg.BootSplashDelayMs),
		ToneDuration:       config.Millis(cfg.ColorToneDurationMs),
		AlertToneHz:        uint16(cfg.AlertToneHz),
		AlertPulse:         config.Millis(cfg.AlertPulseMs),
		AlertGap:           config.Millis(cfg.AlertGapMs),
		LowLightThreshold:  uint16(cfg.LowLightThresholdLux),
		SensorReadRetries:  cfg.SensorReadRetries,
	}
}

func startHealthServer(port int, checker *health.Checker, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HandlerFunc())
	mux.HandleFunc("/health/detailed", checker.DetailedHandlerFunc())
	mux.HandleFunc("/status", checker.StatusHandlerFunc())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("Health server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server failed", "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
