package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/saaga0h/colorlux/internal/telemetry"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/mqtt"
)

func main() {
	watch := pflag.String("watch", "", "Device to follow (empty = every device)")
	capture := pflag.String("capture", "", "Write captured messages to this JSON file on exit")

	// Load configuration with hierarchy: defaults → file → env → flags
	cfg := config.NewConfig()
	if path := config.ConfigPath(os.Args[1:]); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "colorlux-monitor-" + cfg.DeviceID
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := telemetry.NewMonitor(mqtt.NewListener(cfg, logger), *watch, logger)
	if err := monitor.Start(ctx); err != nil {
		logger.Error("Failed to start monitor", "broker", cfg.MQTTAddress(), "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	monitor.Stop()
	fmt.Print(monitor.Timeline())

	if *capture != "" {
		if err := monitor.SaveCapture(*capture); err != nil {
			logger.Error("Failed to save capture", "error", err)
			os.Exit(1)
		}
		logger.Info("Capture saved", "file", *capture, "messages", len(monitor.Messages()))
	}
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
