//go:build tinygo

// Command colorlux-firmware runs the sensing loop on an RP2040 board.
package main

import (
	"context"
	"log/slog"
	"machine"
	"os"
	"time"

	"github.com/saaga0h/colorlux/internal/hardware/pico"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
)

// restartDelay is the pause before the loop is restarted after a collaborator failure
const restartDelay = time.Second

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	board, err := pico.Open()
	if err != nil {
		for {
			logger.Error("Failed to open board", "error", err)
			time.Sleep(restartDelay)
		}
	}

	cell := &reference.Cell{}
	debouncer := reference.NewDebouncer(cell, sensing.SystemClock{}, reference.DefaultDebounceWindow)
	reset := reference.NewResetTrigger(machine.EnterBootloader)

	if err := board.BindButtons(debouncer.Press, reset.Press); err != nil {
		logger.Error("Failed to bind buttons", "error", err)
	}

	settings := sensing.DefaultSettings()
	settings.DeviceID = "colorlux-pico"

	for {
		agent := sensing.NewAgent(board.Hardware, cell, sensing.SystemClock{}, settings, logger)
		if err := agent.Start(context.Background()); err != nil {
			logger.Error("Sensing loop failed", "error", err)
		}
		time.Sleep(restartDelay)
	}
}
