// Package periph drives the colorlux peripherals on Linux single-board computers through periph.io.
package periph

import (
	"fmt"
	"io"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
)

// Board owns the opened buses and pins of one device
type Board struct {
	Hardware sensing.Hardware

	buttonA gpio.PinIO
	buttonB gpio.PinIO
	closers []io.Closer
	halters []interface{ Halt() error }
	logger  *slog.Logger
}

// Open initialises the host drivers and every peripheral named in cfg
func Open(cfg *config.Config, logger *slog.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise periph host: %w", err)
	}

	b := &Board{logger: logger}
	if err := b.open(cfg); err != nil {
		b.Close()
		return nil, err
	}

	logger.Info("Board opened",
		"color_bus", cfg.ColorBus,
		"light_bus", cfg.LightBus,
		"display_bus", cfg.DisplayBus,
		"matrix_spi", cfg.MatrixSPI,
		"matrix_pixels", cfg.MatrixPixels)

	return b, nil
}

func (b *Board) open(cfg *config.Config) error {
	colorBus, err := i2creg.Open(cfg.ColorBus)
	if err != nil {
		return fmt.Errorf("failed to open colour sensor bus: %w", err)
	}
	b.closers = append(b.closers, colorBus)

	colorSensor, err := NewGY33(colorBus)
	if err != nil {
		return err
	}

	// Sensors commonly share one bus
	lightBus := colorBus
	if cfg.LightBus != cfg.ColorBus {
		bus, err := i2creg.Open(cfg.LightBus)
		if err != nil {
			return fmt.Errorf("failed to open light sensor bus: %w", err)
		}
		b.closers = append(b.closers, bus)
		lightBus = bus
	}

	lightSensor, err := NewBH1750(lightBus)
	if err != nil {
		return err
	}

	displayBus, err := i2creg.Open(cfg.DisplayBus)
	if err != nil {
		return fmt.Errorf("failed to open display bus: %w", err)
	}
	b.closers = append(b.closers, displayBus)

	oled, err := ssd1306.NewI2C(displayBus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialise display: %w", err)
	}
	b.halters = append(b.halters, oled)

	port, err := spireg.Open(cfg.MatrixSPI)
	if err != nil {
		return fmt.Errorf("failed to open matrix SPI port: %w", err)
	}
	b.closers = append(b.closers, port)

	opts := nrzled.DefaultOpts
	opts.NumPixels = cfg.MatrixPixels
	leds, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return fmt.Errorf("failed to initialise LED matrix: %w", err)
	}
	b.halters = append(b.halters, leds)

	pins := map[string]gpio.PinIO{}
	for _, name := range []string{cfg.PinRed, cfg.PinGreen, cfg.PinBlue, cfg.PinBuzzerA, cfg.PinBuzzerB, cfg.PinButtonA, cfg.PinButtonB} {
		p := gpioreg.ByName(name)
		if p == nil {
			return fmt.Errorf("unknown pin %q", name)
		}
		pins[name] = p
	}
	b.buttonA = pins[cfg.PinButtonA]
	b.buttonB = pins[cfg.PinButtonB]

	display, err := NewTextDisplay(oled)
	if err != nil {
		return err
	}

	b.Hardware = sensing.Hardware{
		ColorSensor: colorSensor,
		LightSensor: lightSensor,
		Display:     display,
		Indicator:   NewIndicator(pins[cfg.PinRed], pins[cfg.PinGreen], pins[cfg.PinBlue]),
		Matrix:      NewMatrix(leds, cfg.MatrixPixels),
		ColorBuzzer: NewBuzzer(pins[cfg.PinBuzzerA]),
		AlertBuzzer: NewBuzzer(pins[cfg.PinBuzzerB]),
	}

	return nil
}

// Buttons binds the reference button to reference and the reset button to reset
func (b *Board) Buttons(reference, reset Presser) ([]*Button, error) {
	a, err := NewButton(b.buttonA, reference, b.logger)
	if err != nil {
		return nil, err
	}
	r, err := NewButton(b.buttonB, reset, b.logger)
	if err != nil {
		return nil, err
	}
	return []*Button{a, r}, nil
}

// Close halts the devices and releases the buses
func (b *Board) Close() {
	for _, h := range b.halters {
		if err := h.Halt(); err != nil {
			b.logger.Warn("Failed to halt device", "error", err)
		}
	}
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			b.logger.Warn("Failed to close bus", "error", err)
		}
	}
}
