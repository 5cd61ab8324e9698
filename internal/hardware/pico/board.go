//go:build tinygo

// Package pico drives the colorlux peripherals on an RP2040 board (BitDogLab layout).
package pico

import (
	"machine"

	"tinygo.org/x/drivers/bh1750"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/ws2812"

	"github.com/saaga0h/colorlux/internal/sensing"
)

// Pin assignment of the board
const (
	PinSensorSDA  = machine.GPIO0
	PinSensorSCL  = machine.GPIO1
	PinDisplaySDA = machine.GPIO14
	PinDisplaySCL = machine.GPIO15

	PinRed   = machine.GPIO13
	PinGreen = machine.GPIO11
	PinBlue  = machine.GPIO12

	PinBuzzerA = machine.GPIO21
	PinBuzzerB = machine.GPIO10
	PinMatrix  = machine.GPIO7

	PinButtonA = machine.GPIO5
	PinButtonB = machine.GPIO6

	MatrixPixels = 25
)

// Board holds the configured peripherals
type Board struct {
	Hardware sensing.Hardware
}

// Open configures both I2C buses, the PWM slices and the LED matrix
func Open() (*Board, error) {
	sensors := machine.I2C0
	if err := sensors.Configure(machine.I2CConfig{
		SDA:       PinSensorSDA,
		SCL:       PinSensorSCL,
		Frequency: 400 * machine.KHz,
	}); err != nil {
		return nil, err
	}

	bus := machine.I2C1
	if err := bus.Configure(machine.I2CConfig{
		SDA:       PinDisplaySDA,
		SCL:       PinDisplaySCL,
		Frequency: 400 * machine.KHz,
	}); err != nil {
		return nil, err
	}

	colorSensor, err := NewGY33(sensors)
	if err != nil {
		return nil, err
	}

	light := bh1750.New(sensors)
	light.Configure()

	oled := ssd1306.NewI2C(bus)
	oled.Configure(ssd1306.Config{
		Width:    128,
		Height:   64,
		Address:  0x3C,
		VccState: ssd1306.SWITCHCAPVCC,
	})

	PinMatrix.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := ws2812.New(PinMatrix)

	indicator, err := NewIndicator(PinRed, PinGreen, PinBlue)
	if err != nil {
		return nil, err
	}

	buzzerA, err := NewBuzzer(PinBuzzerA, nil)
	if err != nil {
		return nil, err
	}
	// Buzzer B shares its PWM slice with the green channel
	buzzerB, err := NewBuzzer(PinBuzzerB, indicator.Restore)
	if err != nil {
		return nil, err
	}

	b := &Board{}
	b.Hardware = sensing.Hardware{
		ColorSensor: colorSensor,
		LightSensor: &LightSensor{dev: &light},
		Display:     NewDisplay(&oled),
		Indicator:   indicator,
		Matrix:      NewMatrix(&strip, MatrixPixels),
		ColorBuzzer: buzzerA,
		AlertBuzzer: buzzerB,
	}

	return b, nil
}

// BindButtons wires the reference and reset buttons to falling-edge interrupts
func (b *Board) BindButtons(reference, reset func() bool) error {
	for _, btn := range []struct {
		pin   machine.Pin
		press func() bool
	}{
		{PinButtonA, reference},
		{PinButtonB, reset},
	} {
		press := btn.press
		btn.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		if err := btn.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) { press() }); err != nil {
			return err
		}
	}
	return nil
}
