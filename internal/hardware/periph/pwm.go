package periph

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// IndicatorFrequency is the PWM carrier of the reference LED
const IndicatorFrequency = 1 * physic.KiloHertz

// pwmPin is the part of gpio.PinIO used for PWM outputs
type pwmPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
	Out(l gpio.Level) error
}

// LevelToDuty scales a 16-bit PWM level to a periph duty cycle
func LevelToDuty(level uint16) gpio.Duty {
	return gpio.Duty(uint64(level) * uint64(gpio.DutyMax) / 65535)
}

// Indicator drives the RGB reference LED from three PWM pins
type Indicator struct {
	pins [3]pwmPin
}

// NewIndicator creates an indicator on the red, green and blue pins
func NewIndicator(r, g, b pwmPin) *Indicator {
	return &Indicator{pins: [3]pwmPin{r, g, b}}
}

// SetLevels sets the duty of each channel. A zero level drives the pin low.
func (i *Indicator) SetLevels(r, g, b uint16) error {
	for ch, level := range [3]uint16{r, g, b} {
		if err := setLevel(i.pins[ch], level); err != nil {
			return fmt.Errorf("failed to set indicator channel %d: %w", ch, err)
		}
	}
	return nil
}

func setLevel(pin pwmPin, level uint16) error {
	if level == 0 {
		return pin.Out(gpio.Low)
	}
	return pin.PWM(LevelToDuty(level), IndicatorFrequency)
}

// Buzzer plays square waves on a passive buzzer
type Buzzer struct {
	pin pwmPin
}

// NewBuzzer creates a buzzer on a PWM pin
func NewBuzzer(pin pwmPin) *Buzzer {
	return &Buzzer{pin: pin}
}

// PlayTone starts a 50% duty square wave at hz. Zero stops the buzzer.
func (b *Buzzer) PlayTone(hz uint16) error {
	if hz == 0 {
		return b.StopTone()
	}
	if err := b.pin.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz); err != nil {
		return fmt.Errorf("failed to play %d Hz: %w", hz, err)
	}
	return nil
}

// StopTone silences the buzzer
func (b *Buzzer) StopTone() error {
	return b.pin.Out(gpio.Low)
}
