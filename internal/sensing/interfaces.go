package sensing

import (
	"context"
	"time"

	"github.com/saaga0h/colorlux/internal/color"
)

// ColorSensor reads one raw RGBC sample
type ColorSensor interface {
	Read() (color.Sample, error)
}

// LightSensor reads the ambient illuminance in lux
type LightSensor interface {
	Read() (uint16, error)
}

// Display is a small monochrome text display. DrawText positions are pixel coordinates.
type Display interface {
	Clear()
	DrawText(text string, x, y int16)
	Flush() error
}

// RGBIndicator drives the reference LED with linear PWM duty levels (0..65535)
type RGBIndicator interface {
	SetLevels(r, g, b uint16) error
}

// LEDMatrix shows one colour across all pixels
type LEDMatrix interface {
	SetColor(r, g, b uint8) error
}

// Buzzer plays a square wave until stopped
type Buzzer interface {
	PlayTone(hz uint16) error
	StopTone() error
}

// Clock provides monotonic time and the loop's blocking delays
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Sink receives the report of every completed cycle
type Sink interface {
	Publish(ctx context.Context, report Report) error
}

// Hardware groups the collaborators owned by the agent
type Hardware struct {
	ColorSensor ColorSensor
	LightSensor LightSensor
	Display     Display
	Indicator   RGBIndicator
	Matrix      LEDMatrix

	// ColorBuzzer plays the colour cue, AlertBuzzer the low-light alert
	ColorBuzzer Buzzer
	AlertBuzzer Buzzer
}

// SystemClock is the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
