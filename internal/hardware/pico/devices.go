//go:build tinygo

package pico

import (
	"errors"
	"image/color"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bh1750"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/ws2812"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	colorlux "github.com/saaga0h/colorlux/internal/color"
)

const gy33Address = 0x29

// GY33 reads RGBC channels over I2C
type GY33 struct {
	bus drivers.I2C
	buf [2]byte
}

// NewGY33 powers the sensor up with a short integration time and 1x gain
func NewGY33(bus drivers.I2C) (*GY33, error) {
	d := &GY33{bus: bus}
	for _, w := range [][]byte{{0x80, 0x03}, {0x81, 0xF5}, {0x8F, 0x00}} {
		if err := bus.Tx(gy33Address, w, nil); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Read returns one RGBC sample
func (d *GY33) Read() (colorlux.Sample, error) {
	var s colorlux.Sample
	for _, ch := range []struct {
		reg byte
		dst *uint16
	}{
		{0x94, &s.C},
		{0x96, &s.R},
		{0x98, &s.G},
		{0x9A, &s.B},
	} {
		if err := d.bus.Tx(gy33Address, []byte{ch.reg}, d.buf[:]); err != nil {
			return colorlux.Sample{}, err
		}
		*ch.dst = uint16(d.buf[0]) | uint16(d.buf[1])<<8
	}
	return s, nil
}

// LightSensor adapts the BH1750 driver, which reports milli-lux
type LightSensor struct {
	dev *bh1750.Device
}

var errNoLight = errors.New("bh1750 returned no reading")

// Read returns the illuminance in lux
func (l *LightSensor) Read() (uint16, error) {
	mlx := l.dev.Illuminance()
	if mlx < 0 {
		return 0, errNoLight
	}
	lux := mlx / 1000
	if lux > 0xFFFF {
		lux = 0xFFFF
	}
	return uint16(lux), nil
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Display renders text on the SSD1306
type Display struct {
	dev *ssd1306.Device
}

// NewDisplay wraps a configured SSD1306
func NewDisplay(dev *ssd1306.Device) *Display {
	return &Display{dev: dev}
}

func (d *Display) Clear() {
	d.dev.ClearBuffer()
}

// DrawText draws text with its top-left corner at (x, y)
func (d *Display) DrawText(text string, x, y int16) {
	tinyfont.WriteLine(d.dev, &proggy.TinySZ8pt7b, x, y+8, text, white)
}

func (d *Display) Flush() error {
	return d.dev.Display()
}

// Matrix fills the WS2812 matrix with one colour
type Matrix struct {
	dev    *ws2812.Device
	pixels []color.RGBA
}

// NewMatrix creates a matrix of n pixels
func NewMatrix(dev *ws2812.Device, n int) *Matrix {
	return &Matrix{dev: dev, pixels: make([]color.RGBA, n)}
}

func (m *Matrix) SetColor(r, g, b uint8) error {
	for i := range m.pixels {
		m.pixels[i] = color.RGBA{R: r, G: g, B: b}
	}
	return m.dev.WriteColors(m.pixels)
}

// pwmGroup is the method set of an RP2040 PWM slice
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
	Top() uint32
}

// sliceFor returns the PWM slice that owns pin
func sliceFor(pin machine.Pin) pwmGroup {
	slices := [...]pwmGroup{
		machine.PWM0, machine.PWM1, machine.PWM2, machine.PWM3,
		machine.PWM4, machine.PWM5, machine.PWM6, machine.PWM7,
	}
	return slices[(uint8(pin)/2)%8]
}

// indicatorPeriod is 1 kHz in nanoseconds
const indicatorPeriod = 1e9 / 1000

type pwmOutput struct {
	slice   pwmGroup
	channel uint8
}

func newPWMOutput(pin machine.Pin, period uint64) (pwmOutput, error) {
	slice := sliceFor(pin)
	if err := slice.Configure(machine.PWMConfig{Period: period}); err != nil {
		return pwmOutput{}, err
	}
	ch, err := slice.Channel(pin)
	if err != nil {
		return pwmOutput{}, err
	}
	slice.Set(ch, 0)
	return pwmOutput{slice: slice, channel: ch}, nil
}

// Indicator drives the RGB LED
type Indicator struct {
	outputs [3]pwmOutput
	levels  [3]uint16
}

// NewIndicator configures the three channels
func NewIndicator(r, g, b machine.Pin) (*Indicator, error) {
	ind := &Indicator{}
	for i, pin := range []machine.Pin{r, g, b} {
		out, err := newPWMOutput(pin, indicatorPeriod)
		if err != nil {
			return nil, err
		}
		ind.outputs[i] = out
	}
	return ind, nil
}

// SetLevels sets each channel's duty as a fraction of 65535
func (i *Indicator) SetLevels(r, g, b uint16) error {
	i.levels = [3]uint16{r, g, b}
	i.apply()
	return nil
}

// Restore brings the indicator slices back to their own period after a buzzer used them
func (i *Indicator) Restore() {
	for _, out := range i.outputs {
		out.slice.SetPeriod(indicatorPeriod)
	}
	i.apply()
}

func (i *Indicator) apply() {
	for ch, out := range i.outputs {
		out.slice.Set(out.channel, uint32(uint64(out.slice.Top())*uint64(i.levels[ch])/65535))
	}
}

// Buzzer plays 50% duty square waves
type Buzzer struct {
	out    pwmOutput
	onStop func()
}

// NewBuzzer configures a buzzer pin. onStop runs after every StopTone.
func NewBuzzer(pin machine.Pin, onStop func()) (*Buzzer, error) {
	out, err := newPWMOutput(pin, indicatorPeriod)
	if err != nil {
		return nil, err
	}
	return &Buzzer{out: out, onStop: onStop}, nil
}

func (b *Buzzer) PlayTone(hz uint16) error {
	if hz == 0 {
		return b.StopTone()
	}
	if err := b.out.slice.SetPeriod(uint64(1e9) / uint64(hz)); err != nil {
		return err
	}
	b.out.slice.Set(b.out.channel, b.out.slice.Top()/2)
	return nil
}

func (b *Buzzer) StopTone() error {
	b.out.slice.Set(b.out.channel, 0)
	if b.onStop != nil {
		b.onStop()
	}
	return nil
}
