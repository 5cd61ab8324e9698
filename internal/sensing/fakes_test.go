package sensing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/saaga0h/colorlux/internal/color"
)

// recorder collects the hardware calls of all fakes in order
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

type fakeColorSensor struct {
	samples []color.Sample
	fails   int
	reads   int
}

func (f *fakeColorSensor) Read() (color.Sample, error) {
	f.reads++
	if f.fails > 0 {
		f.fails--
		return color.Sample{}, errors.New("i2c nack")
	}
	if len(f.samples) == 0 {
		return color.Sample{}, nil
	}
	s := f.samples[0]
	if len(f.samples) > 1 {
		f.samples = f.samples[1:]
	}
	return s, nil
}

type fakeLightSensor struct {
	lux   []uint16
	fails int
}

func (f *fakeLightSensor) Read() (uint16, error) {
	if f.fails > 0 {
		f.fails--
		return 0, errors.New("i2c timeout")
	}
	if len(f.lux) == 0 {
		return 0, nil
	}
	v := f.lux[0]
	if len(f.lux) > 1 {
		f.lux = f.lux[1:]
	}
	return v, nil
}

type fakeDisplay struct {
	rec    *recorder
	buffer []string
	shown  []string
}

func (f *fakeDisplay) Clear() { f.buffer = nil }

func (f *fakeDisplay) DrawText(text string, x, y int16) {
	f.buffer = append(f.buffer, fmt.Sprintf("%d,%d %s", x, y, text))
}

func (f *fakeDisplay) Flush() error {
	f.shown = f.buffer
	f.rec.add("flush")
	return nil
}

type fakeIndicator struct{ rec *recorder }

func (f *fakeIndicator) SetLevels(r, g, b uint16) error {
	f.rec.add("levels %d,%d,%d", r, g, b)
	return nil
}

type fakeMatrix struct{ rec *recorder }

func (f *fakeMatrix) SetColor(r, g, b uint8) error {
	f.rec.add("matrix %d,%d,%d", r, g, b)
	return nil
}

type fakeBuzzer struct {
	name string
	rec  *recorder
}

func (f *fakeBuzzer) PlayTone(hz uint16) error {
	f.rec.add("tone %s %d", f.name, hz)
	return nil
}

func (f *fakeBuzzer) StopTone() error {
	f.rec.add("stop %s", f.name)
	return nil
}

// fakeClock advances instantly on Sleep; onSleep lets tests hook into the loop
type fakeClock struct {
	rec     *recorder
	now     time.Time
	onSleep func(d time.Duration)
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.rec.add("sleep %s", d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(d)
	}
}

type fakeSink struct {
	reports []Report
	err     error
}

func (f *fakeSink) Publish(_ context.Context, r Report) error {
	f.reports = append(f.reports, r)
	return f.err
}

type rig struct {
	rec     *recorder
	color   *fakeColorSensor
	light   *fakeLightSensor
	display *fakeDisplay
	clock   *fakeClock
	hw      Hardware
}

func newRig() *rig {
	rec := &recorder{}
	r := &rig{
		rec:     rec,
		color:   &fakeColorSensor{},
		light:   &fakeLightSensor{},
		display: &fakeDisplay{rec: rec},
		clock:   &fakeClock{rec: rec, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	r.hw = Hardware{
		ColorSensor: r.color,
		LightSensor: r.light,
		Display:     r.display,
		Indicator:   &fakeIndicator{rec: rec},
		Matrix:      &fakeMatrix{rec: rec},
		ColorBuzzer: &fakeBuzzer{name: "A", rec: rec},
		AlertBuzzer: &fakeBuzzer{name: "B", rec: rec},
	}
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
