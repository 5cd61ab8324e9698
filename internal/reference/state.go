package reference

import (
	"sync/atomic"

	"github.com/saaga0h/colorlux/internal/color"
)

// State is the reference colour shown on the RGB indicator, cycled by button A
type State uint32

const (
	Red State = iota
	Green
	Blue
	Yellow
	Magenta
	Cyan
	White

	// Count is the number of reference states; Next wraps after White
	Count = 7
)

// PWMFull is the indicator PWM wrap value
const PWMFull uint16 = 65535

// Levels are the linear PWM duty levels of the indicator channels
type Levels struct {
	R uint16 `json:"r"`
	G uint16 `json:"g"`
	B uint16 `json:"b"`
}

// Duty levels tuned so the sensor reads each reference as intended; white stays below
// full scale to keep the sensor out of saturation.
var stateLevels = [Count]Levels{
	Red:     {R: PWMFull},
	Green:   {G: PWMFull},
	Blue:    {B: PWMFull},
	Yellow:  {R: PWMFull, G: 45000},
	Magenta: {R: 60000, B: 55000},
	Cyan:    {G: 58000, B: 58000},
	White:   {R: 52000, G: 52000, B: 52000},
}

var stateLabels = [Count]color.Label{
	Red:     color.Red,
	Green:   color.Green,
	Blue:    color.Blue,
	Yellow:  color.Yellow,
	Magenta: color.Magenta,
	Cyan:    color.Cyan,
	White:   color.White,
}

// Valid reports whether s is one of the seven reference states
func (s State) Valid() bool {
	return s < Count
}

// Next advances to the following state, wrapping White back to Red
func (s State) Next() State {
	return (s + 1) % Count
}

// Levels returns the indicator duty levels for s; anything out of range switches the indicator off
func (s State) Levels() Levels {
	if !s.Valid() {
		return Levels{}
	}
	return stateLevels[s]
}

// Label returns the colour label the sensor is expected to report for s
func (s State) Label() color.Label {
	if !s.Valid() {
		return color.Undefined
	}
	return stateLabels[s]
}

func (s State) String() string {
	return s.Label().String()
}

// Cell holds the current reference state as a single word so interrupt handlers and the
// main loop never observe a partial update.
type Cell struct {
	v atomic.Uint32
}

// Load returns the current state
func (c *Cell) Load() State {
	return State(c.v.Load())
}

// Store replaces the current state; out-of-range values are reduced modulo Count
func (c *Cell) Store(s State) {
	c.v.Store(uint32(s % Count))
}

// Advance moves to the next state and returns it
func (c *Cell) Advance() State {
	for {
		cur := c.v.Load()
		next := uint32(State(cur).Next())
		if c.v.CompareAndSwap(cur, next) {
			return State(next)
		}
	}
}

// MarshalText encodes the state by the name of its colour
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseState is the inverse of State.String
func ParseState(name string) (State, bool) {
	for s := Red; s < Count; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return Red, false
}
