package reference

import (
	"sync/atomic"
	"time"
)

// DefaultDebounceWindow is the minimum time between two accepted presses
const DefaultDebounceWindow = 250 * time.Millisecond

const noPress = int64(-1)

// Clock supplies monotonic time to the debouncer
type Clock interface {
	Now() time.Time
}

// Debouncer turns falling edges of button A into reference state advances. Press is safe to
// call from interrupt handlers and from several goroutines: it never blocks and never allocates.
type Debouncer struct {
	cell   *Cell
	clock  Clock
	window time.Duration
	epoch  time.Time

	// last accepted press as nanoseconds since epoch
	last atomic.Int64

	accepted atomic.Uint64
	ignored  atomic.Uint64
}

// NewDebouncer creates a debouncer advancing cell. A window <= 0 uses DefaultDebounceWindow.
func NewDebouncer(cell *Cell, clock Clock, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	d := &Debouncer{
		cell:   cell,
		clock:  clock,
		window: window,
		epoch:  clock.Now(),
	}
	d.last.Store(noPress)
	return d
}

// Press handles one falling edge. It advances the state and returns true when at least the
// debounce window has elapsed since the last accepted press; otherwise the edge is ignored.
func (d *Debouncer) Press() bool {
	now := int64(d.clock.Now().Sub(d.epoch))
	last := d.last.Load()

	if last != noPress && now-last < int64(d.window) {
		d.ignored.Add(1)
		return false
	}

	// Another edge claimed this press first
	if !d.last.CompareAndSwap(last, now) {
		d.ignored.Add(1)
		return false
	}

	d.cell.Advance()
	d.accepted.Add(1)
	return true
}

// State returns the current reference state
func (d *Debouncer) State() State {
	return d.cell.Load()
}

// Counts returns how many edges were accepted and ignored so far
func (d *Debouncer) Counts() (accepted, ignored uint64) {
	return d.accepted.Load(), d.ignored.Load()
}

// ResetTrigger handles button B: every edge immediately runs the reset action, without
// debouncing. On hardware the action reboots into the bootloader and does not return.
type ResetTrigger struct {
	action func()
	fired  atomic.Bool
}

// NewResetTrigger creates a trigger running action on every edge
func NewResetTrigger(action func()) *ResetTrigger {
	return &ResetTrigger{action: action}
}

// Press handles one falling edge of the reset button. Every edge is accepted.
func (r *ResetTrigger) Press() bool {
	r.fired.Store(true)
	r.action()
	return true
}

// Fired reports whether the reset button was ever pressed
func (r *ResetTrigger) Fired() bool {
	return r.fired.Load()
}
