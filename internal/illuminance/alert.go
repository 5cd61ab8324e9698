package illuminance

// DefaultLowLightThreshold is the lux level below which the room counts as too dark
const DefaultLowLightThreshold uint16 = 50

// LowLightLatch fires once when lux drops below the threshold and re-arms only after lux
// recovers to the threshold or above.
type LowLightLatch struct {
	threshold uint16
	active    bool
}

// NewLowLightLatch creates a disarmed latch
func NewLowLightLatch(threshold uint16) *LowLightLatch {
	return &LowLightLatch{threshold: threshold}
}

// Update feeds one lux reading and reports whether the alert should fire for it
func (l *LowLightLatch) Update(lux uint16) bool {
	if !l.IsLow(lux) {
		l.active = false
		return false
	}
	if l.active {
		return false
	}

	l.active = true
	return true
}

// IsLow reports whether lux is below the threshold, independent of the latch
func (l *LowLightLatch) IsLow(lux uint16) bool {
	return lux < l.threshold
}

// Active reports whether an alert has fired for the current low-light episode
func (l *LowLightLatch) Active() bool {
	return l.active
}

// Threshold returns the configured threshold
func (l *LowLightLatch) Threshold() uint16 {
	return l.threshold
}
