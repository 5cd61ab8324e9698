package sensing

import (
	"time"

	"github.com/saaga0h/colorlux/internal/illuminance"
)

// Settings are the timing and threshold parameters of the sensing loop
type Settings struct {
	DeviceID string

	CycleInterval      time.Duration
	StabilizationDelay time.Duration
	BootSplashDelay    time.Duration
	ToneDuration       time.Duration

	AlertToneHz uint16
	AlertPulse  time.Duration
	AlertGap    time.Duration

	LowLightThreshold uint16

	// SensorReadRetries is how many extra attempts a failed sensor read gets within a cycle
	SensorReadRetries int
}

// DefaultSettings returns the timings of the reference board
func DefaultSettings() Settings {
	return Settings{
		DeviceID:           "colorlux",
		CycleInterval:      100 * time.Millisecond,
		StabilizationDelay: 120 * time.Millisecond,
		BootSplashDelay:    2 * time.Second,
		ToneDuration:       150 * time.Millisecond,
		AlertToneHz:        10000,
		AlertPulse:         200 * time.Millisecond,
		AlertGap:           200 * time.Millisecond,
		LowLightThreshold:  illuminance.DefaultLowLightThreshold,
	}
}
