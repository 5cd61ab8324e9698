package illuminance

import (
	"math"
	"time"
)

// Reading is one stored cycle of the sensing loop
type Reading struct {
	Timestamp  time.Time `json:"timestamp"`
	Lux        float64   `json:"illuminance"`
	Color      string    `json:"color,omitempty"`
	Saturation float64   `json:"saturation,omitempty"`
	Brightness int       `json:"brightness,omitempty"`
}

// WindowStats summarises the readings of one time window
type WindowStats struct {
	Minutes    int     `json:"minutes"`
	AverageLux float64 `json:"average_lux"`
	MinLux     float64 `json:"min_lux"`
	MaxLux     float64 `json:"max_lux"`
	Count      int     `json:"count"`
	Trend      string  `json:"trend"`
	Stability  string  `json:"stability"`
	Label      string  `json:"label"`
}

// AnalyzeWindow computes statistics over the readings newer than now-windowMinutes
func AnalyzeWindow(readings []Reading, windowMinutes int, now time.Time) *WindowStats {
	stats := &WindowStats{
		Minutes:   windowMinutes,
		Trend:     "unknown",
		Stability: "unknown",
		Label:     "unknown",
	}

	cutoff := now.Add(-time.Duration(windowMinutes) * time.Minute)
	var inWindow []Reading
	for _, r := range readings {
		if r.Timestamp.After(cutoff) {
			inWindow = append(inWindow, r)
		}
	}
	if len(inWindow) == 0 {
		return stats
	}

	stats.MinLux = inWindow[0].Lux
	stats.MaxLux = inWindow[0].Lux
	var sum float64
	for _, r := range inWindow {
		sum += r.Lux
		stats.MinLux = math.Min(stats.MinLux, r.Lux)
		stats.MaxLux = math.Max(stats.MaxLux, r.Lux)
	}

	stats.Count = len(inWindow)
	stats.AverageLux = sum / float64(len(inWindow))
	stats.Trend = CalculateTrend(inWindow)
	stats.Stability = CalculateStability(inWindow, stats.AverageLux)
	stats.Label = LuxToLabel(stats.AverageLux)

	return stats
}

// CalculateTrend compares the average of the older half of the readings with the newer half.
// A change of more than 20% counts as brightening or dimming.
func CalculateTrend(readings []Reading) string {
	if len(readings) < 3 {
		return "unknown"
	}

	mid := len(readings) / 2
	older := meanLux(readings[:mid])
	newer := meanLux(readings[mid:])

	if older == 0 {
		if newer > 0 {
			return "brightening"
		}
		return "stable"
	}

	change := (newer - older) / older * 100
	switch {
	case change > 20:
		return "brightening"
	case change < -20:
		return "dimming"
	default:
		return "stable"
	}
}

// CalculateStability classifies the coefficient of variation of the readings
func CalculateStability(readings []Reading, avg float64) string {
	if len(readings) < 2 || avg == 0 {
		return "unknown"
	}

	var squared float64
	for _, r := range readings {
		d := r.Lux - avg
		squared += d * d
	}
	cv := math.Sqrt(squared/float64(len(readings))) / avg

	switch {
	case cv > 0.5:
		return "volatile"
	case cv > 0.2:
		return "variable"
	default:
		return "stable"
	}
}

// LuxToLabel converts a lux value to a semantic label
func LuxToLabel(lux float64) string {
	switch {
	case lux <= 10:
		return "dark"
	case lux <= 50:
		return "dim"
	case lux <= 200:
		return "moderate"
	case lux <= 500:
		return "bright"
	default:
		return "very_bright"
	}
}

func meanLux(readings []Reading) float64 {
	var sum float64
	for _, r := range readings {
		sum += r.Lux
	}
	return sum / float64(len(readings))
}
