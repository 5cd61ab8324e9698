package illuminance

import (
	"testing"
	"time"
)

func TestLuxToLabel(t *testing.T) {
	tests := []struct {
		lux      float64
		expected string
	}{
		{0, "dark"},
		{10, "dark"},
		{11, "dim"},
		{50, "dim"},
		{51, "moderate"},
		{200, "moderate"},
		{201, "bright"},
		{500, "bright"},
		{501, "very_bright"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := LuxToLabel(tt.lux); got != tt.expected {
				t.Errorf("LuxToLabel(%.1f) = %s, want %s", tt.lux, got, tt.expected)
			}
		})
	}
}

func series(now time.Time, lux ...float64) []Reading {
	readings := make([]Reading, len(lux))
	for i, l := range lux {
		readings[i] = Reading{Timestamp: now.Add(-time.Duration(len(lux)-i) * time.Second), Lux: l}
	}
	return readings
}

func TestCalculateTrend(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		readings []Reading
		expected string
	}{
		{"insufficient data", series(now, 100, 200), "unknown"},
		{"brightening", series(now, 100, 110, 130, 150, 180), "brightening"},
		{"dimming", series(now, 200, 180, 150, 120, 100), "dimming"},
		{"stable", series(now, 100, 105, 98, 102, 103), "stable"},
		{"lights on from darkness", series(now, 0, 0, 40, 60), "brightening"},
		{"constant darkness", series(now, 0, 0, 0), "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTrend(tt.readings); got != tt.expected {
				t.Errorf("CalculateTrend() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCalculateStability(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		readings []Reading
		avg      float64
		expected string
	}{
		{"insufficient data", series(now, 100), 100, "unknown"},
		{"zero average", series(now, 0, 0), 0, "unknown"},
		{"stable", series(now, 100, 102, 98, 101, 99), 100, "stable"},
		{"variable", series(now, 100, 140, 80, 130, 90), 108, "variable"},
		{"volatile", series(now, 50, 200, 30, 180, 40), 100, "volatile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateStability(tt.readings, tt.avg); got != tt.expected {
				t.Errorf("CalculateStability() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestAnalyzeWindow(t *testing.T) {
	now := time.Now()
	readings := []Reading{
		{Timestamp: now.Add(-20 * time.Minute), Lux: 900},
		{Timestamp: now.Add(-90 * time.Second), Lux: 40},
		{Timestamp: now.Add(-60 * time.Second), Lux: 60},
		{Timestamp: now.Add(-30 * time.Second), Lux: 50},
	}

	stats := AnalyzeWindow(readings, 2, now)
	if stats.Count != 3 {
		t.Fatalf("expected 3 readings in window, got %d", stats.Count)
	}
	if stats.AverageLux != 50 || stats.MinLux != 40 || stats.MaxLux != 60 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Label != "dim" {
		t.Errorf("expected label dim, got %s", stats.Label)
	}

	empty := AnalyzeWindow(nil, 2, now)
	if empty.Count != 0 || empty.Trend != "unknown" || empty.Label != "unknown" {
		t.Errorf("unexpected empty window stats: %+v", empty)
	}
}
