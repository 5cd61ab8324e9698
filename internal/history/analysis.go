package history

import (
	"fmt"
	"time"

	"github.com/saaga0h/colorlux/internal/illuminance"
)

// Abstraction is the reading history condensed for the status endpoint
type Abstraction struct {
	CurrentLux   float64                  `json:"current_lux"`
	CurrentLabel string                   `json:"current_label"`
	DataAge      string                   `json:"data_age"`
	Window2Min   *illuminance.WindowStats `json:"window_2min"`
	Window10Min  *illuminance.WindowStats `json:"window_10min"`
	Window30Min  *illuminance.WindowStats `json:"window_30min"`
	Daylight     illuminance.Daylight     `json:"daylight"`
	Sufficient   bool                     `json:"sufficient_data"`
}

// Analyze condenses a history summary into window statistics plus daylight context
func Analyze(summary *DataSummary, lat, lon float64, now time.Time) (*Abstraction, error) {
	if summary == nil || summary.LatestReading == nil {
		return nil, fmt.Errorf("no latest reading available")
	}

	latest := summary.LatestReading
	return &Abstraction{
		CurrentLux:   latest.Lux,
		CurrentLabel: illuminance.LuxToLabel(latest.Lux),
		DataAge:      now.Sub(latest.Timestamp).Round(time.Millisecond).String(),
		Window2Min:   illuminance.AnalyzeWindow(summary.Last5Min, 2, now),
		Window10Min:  illuminance.AnalyzeWindow(summary.Last30Min, 10, now),
		Window30Min:  illuminance.AnalyzeWindow(summary.LastHour, 30, now),
		Daylight:     illuminance.DaylightAt(lat, lon, now),
		Sufficient:   summary.HasSufficientData,
	}, nil
}
