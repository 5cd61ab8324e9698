package history

import (
	"context"
	"fmt"
	"time"

	"github.com/saaga0h/colorlux/internal/illuminance"
	"github.com/saaga0h/colorlux/internal/sensing"
)

// Event field names in the device metadata hash
const (
	FieldLastColor     = "last_color"
	FieldLastColorAt   = "last_color_at"
	FieldLastAlertAt   = "last_alert_at"
	FieldLastReference = "last_reference"
)

// Sink stores every cycle report of one device
type Sink struct {
	storage *Storage
	device  string
}

// NewSink creates a history sink for device
func NewSink(storage *Storage, device string) *Sink {
	return &Sink{storage: storage, device: device}
}

// Publish implements sensing.Sink
func (s *Sink) Publish(ctx context.Context, report sensing.Report) error {
	reading := illuminance.Reading{
		Timestamp:  report.Timestamp,
		Lux:        float64(report.Lux),
		Color:      report.Label.String(),
		Saturation: report.Saturation,
		Brightness: int(report.Brightness),
	}
	if err := s.storage.RecordReading(ctx, s.device, reading); err != nil {
		return fmt.Errorf("failed to record cycle %d: %w", report.Cycle, err)
	}

	at := report.Timestamp.UTC().Format(time.RFC3339)
	events := map[string]string{}
	if report.ToneHz > 0 {
		events[FieldLastColor] = report.Label.String()
		events[FieldLastColorAt] = at
	}
	if report.Alert {
		events[FieldLastAlertAt] = at
	}
	if report.ReferenceChanged {
		events[FieldLastReference] = report.Reference.String()
	}

	for field, value := range events {
		if err := s.storage.RecordEvent(ctx, s.device, field, value); err != nil {
			return err
		}
	}
	return nil
}

// Summary condenses the stored history for the status endpoint
func (s *Sink) Summary(ctx context.Context, lat, lon float64, now time.Time) (*Abstraction, error) {
	summary, err := s.storage.GetSummary(ctx, s.device, now)
	if err != nil {
		return nil, err
	}
	return Analyze(summary, lat, lon, now)
}

// Events returns the latest recorded events of the device
func (s *Sink) Events(ctx context.Context) (map[string]string, error) {
	return s.storage.GetEvents(ctx, s.device)
}
