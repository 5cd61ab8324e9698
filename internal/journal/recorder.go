package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
)

// driftWarnDistance is the cosine distance between successive anchors of one reference
// above which the indicator or sensor is considered to have drifted
const driftWarnDistance = 0.02

// Store is the part of the journal the recorder writes to
type Store interface {
	RecordAnchor(ctx context.Context, anchor *Anchor) error
	RecordEvent(ctx context.Context, event *Event) error
}

// Recorder turns cycle reports into anchors and events
type Recorder struct {
	store  Store
	device string
	logger *slog.Logger

	mu     sync.Mutex
	latest map[reference.State]*Anchor
}

// NewRecorder creates a recorder for device
func NewRecorder(store Store, device string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		device: device,
		logger: logger,
		latest: make(map[reference.State]*Anchor),
	}
}

// Seed primes the drift check with previously stored anchors
func (r *Recorder) Seed(anchors []*Anchor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range anchors {
		r.latest[a.Reference] = a
	}
}

// Publish implements sensing.Sink
func (r *Recorder) Publish(ctx context.Context, report sensing.Report) error {
	if report.ReferenceChanged {
		if err := r.recordAnchor(ctx, report); err != nil {
			return err
		}
	}

	if report.ToneHz > 0 {
		if err := r.store.RecordEvent(ctx, r.event(KindColor, report)); err != nil {
			return err
		}
	}
	if report.Alert {
		if err := r.store.RecordEvent(ctx, r.event(KindAlert, report)); err != nil {
			return err
		}
	}

	return nil
}

func (r *Recorder) recordAnchor(ctx context.Context, report sensing.Report) error {
	embedding, ok := Embed(report.Sample)
	if !ok {
		r.logger.Debug("Skipping anchor for black sample", "reference", report.Reference)
		return nil
	}

	anchor := &Anchor{
		Device:    r.device,
		Reference: report.Reference,
		Sample:    report.Sample,
		Lux:       report.Lux,
		Embedding: embedding,
		CreatedAt: report.Timestamp,
	}
	if err := r.store.RecordAnchor(ctx, anchor); err != nil {
		return fmt.Errorf("failed to record anchor: %w", err)
	}

	r.mu.Lock()
	previous := r.latest[anchor.Reference]
	r.latest[anchor.Reference] = anchor
	r.mu.Unlock()

	if previous != nil {
		drift := CosineDistance(previous.Embedding, anchor.Embedding)
		if drift > driftWarnDistance {
			r.logger.Warn("Reference anchor drifted",
				"reference", anchor.Reference,
				"distance", drift,
				"previous_anchor", previous.ID)
		}
	}

	r.logger.Info("Recorded calibration anchor", "reference", anchor.Reference, "anchor_id", anchor.ID)
	return nil
}

// Latest returns the most recent anchor of a reference state
func (r *Recorder) Latest(state reference.State) (*Anchor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.latest[state]
	return a, ok
}

func (r *Recorder) event(kind string, report sensing.Report) *Event {
	return &Event{
		Device:    r.device,
		Kind:      kind,
		Label:     report.Label,
		ToneHz:    report.ToneHz,
		Lux:       report.Lux,
		Sample:    report.Sample,
		Reference: report.Reference,
		CreatedAt: report.Timestamp,
	}
}
