package main

import (
	"context"
	"errors"
	"time"

	"github.com/saaga0h/colorlux/internal/history"
	"github.com/saaga0h/colorlux/internal/illuminance"
	"github.com/saaga0h/colorlux/internal/journal"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
)

// Status is the body of the /status endpoint
type Status struct {
	DeviceID  string               `json:"device_id"`
	BootID    string               `json:"boot_id,omitempty"`
	Reference reference.State      `json:"reference"`
	Cycles    uint64               `json:"cycles"`
	Presses   PressCounts          `json:"presses"`
	Last      *sensing.Report      `json:"last_report,omitempty"`
	Nearest   *journal.Match       `json:"nearest_reference,omitempty"`
	History   *history.Abstraction `json:"history,omitempty"`
	Events    map[string]string    `json:"events,omitempty"`
	Daylight  illuminance.Daylight `json:"daylight"`
	Dropped   map[string]uint64    `json:"dropped_reports,omitempty"`
}

// PressCounts counts reference button edges
type PressCounts struct {
	Accepted uint64 `json:"accepted"`
	Ignored  uint64 `json:"ignored"`
}

type statusSource struct {
	cfg       *config.Config
	agent     *sensing.Agent
	debouncer *reference.Debouncer
	sinks     *sinkSet
}

// Status gathers the live loop state plus whatever the enabled stores can add
func (s *statusSource) Status(ctx context.Context) (interface{}, error) {
	now := time.Now()
	accepted, ignored := s.debouncer.Counts()
	last, _ := s.agent.LastReport()

	st := &Status{
		DeviceID:  s.cfg.DeviceID,
		Reference: s.debouncer.State(),
		Cycles:    s.agent.Cycles(),
		Presses:   PressCounts{Accepted: accepted, Ignored: ignored},
		Last:      last,
		Daylight:  illuminance.DaylightAt(s.cfg.Latitude, s.cfg.Longitude, now),
		Dropped:   s.sinks.dropped(),
	}

	if s.sinks.publisher != nil {
		st.BootID = s.sinks.publisher.BootID().String()
	}

	if s.sinks.history != nil {
		summary, err := s.sinks.history.Summary(ctx, s.cfg.Latitude, s.cfg.Longitude, now)
		if err == nil {
			st.History = summary
		}
		events, err := s.sinks.history.Events(ctx)
		if err != nil {
			return nil, err
		}
		st.Events = events
	}

	if s.sinks.journal != nil && st.Last != nil {
		match, err := s.sinks.journal.NearestReference(ctx, s.cfg.DeviceID, st.Last.Sample)
		switch {
		case err == nil:
			st.Nearest = match
		case !errors.Is(err, journal.ErrNoAnchors) && !errors.Is(err, journal.ErrBlackSample):
			return nil, err
		}
	}

	return st, nil
}
