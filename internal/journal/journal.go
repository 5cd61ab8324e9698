package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
)

// ErrNoAnchors is returned by NearestReference before any anchor was recorded
var ErrNoAnchors = errors.New("no calibration anchors recorded")

// ErrBlackSample is returned by NearestReference for a sample with all colour channels at zero
var ErrBlackSample = errors.New("black sample has no chromaticity")

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS colorlux_anchors (
		id UUID PRIMARY KEY,
		device TEXT NOT NULL,
		reference TEXT NOT NULL,
		channels INTEGER[] NOT NULL,
		lux INTEGER NOT NULL,
		embedding vector(3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS colorlux_anchors_device_idx ON colorlux_anchors (device, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS colorlux_events (
		id UUID PRIMARY KEY,
		device TEXT NOT NULL,
		kind TEXT NOT NULL,
		label TEXT NOT NULL,
		tone_hz INTEGER NOT NULL,
		lux INTEGER NOT NULL,
		channels INTEGER[] NOT NULL,
		reference TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS colorlux_events_device_idx ON colorlux_events (device, created_at DESC)`,
}

// Journal stores calibration anchors and loop events in PostgreSQL + pgvector
type Journal struct {
	db *sql.DB
}

// NewJournal creates a new journal instance
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates the journal tables when missing
func (j *Journal) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply journal schema: %w", err)
		}
	}
	return nil
}

// RecordAnchor stores a calibration anchor. The embedding is derived from the sample when unset.
func (j *Journal) RecordAnchor(ctx context.Context, anchor *Anchor) error {
	if len(anchor.Embedding.Slice()) == 0 {
		embedding, ok := Embed(anchor.Sample)
		if !ok {
			return fmt.Errorf("cannot anchor %s on a black sample", anchor.Reference)
		}
		anchor.Embedding = embedding
	}

	// Generate UUID if not provided
	if anchor.ID == uuid.Nil {
		anchor.ID = uuid.New()
	}
	if anchor.CreatedAt.IsZero() {
		anchor.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO colorlux_anchors (id, device, reference, channels, lux, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := j.db.ExecContext(ctx, query,
		anchor.ID,
		anchor.Device,
		anchor.Reference.String(),
		pq.Array(channels(anchor.Sample)),
		int(anchor.Lux),
		anchor.Embedding,
		anchor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert anchor: %w", err)
	}

	return nil
}

// RecordEvent stores a colour cue or alert
func (j *Journal) RecordEvent(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO colorlux_events (id, device, kind, label, tone_hz, lux, channels, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := j.db.ExecContext(ctx, query,
		event.ID,
		event.Device,
		event.Kind,
		event.Label.String(),
		int(event.ToneHz),
		int(event.Lux),
		pq.Array(channels(event.Sample)),
		event.Reference.String(),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s event: %w", event.Kind, err)
	}

	return nil
}

// LatestAnchors returns the most recent anchor of every reference state of a device
func (j *Journal) LatestAnchors(ctx context.Context, device string) ([]*Anchor, error) {
	query := `
		SELECT DISTINCT ON (reference)
			id, device, reference, channels, lux, embedding, created_at
		FROM colorlux_anchors
		WHERE device = $1
		ORDER BY reference, created_at DESC
	`

	rows, err := j.db.QueryContext(ctx, query, device)
	if err != nil {
		return nil, fmt.Errorf("failed to query anchors: %w", err)
	}
	defer rows.Close()

	var anchors []*Anchor
	for rows.Next() {
		var anchor Anchor
		var ref string
		var ch []int64
		var lux int

		if err := rows.Scan(
			&anchor.ID,
			&anchor.Device,
			&ref,
			pq.Array(&ch),
			&lux,
			&anchor.Embedding,
			&anchor.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan anchor row: %w", err)
		}

		state, ok := reference.ParseState(ref)
		if !ok {
			continue
		}
		anchor.Reference = state
		anchor.Sample = sampleFromChannels(ch)
		anchor.Lux = uint16(lux)
		anchors = append(anchors, &anchor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anchor rows: %w", err)
	}

	return anchors, nil
}

// NearestReference finds the reference state whose anchor is closest to sample by cosine distance
func (j *Journal) NearestReference(ctx context.Context, device string, sample color.Sample) (*Match, error) {
	embedding, ok := Embed(sample)
	if !ok {
		return nil, ErrBlackSample
	}

	query := `
		SELECT id, reference, embedding <=> $2 AS distance
		FROM colorlux_anchors
		WHERE device = $1
		ORDER BY embedding <=> $2
		LIMIT 1
	`

	var match Match
	var ref string
	err := j.db.QueryRowContext(ctx, query, device, embedding).Scan(&match.AnchorID, &ref, &match.Distance)
	if err == sql.ErrNoRows {
		return nil, ErrNoAnchors
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest anchor: %w", err)
	}

	state, ok := reference.ParseState(ref)
	if !ok {
		return nil, fmt.Errorf("unknown reference %q in anchor %s", ref, match.AnchorID)
	}
	match.Reference = state

	return &match, nil
}

// RecentEvents returns up to limit events of a device, newest first
func (j *Journal) RecentEvents(ctx context.Context, device string, limit int) ([]*Event, error) {
	query := `
		SELECT id, device, kind, label, tone_hz, lux, channels, reference, created_at
		FROM colorlux_events
		WHERE device = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := j.db.QueryContext(ctx, query, device, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var event Event
		var label, ref string
		var ch []int64
		var toneHz, lux int

		if err := rows.Scan(
			&event.ID,
			&event.Device,
			&event.Kind,
			&label,
			&toneHz,
			&lux,
			pq.Array(&ch),
			&ref,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		event.Label, _ = color.ParseLabel(label)
		event.Reference, _ = reference.ParseState(ref)
		event.ToneHz = uint16(toneHz)
		event.Lux = uint16(lux)
		event.Sample = sampleFromChannels(ch)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
