package journal

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
)

// setupTestDB requires a PostgreSQL instance with the pgvector extension
func setupTestDB(t *testing.T) *sql.DB {
	t.Skip("Integration test - requires PostgreSQL with pgvector")
	return nil
}

func TestJournal_NearestReference(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	j := NewJournal(db)
	ctx := context.Background()
	require.NoError(t, j.Migrate(ctx))

	require.NoError(t, j.RecordAnchor(ctx, &Anchor{Device: "bench", Reference: reference.Red, Sample: color.Sample{R: 4000, G: 300, B: 200}}))
	require.NoError(t, j.RecordAnchor(ctx, &Anchor{Device: "bench", Reference: reference.Cyan, Sample: color.Sample{R: 200, G: 3000, B: 3100}}))

	match, err := j.NearestReference(ctx, "bench", color.Sample{R: 150, G: 2500, B: 2400})
	require.NoError(t, err)
	assert.Equal(t, reference.Cyan, match.Reference)

	_, err = j.NearestReference(ctx, "other", color.Sample{R: 1})
	assert.ErrorIs(t, err, ErrNoAnchors)
}

func TestJournal_NearestReferenceBlackSample(t *testing.T) {
	// Rejected before any query, so no database is needed
	j := NewJournal(nil)

	_, err := j.NearestReference(context.Background(), "bench", color.Sample{C: 12})
	assert.ErrorIs(t, err, ErrBlackSample)
}

func TestEmbed(t *testing.T) {
	_, ok := Embed(color.Sample{C: 500})
	assert.False(t, ok, "black sample has no direction")

	v, ok := Embed(color.Sample{R: 3, G: 4})
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.6, 0.8, 0}, v.Slice(), 1e-6)

	// Intensity does not matter, only chromaticity
	dim, _ := Embed(color.Sample{R: 30, G: 40})
	bright, _ := Embed(color.Sample{R: 3000, G: 4000})
	assert.InDelta(t, 0, CosineDistance(dim, bright), 1e-6)
}

func TestCosineDistance(t *testing.T) {
	red, _ := Embed(color.Sample{R: 1000})
	green, _ := Embed(color.Sample{G: 1000})
	yellow, _ := Embed(color.Sample{R: 1000, G: 1000})

	assert.InDelta(t, 1.0, CosineDistance(red, green), 1e-6)
	assert.InDelta(t, 1-0.70710678, CosineDistance(red, yellow), 1e-6)
	assert.Equal(t, 1.0, CosineDistance(red, pgvector.NewVector([]float32{1, 0})), "mismatched dimensions")
}

type memoryStore struct {
	anchors []*Anchor
	events  []*Event
}

func (m *memoryStore) RecordAnchor(_ context.Context, a *Anchor) error {
	m.anchors = append(m.anchors, a)
	return nil
}

func (m *memoryStore) RecordEvent(_ context.Context, e *Event) error {
	m.events = append(m.events, e)
	return nil
}

func TestRecorder(t *testing.T) {
	store := &memoryStore{}
	rec := NewRecorder(store, "bench", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	reports := []sensing.Report{
		{Cycle: 1, Timestamp: now, Sample: color.Sample{R: 4000, G: 200, B: 100}, Label: color.Red, ToneHz: 262, Reference: reference.Red, ReferenceChanged: true},
		{Cycle: 2, Timestamp: now, Sample: color.Sample{R: 4000, G: 200, B: 100}, Label: color.Red},
		{Cycle: 3, Timestamp: now, Label: color.Dark, Lux: 20, Alert: true, Reference: reference.Green, ReferenceChanged: true},
	}
	for _, r := range reports {
		require.NoError(t, rec.Publish(ctx, r))
	}

	// The black sample of cycle 3 is not anchored
	require.Len(t, store.anchors, 1)
	assert.Equal(t, reference.Red, store.anchors[0].Reference)
	assert.Equal(t, "bench", store.anchors[0].Device)

	require.Len(t, store.events, 2)
	assert.Equal(t, KindColor, store.events[0].Kind)
	assert.Equal(t, uint16(262), store.events[0].ToneHz)
	assert.Equal(t, KindAlert, store.events[1].Kind)
	assert.Equal(t, uint16(20), store.events[1].Lux)

	latest, ok := rec.Latest(reference.Red)
	require.True(t, ok)
	assert.Equal(t, store.anchors[0], latest)
	_, ok = rec.Latest(reference.Green)
	assert.False(t, ok)
}
