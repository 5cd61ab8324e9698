package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/redis"
)

func TestSink_StoresReportsAndEvents(t *testing.T) {
	ctx := context.Background()
	storage, mem := newTestStorage(t)
	sink := NewSink(storage, "bench")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	reports := []sensing.Report{
		{Cycle: 1, Timestamp: now.Add(-3 * time.Second), Lux: 300, Label: color.Yellow, ToneHz: 294, Reference: reference.Red, ReferenceChanged: true},
		{Cycle: 2, Timestamp: now.Add(-2 * time.Second), Lux: 40, Label: color.Yellow, Alert: true},
		{Cycle: 3, Timestamp: now.Add(-time.Second), Lux: 40, Label: color.Yellow},
	}
	for _, r := range reports {
		require.NoError(t, sink.Publish(ctx, r))
	}

	count, err := mem.ZCard(ctx, redis.HistoryKey("bench"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	events, err := sink.Events(ctx)
	require.NoError(t, err)
	assert.Equal(t, "yellow", events[FieldLastColor])
	assert.Equal(t, "red", events[FieldLastReference])
	assert.Equal(t, "2026-03-01T08:59:58Z", events[FieldLastAlertAt])

	abstraction, err := sink.Summary(ctx, 60.1695, 24.9354, now)
	require.NoError(t, err)
	assert.Equal(t, 40.0, abstraction.CurrentLux)
	assert.Equal(t, "dim", abstraction.CurrentLabel)
	assert.True(t, abstraction.Sufficient)
	assert.Equal(t, 3, abstraction.Window2Min.Count)
}
