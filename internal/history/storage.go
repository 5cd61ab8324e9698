package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/saaga0h/colorlux/internal/illuminance"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/redis"
)

// minReadingsRequired is how many readings the last hour needs before statistics are trusted
const minReadingsRequired = 3

// DataSummary contains the stored readings of one device for several time windows
type DataSummary struct {
	Device            string
	LatestReading     *illuminance.Reading
	Last5Min          []illuminance.Reading
	Last30Min         []illuminance.Reading
	LastHour          []illuminance.Reading
	HasSufficientData bool
}

// Storage keeps the reading history of a device in a Redis sorted set scored by unix milliseconds
type Storage struct {
	redis     redis.Client
	retention time.Duration
	logger    *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(redisClient redis.Client, cfg *config.Config, logger *slog.Logger) *Storage {
	return &Storage{
		redis:     redisClient,
		retention: time.Duration(cfg.HistoryRetentionHours * float64(time.Hour)),
		logger:    logger,
	}
}

// RecordReading appends a reading and prunes everything older than the retention window
func (s *Storage) RecordReading(ctx context.Context, device string, reading illuminance.Reading) error {
	key := redis.HistoryKey(device)

	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	score := reading.Timestamp.UnixMilli()
	if err := s.redis.ZAdd(ctx, key, float64(score), payload); err != nil {
		return fmt.Errorf("failed to add reading to history: %w", err)
	}

	cutoff := score - s.retention.Milliseconds()
	if err := s.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10)); err != nil {
		s.logger.Warn("Failed to prune reading history", "device", device, "error", err)
	}

	if err := s.redis.Expire(ctx, key, s.retention); err != nil {
		return fmt.Errorf("failed to set TTL on reading history: %w", err)
	}

	return nil
}

// GetSummary retrieves the readings of the last 5 minutes, 30 minutes and retention window
func (s *Storage) GetSummary(ctx context.Context, device string, now time.Time) (*DataSummary, error) {
	key := redis.HistoryKey(device)

	lastHour, err := s.readingsSince(ctx, key, now.Add(-s.retention), now)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	summary := &DataSummary{
		Device:            device,
		Last5Min:          since(lastHour, now.Add(-5*time.Minute)),
		Last30Min:         since(lastHour, now.Add(-30*time.Minute)),
		LastHour:          lastHour,
		HasSufficientData: len(lastHour) >= minReadingsRequired,
	}
	if len(lastHour) > 0 {
		summary.LatestReading = &lastHour[len(lastHour)-1]
	}

	s.logger.Debug("Retrieved reading summary",
		"device", device,
		"5min_count", len(summary.Last5Min),
		"30min_count", len(summary.Last30Min),
		"hour_count", len(lastHour),
		"sufficient_data", summary.HasSufficientData)

	return summary, nil
}

func (s *Storage) readingsSince(ctx context.Context, key string, start, end time.Time) ([]illuminance.Reading, error) {
	values, err := s.redis.ZRangeByScoreWithScores(ctx, key, float64(start.UnixMilli()), float64(end.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	readings := make([]illuminance.Reading, 0, len(values))
	for _, item := range values {
		var r illuminance.Reading
		if err := json.Unmarshal([]byte(item.Member), &r); err != nil {
			s.logger.Warn("Failed to parse stored reading", "error", err, "key", key)
			continue
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = time.UnixMilli(int64(item.Score))
		}
		readings = append(readings, r)
	}

	return readings, nil
}

// since returns the suffix of time-ordered readings newer than cutoff
func since(readings []illuminance.Reading, cutoff time.Time) []illuminance.Reading {
	for i, r := range readings {
		if r.Timestamp.After(cutoff) {
			return readings[i:]
		}
	}
	return nil
}

// RecordEvent stores the latest value of a named event (e.g. last colour cue) in the device metadata hash
func (s *Storage) RecordEvent(ctx context.Context, device, field, value string) error {
	key := redis.MetaKey(device)
	if err := s.redis.HSet(ctx, key, field, value); err != nil {
		return fmt.Errorf("failed to record %s event: %w", field, err)
	}
	if err := s.redis.Expire(ctx, key, s.retention); err != nil {
		s.logger.Warn("Failed to set TTL on device metadata", "device", device, "error", err)
	}
	return nil
}

// GetEvents returns the device metadata hash
func (s *Storage) GetEvents(ctx context.Context, device string) (map[string]string, error) {
	return s.redis.HGetAll(ctx, redis.MetaKey(device))
}
