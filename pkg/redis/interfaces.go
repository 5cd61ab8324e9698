package redis

import (
	"context"
	"time"
)

// ZMember is one entry of a history sorted set
type ZMember struct {
	Score  float64
	Member string
}

// Client is the subset of Redis the reading history needs. Readings live in a sorted set
// scored by unix milliseconds; the last events of a device live in a hash.
type Client interface {
	HSet(ctx context.Context, key string, field string, value interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	ZAdd(ctx context.Context, key string, score float64, member interface{}) error
	// ZRemRangeByScore trims a sorted set; min and max use Redis range syntax ("-inf", "(123")
	ZRemRangeByScore(ctx context.Context, key string, min, max string) error
	// ZRangeByScoreWithScores returns members with min <= score <= max, lowest score first
	ZRangeByScoreWithScores(ctx context.Context, key string, min, max float64) ([]ZMember, error)

	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping is used at startup and by the detailed health check
	Ping(ctx context.Context) error
	Close() error
}
