package telemetry

import (
	"sync"
	"time"
)

// RateLimiter throttles messages per topic
type RateLimiter struct {
	mu          sync.RWMutex
	lastSentMap map[string]time.Time
	now         func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastSentMap: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow checks if enough time has passed since the last message on topic.
// Returns true and records the send if the message may go out.
func (rl *RateLimiter) Allow(topic string, minInterval time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	lastTime, exists := rl.lastSentMap[topic]
	if exists && now.Sub(lastTime) < minInterval {
		return false
	}

	rl.lastSentMap[topic] = now
	return true
}

// Record marks a message on topic as sent, used when an event forces a message through
func (rl *RateLimiter) Record(topic string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastSentMap[topic] = rl.now()
}

// LastSent returns when the last message on topic went out
func (rl *RateLimiter) LastSent(topic string) (time.Time, bool) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	lastTime, exists := rl.lastSentMap[topic]
	return lastTime, exists
}
