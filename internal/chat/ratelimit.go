package chat

import (
	"sync"
	"time"
)

// RateLimiter implements per-player chat rate limiting
type RateLimiter struct {
	mu         sync.Mutex
	userCounts map[string]*userLimit
	config     RateLimitConfig
	stopChan   chan struct{}
	stopOnce   sync.Once
}

type userLimit struct {
	count     int
	windowEnd time.Time
	lastMsg   time.Time
}

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	// MaxPerWindow is max messages per window
	MaxPerWindow int
	// WindowDuration is the sliding window size
	WindowDuration time.Duration
	// CooldownDuration is minimum time between messages
	CooldownDuration time.Duration
}

// DefaultRateLimitConfig for chat messages
var DefaultRateLimitConfig = RateLimitConfig{
	MaxPerWindow:     5,                      // 5 messages
	WindowDuration:   5 * time.Second,        // per 5 seconds
	CooldownDuration: 300 * time.Millisecond, // 300ms between messages
}

// NewRateLimiter creates a new rate limiter. Call Stop to end its cleanup
// goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		userCounts: make(map[string]*userLimit),
		config:     cfg,
		stopChan:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a player can send a message now
func (rl *RateLimiter) Allow(playerID string) bool {
	return rl.allowAt(playerID, time.Now())
}

func (rl *RateLimiter) allowAt(playerID string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, exists := rl.userCounts[playerID]
	if !exists {
		rl.userCounts[playerID] = &userLimit{
			count:     1,
			windowEnd: now.Add(rl.config.WindowDuration),
			lastMsg:   now,
		}
		return true
	}

	// Check cooldown
	if now.Sub(limit.lastMsg) < rl.config.CooldownDuration {
		return false
	}

	// Check/reset window
	if now.After(limit.windowEnd) {
		limit.count = 1
		limit.windowEnd = now.Add(rl.config.WindowDuration)
		limit.lastMsg = now
		return true
	}

	if limit.count >= rl.config.MaxPerWindow {
		return false
	}

	limit.count++
	limit.lastMsg = now
	return true
}

// Forget drops the state for a player who left
func (rl *RateLimiter) Forget(playerID string) {
	rl.mu.Lock()
	delete(rl.userCounts, playerID)
	rl.mu.Unlock()
}

// Stop ends the cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// cleanup removes old entries every minute
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-5 * time.Minute)
			for key, limit := range rl.userCounts {
				if limit.lastMsg.Before(cutoff) {
					delete(rl.userCounts, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
