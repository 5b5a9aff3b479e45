package api

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-IP HTTP request limiter
type RateLimitConfig struct {
	RequestsPerSecond float64       // Requests allowed per second per IP
	Burst             int           // Maximum burst size
	CleanupInterval   time.Duration // How often idle buckets are dropped
}

// DefaultRateLimitConfig holds production-safe defaults
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	CleanupInterval:   5 * time.Minute,
}

// =============================================================================
// TOKEN BUCKETS
// =============================================================================

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

// tokenBuckets is a keyed set of token buckets with idle eviction. HTTP
// requests are keyed by client IP, socket frames by username.
type tokenBuckets struct {
	buckets  sync.Map // key -> *bucket
	limit    rate.Limit
	burst    int
	idle     time.Duration
	stopChan chan struct{}
	stopOnce sync.Once

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

func newTokenBuckets(perSecond float64, burst int, cleanup time.Duration) *tokenBuckets {
	if cleanup <= 0 {
		cleanup = DefaultRateLimitConfig.CleanupInterval
	}
	tb := &tokenBuckets{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     2 * cleanup,
		stopChan: make(chan struct{}),
	}
	go tb.evictLoop(cleanup)
	return tb
}

func (tb *tokenBuckets) allow(key string) bool {
	now := time.Now().UnixNano()
	v, ok := tb.buckets.Load(key)
	if !ok {
		b := &bucket{limiter: rate.NewLimiter(tb.limit, tb.burst)}
		v, _ = tb.buckets.LoadOrStore(key, b)
	}
	b := v.(*bucket)
	b.lastSeen.Store(now)

	if b.limiter.Allow() {
		tb.allowed.Add(1)
		return true
	}
	tb.rejected.Add(1)
	return false
}

func (tb *tokenBuckets) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-tb.stopChan:
			return
		case now := <-ticker.C:
			tb.evictIdle(now)
		}
	}
}

func (tb *tokenBuckets) evictIdle(now time.Time) {
	cutoff := now.Add(-tb.idle).UnixNano()
	tb.buckets.Range(func(key, v interface{}) bool {
		if v.(*bucket).lastSeen.Load() < cutoff {
			tb.buckets.Delete(key)
		}
		return true
	})
}

func (tb *tokenBuckets) stop() {
	tb.stopOnce.Do(func() { close(tb.stopChan) })
}

func (tb *tokenBuckets) stats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  tb.allowed.Load(),
		"rejected": tb.rejected.Load(),
	}
}

// =============================================================================
// HTTP REQUESTS
// =============================================================================

// IPRateLimiter throttles HTTP requests per client IP
type IPRateLimiter struct {
	buckets *tokenBuckets
}

// NewIPRateLimiter starts a limiter and its eviction goroutine
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: newTokenBuckets(cfg.RequestsPerSecond, cfg.Burst, cfg.CleanupInterval),
	}
}

// Stop ends the eviction goroutine
func (rl *IPRateLimiter) Stop() { rl.buckets.stop() }

// Allow reports whether one more request from ip fits its bucket
func (rl *IPRateLimiter) Allow(ip string) bool { return rl.buckets.allow(ip) }

// Middleware answers 429 once a client IP runs out of tokens
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns allowed and rejected request counts
func (rl *IPRateLimiter) GetStats() map[string]uint64 { return rl.buckets.stats() }

// =============================================================================
// PLAYER ACTIONS
// =============================================================================

// ActionLimiter throttles inbound socket frames per account. Buckets are
// keyed by username, so every session of an account shares one budget and a
// reconnect does not refill it.
type ActionLimiter struct {
	buckets *tokenBuckets
}

// NewActionLimiter creates a limiter allowing perSecond frames with burst
func NewActionLimiter(perSecond float64, burst int) *ActionLimiter {
	return &ActionLimiter{
		buckets: newTokenBuckets(perSecond, burst, DefaultRateLimitConfig.CleanupInterval),
	}
}

// Allow spends one token for username and counts a drop when none is left
func (al *ActionLimiter) Allow(username string) bool {
	if al.buckets.allow(username) {
		return true
	}
	RecordActionDropped("rate_limit")
	return false
}

// Stop ends the eviction goroutine
func (al *ActionLimiter) Stop() { al.buckets.stop() }

// GetStats returns allowed and rejected frame counts
func (al *ActionLimiter) GetStats() map[string]uint64 { return al.buckets.stats() }

// =============================================================================
// SESSIONS
// =============================================================================

var (
	// ErrServerFull means the hub holds MaxConnections sessions
	ErrServerFull = errors.New("too many connections")
	// ErrIPLimit means the client IP holds MaxConnsPerIP sessions
	ErrIPLimit = errors.New("too many connections from this address")
	// ErrUserLimit means the account already holds MaxSessionsPerUser sessions
	ErrUserLimit = errors.New("account already connected")
)

// SessionLimiter counts live game sessions in total, per IP and per
// authenticated username. A slot is held from before the upgrade until the
// connection is gone.
type SessionLimiter struct {
	mu      sync.Mutex
	total   int
	perIP   map[string]int
	perUser map[string]int

	maxTotal, maxPerIP, maxPerUser int

	rejected map[error]uint64
}

// NewSessionLimiter creates a limiter. A limit <= 0 disables that check.
func NewSessionLimiter(maxTotal, maxPerIP, maxPerUser int) *SessionLimiter {
	return &SessionLimiter{
		perIP:      make(map[string]int),
		perUser:    make(map[string]int),
		maxTotal:   maxTotal,
		maxPerIP:   maxPerIP,
		maxPerUser: maxPerUser,
		rejected:   make(map[error]uint64),
	}
}

// Acquire reserves a slot for username connecting from ip. On success the
// returned release func frees the slot; calls after the first are no-ops.
func (sl *SessionLimiter) Acquire(ip, username string) (release func(), err error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	switch {
	case sl.maxTotal > 0 && sl.total >= sl.maxTotal:
		err = ErrServerFull
	case sl.maxPerIP > 0 && sl.perIP[ip] >= sl.maxPerIP:
		err = ErrIPLimit
	case sl.maxPerUser > 0 && sl.perUser[username] >= sl.maxPerUser:
		err = ErrUserLimit
	}
	if err != nil {
		sl.rejected[err]++
		return nil, err
	}

	sl.total++
	sl.perIP[ip]++
	sl.perUser[username]++

	var once sync.Once
	return func() {
		once.Do(func() { sl.release(ip, username) })
	}, nil
}

func (sl *SessionLimiter) release(ip, username string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.total--
	sl.perIP[ip]--
	if sl.perIP[ip] <= 0 {
		delete(sl.perIP, ip)
	}
	sl.perUser[username]--
	if sl.perUser[username] <= 0 {
		delete(sl.perUser, username)
	}
}

// Sessions returns the live session count for an IP and a username
func (sl *SessionLimiter) Sessions(ip, username string) (byIP, byUser int) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.perIP[ip], sl.perUser[username]
}

// GetStats returns live sessions and rejections by reason
func (sl *SessionLimiter) GetStats() map[string]uint64 {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return map[string]uint64{
		"active":        uint64(sl.total),
		"rejectedTotal": sl.rejected[ErrServerFull],
		"rejectedIP":    sl.rejected[ErrIPLimit],
		"rejectedUser":  sl.rejected[ErrUserLimit],
	}
}

// =============================================================================
// CLIENT ADDRESS AND ORIGIN
// =============================================================================

// GetClientIP returns the first parseable address from X-Forwarded-For, then
// X-Real-IP, then the connection's RemoteAddr. Proxy headers can be forged
// unless a trusted proxy sets them.
func GetClientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// DefaultAllowedOrigins is used for CORS and WebSocket when none are configured
var DefaultAllowedOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// IsAllowedOrigin checks an origin against allowed patterns. A pattern may
// hold one "*" wildcard, matching any port or subdomain.
func IsAllowedOrigin(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	origin = strings.ToLower(origin)

	for _, pattern := range allowed {
		pattern = strings.ToLower(pattern)
		if pattern == "*" || pattern == origin {
			return true
		}
		if idx := strings.Index(pattern, "*"); idx >= 0 {
			prefix, suffix := pattern[:idx], pattern[idx+1:]
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}

	return false
}
