package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestIsAllowedOrigin checks exact and wildcard patterns
func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"http://localhost:*", "https://game.example.com", "https://*.example.org"}

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"http://LOCALHOST:8080", true},
		{"https://game.example.com", true},
		{"https://play.example.org", true},
		{"https://example.org", false},
		{"https://evil.com", false},
		{"http://localhost.evil.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := IsAllowedOrigin(tt.origin, allowed); got != tt.want {
				t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}

	if !IsAllowedOrigin("https://anything.test", []string{"*"}) {
		t.Error("Bare wildcard should allow any origin")
	}
}

// TestIPRateLimiterMiddleware rejects bursts per IP
func TestIPRateLimiterMiddleware(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Hour,
	})
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/state", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Burst should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst, got %d", codes[2])
	}

	// Another IP has its own bucket
	req := httptest.NewRequest("GET", "/api/state", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Other IP should pass, got %d", rec.Code)
	}

	stats := rl.GetStats()
	if stats["rejected"] != 1 || stats["allowed"] != 3 {
		t.Errorf("Unexpected stats %v", stats)
	}
}

// TestGetClientIP prefers proxy headers
func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	if ip := GetClientIP(req); ip != "192.0.2.1" {
		t.Errorf("Expected RemoteAddr host, got %s", ip)
	}

	req.Header.Set("X-Real-IP", "198.51.100.7")
	if ip := GetClientIP(req); ip != "198.51.100.7" {
		t.Errorf("Expected X-Real-IP, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := GetClientIP(req); ip != "203.0.113.9" {
		t.Errorf("Expected first X-Forwarded-For entry, got %s", ip)
	}

	req.Header.Set("X-Forwarded-For", "unknown")
	if ip := GetClientIP(req); ip != "198.51.100.7" {
		t.Errorf("Expected unparseable X-Forwarded-For to be skipped, got %s", ip)
	}
}

// TestSessionLimiter caps sessions in total, per IP and per account
func TestSessionLimiter(t *testing.T) {
	sl := NewSessionLimiter(3, 2, 1)

	releaseA, err := sl.Acquire("10.0.0.1", "alice")
	if err != nil {
		t.Fatalf("First session should pass: %v", err)
	}
	if _, err := sl.Acquire("10.0.0.2", "alice"); !errors.Is(err, ErrUserLimit) {
		t.Errorf("Expected ErrUserLimit for a second alice session, got %v", err)
	}
	if _, err := sl.Acquire("10.0.0.1", "bob"); err != nil {
		t.Fatalf("Second session from the IP should pass: %v", err)
	}
	if _, err := sl.Acquire("10.0.0.1", "carol"); !errors.Is(err, ErrIPLimit) {
		t.Errorf("Expected ErrIPLimit, got %v", err)
	}
	if _, err := sl.Acquire("10.0.0.3", "dave"); err != nil {
		t.Fatalf("Third session should pass: %v", err)
	}
	if _, err := sl.Acquire("10.0.0.4", "erin"); !errors.Is(err, ErrServerFull) {
		t.Errorf("Expected ErrServerFull, got %v", err)
	}

	// Release is idempotent and frees both the IP and the account
	releaseA()
	releaseA()
	byIP, byUser := sl.Sessions("10.0.0.1", "alice")
	if byIP != 1 || byUser != 0 {
		t.Errorf("Expected 1 IP session and 0 alice sessions, got %d and %d", byIP, byUser)
	}
	if _, err := sl.Acquire("10.0.0.2", "alice"); err != nil {
		t.Errorf("Released account should reconnect: %v", err)
	}

	stats := sl.GetStats()
	if stats["active"] != 3 {
		t.Errorf("Expected 3 active sessions, got %d", stats["active"])
	}
	if stats["rejectedUser"] != 1 || stats["rejectedIP"] != 1 || stats["rejectedTotal"] != 1 {
		t.Errorf("Unexpected rejection stats %v", stats)
	}
}

// TestSessionLimiterUnlimited treats non-positive limits as disabled
func TestSessionLimiterUnlimited(t *testing.T) {
	sl := NewSessionLimiter(0, 0, 0)
	for i := 0; i < 50; i++ {
		if _, err := sl.Acquire("10.0.0.1", "alice"); err != nil {
			t.Fatalf("Session %d rejected: %v", i, err)
		}
	}
}

// TestActionLimiter shares one budget between sessions of an account
func TestActionLimiter(t *testing.T) {
	al := NewActionLimiter(0.001, 3)
	defer al.Stop()

	for i := 0; i < 3; i++ {
		if !al.Allow("alice") {
			t.Fatalf("Frame %d within burst should pass", i)
		}
	}
	if al.Allow("alice") {
		t.Error("Frame past burst should be dropped")
	}
	if !al.Allow("bob") {
		t.Error("Other account has its own budget")
	}

	stats := al.GetStats()
	if stats["allowed"] != 4 || stats["rejected"] != 1 {
		t.Errorf("Unexpected stats %v", stats)
	}
}

// TestTokenBucketsEvictIdle drops buckets unused for two cleanup periods
func TestTokenBucketsEvictIdle(t *testing.T) {
	tb := newTokenBuckets(1, 1, time.Hour)
	defer tb.stop()

	tb.allow("idle")
	if tb.allow("idle") {
		t.Fatal("Burst of 1 should be spent")
	}

	tb.evictIdle(time.Now().Add(time.Hour))
	if _, ok := tb.buckets.Load("idle"); !ok {
		t.Error("Bucket younger than the idle window should stay")
	}

	tb.evictIdle(time.Now().Add(3 * time.Hour))
	if _, ok := tb.buckets.Load("idle"); ok {
		t.Error("Idle bucket should be evicted")
	}

	// An evicted key starts over with a full bucket
	if !tb.allow("idle") {
		t.Error("Evicted key should get a fresh bucket")
	}
}
