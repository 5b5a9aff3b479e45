package api

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/willheto/game-server/internal/game"
)

func newTestWorld(t *testing.T) *game.World {
	t.Helper()
	cfg := game.DefaultWorldConfig()
	cfg.Seed = 1
	cfg.Monsters = []game.MonsterSpawn{{Template: game.Bear, Count: 2}}
	return game.NewWorld(cfg)
}

func newTestRouter(t *testing.T, w GameWorld) *httptest.Server {
	t.Helper()
	router := NewRouter(RouterConfig{
		World: w,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000, // High limit for tests
			Burst:             1000,
			CleanupInterval:   time.Hour,
		},
		DisableLogging: true, // Quiet logs in tests
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// TestAPIGetState returns the latest snapshot as JSON
func TestAPIGetState(t *testing.T) {
	w := newTestWorld(t)
	w.AddPlayer("Player1")
	w.AddPlayer("Player2")
	w.Tick()

	ts := newTestRouter(t, w)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(snap.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(snap.Players))
	}
	if len(snap.Entities) != 2 {
		t.Errorf("Expected 2 monsters, got %d", len(snap.Entities))
	}
	if len(snap.OnlinePlayers) != 2 {
		t.Errorf("Expected 2 online players, got %d", len(snap.OnlinePlayers))
	}
}

// TestAPIGetStats reports world and limiter counters
func TestAPIGetStats(t *testing.T) {
	w := newTestWorld(t)
	w.AddPlayer("Player1")
	w.Tick()
	w.Tick()

	ts := newTestRouter(t, w)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		World       game.Stats        `json:"world"`
		RateLimiter map[string]uint64 `json:"rateLimiter"`
		EventLog    map[string]any    `json:"eventLog"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result.World.Tick != 2 {
		t.Errorf("Expected tick 2, got %d", result.World.Tick)
	}
	if result.World.Players != 1 || result.World.Monsters != 2 {
		t.Errorf("Expected 1 player and 2 monsters, got %d and %d", result.World.Players, result.World.Monsters)
	}
	if result.RateLimiter["allowed"] == 0 {
		t.Error("Expected the stats request to be counted")
	}
	if result.EventLog == nil {
		t.Error("Expected event log stats")
	}
}

// TestAPIGetMap serves a PNG of the whole grid
func TestAPIGetMap(t *testing.T) {
	w := newTestWorld(t)
	ts := newTestRouter(t, w)

	resp, err := http.Get(ts.URL + "/api/map.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	grid := w.TileMap()
	if img.Bounds().Dx() != grid.Width()*24 || img.Bounds().Dy() != grid.Height()*24 {
		t.Errorf("Unexpected image size %v", img.Bounds())
	}
}

// TestHealth is always OK
func TestHealth(t *testing.T) {
	ts := newTestRouter(t, newTestWorld(t))

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

// TestAPIRateLimited returns 429 once the burst is spent
func TestAPIRateLimited(t *testing.T) {
	router := NewRouter(RouterConfig{
		World: newTestWorld(t),
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 0.001,
			Burst:             1,
			CleanupInterval:   time.Hour,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	first, _ := http.Get(ts.URL + "/health")
	first.Body.Close()
	second, _ := http.Get(ts.URL + "/health")
	second.Body.Close()

	if first.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", first.StatusCode)
	}
	if second.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", second.StatusCode)
	}
}
