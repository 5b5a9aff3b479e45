package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/willheto/game-server/internal/game"
	"github.com/willheto/game-server/internal/minimap"
)

// GameWorld defines the world methods used by the API and the WebSocket hub.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type GameWorld interface {
	// AddPlayer creates a player for a newly authenticated connection
	AddPlayer(name string) (*game.Actor, error)
	// RemovePlayer drops a player when their connection closes
	RemovePlayer(id string) bool
	// EnqueueAction queues a client command for the next tick
	EnqueueAction(a game.Action) error
	// AddChatMessage appends a chat line immediately
	AddChatMessage(playerID, text string) (game.ChatMessage, error)
	// Snapshot returns the latest immutable tick snapshot
	Snapshot() *game.Snapshot
	// InitialState builds the first-contact payload for one client
	InitialState(playerID string) game.InitialState
	// Stats returns a point-in-time summary
	Stats() game.Stats
	// TileMap returns the static grid
	TileMap() *game.TileMap
	// EventLog returns the gameplay event log (may be stopped)
	EventLog() *game.EventLog
}

var _ GameWorld = (*game.World)(nil)

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    World: world,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// World is the running game world (required)
	World GameWorld

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// SessionStats optionally reports WebSocket session counters on /api/stats.
	SessionStats func() map[string]uint64

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses DefaultAllowedOrigins.
	CORSOrigins []string

	// Minimap controls /api/map.png. Zero value uses minimap.DefaultOptions().
	Minimap minimap.Options

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	world       GameWorld
	rateLimiter  *IPRateLimiter
	sessionStats func() map[string]uint64
	minimapOpts  minimap.Options
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine, which only starts when no RateLimiter is passed in:
//   - No network listeners are opened
//   - The world is never ticked
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = DefaultAllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	minimapOpts := cfg.Minimap
	if minimapOpts.TileSize == 0 {
		minimapOpts = minimap.DefaultOptions()
	}

	h := &routerHandlers{
		world:        cfg.World,
		rateLimiter:  rateLimiter,
		sessionStats: cfg.SessionStats,
		minimapOpts:  minimapOpts,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/map.png", h.handleGetMap)
	})

	r.Get("/health", h.handleHealth)

	return r
}

// metricsMiddleware records latency per route pattern, never per raw path
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
