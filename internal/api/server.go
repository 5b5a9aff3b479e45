package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/willheto/game-server/internal/chat"
)

// ServerConfig bundles the transport dependencies of a Server.
type ServerConfig struct {
	Auth      Authenticator // required
	Chat      *chat.Handler // optional, nil drops chat
	Hub       HubConfig
	RateLimit RateLimitConfig
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	world       GameWorld
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates a new API server.
//
// IMPORTANT: The hub's fan-out loop does NOT start until Start() is called.
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(world GameWorld, cfg ServerConfig) *Server {
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit = DefaultRateLimitConfig
	}

	s := &Server{
		world:       world,
		wsHub:       NewWebSocketHub(world, cfg.Auth, cfg.Chat, cfg.Hub),
		rateLimiter: NewIPRateLimiter(cfg.RateLimit),
	}

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		World:        world,
		RateLimiter:  s.rateLimiter,
		SessionStats: s.wsHub.SessionStats,
		CORSOrigins:  cfg.Hub.AllowedOrigins,
	})

	// Add WebSocket routes (these need the wsHub instance)
	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need access to the wsHub instance, so they can't be
// part of the generic NewRouter factory.
func (s *Server) setupWebSocketRoutes() {
	// WebSocket endpoint (compatible with Socket.IO path)
	s.router.Get("/socket.io/", s.handleSocketIO)
	s.router.Get("/ws", s.handleWS)
}

// Hub returns the WebSocket hub. The world's snapshot pipeline broadcasts
// through it.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start runs the hub and serves HTTP until Stop is called.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 WebSocket: ws://localhost%s/ws?%s=<token>", addr, LoginTokenParam)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop disconnects clients and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// WebSocket handlers - these need access to wsHub

func (s *Server) handleSocketIO(w http.ResponseWriter, r *http.Request) {
	// Check if this is a WebSocket upgrade request
	if websocketUpgradeRequested(r) {
		s.wsHub.HandleWebSocket(w, r)
		return
	}

	// For polling fallback, return 404 (we only support WebSocket)
	writeError(w, "use websocket", http.StatusNotFound)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}

func websocketUpgradeRequested(r *http.Request) bool {
	for _, v := range r.Header.Values("Upgrade") {
		if strings.EqualFold(v, "websocket") {
			return true
		}
	}
	return false
}
