package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/willheto/game-server/internal/chat"
	"github.com/willheto/game-server/internal/game"
	"github.com/willheto/game-server/internal/statesync"
)

// Inbound client events
const (
	EventPlayerMove       = "playerMove"
	EventPlayerAttackMove = "playerAttackMove"
	EventChatMessage      = "chatMessage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// HubConfig holds transport limits for the WebSocket hub.
type HubConfig struct {
	MaxConnections     int
	MaxConnsPerIP      int
	MaxSessionsPerUser int

	// Per-account inbound frame rate
	ActionsPerSecond float64
	ActionBurst      int

	// nil uses DefaultAllowedOrigins
	AllowedOrigins []string
}

// DefaultHubConfig returns production-safe limits
func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxConnections:     500,
		MaxConnsPerIP:      10,
		MaxSessionsPerUser: 1,
		ActionsPerSecond:   10,
		ActionBurst:        20,
	}
}

// wsMessage is the envelope used in both directions
type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type playerMoveData struct {
	TargetX *int `json:"targetX"`
	TargetY *int `json:"targetY"`
}

type playerAttackMoveData struct {
	EntityID string `json:"entityID"`
}

type chatMessageData struct {
	Message string `json:"message"`
}

// wsClient is one authenticated connection bound to one player
type wsClient struct {
	conn     *websocket.Conn
	ip       string
	username string
	playerID string
	send     chan []byte
	release  func()
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// It implements statesync.Broadcaster.
type WebSocketHub struct {
	world    GameWorld
	auth     Authenticator
	chat     *chat.Handler
	cfg      HubConfig
	upgrader websocket.Upgrader

	clients   map[*wsClient]bool
	broadcast chan []byte
	mu        sync.RWMutex
	stopChan  chan struct{}
	stopOnce  sync.Once
	stopped   bool

	sessions *SessionLimiter
	actions  *ActionLimiter
}

var _ statesync.Broadcaster = (*WebSocketHub)(nil)

// NewWebSocketHub creates a hub. chatHandler may be nil, which drops chat.
func NewWebSocketHub(world GameWorld, auth Authenticator, chatHandler *chat.Handler, cfg HubConfig) *WebSocketHub {
	defaults := DefaultHubConfig()
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaults.MaxConnections
	}
	if cfg.MaxConnsPerIP <= 0 {
		cfg.MaxConnsPerIP = defaults.MaxConnsPerIP
	}
	if cfg.MaxSessionsPerUser <= 0 {
		cfg.MaxSessionsPerUser = defaults.MaxSessionsPerUser
	}
	if cfg.ActionsPerSecond <= 0 {
		cfg.ActionsPerSecond = defaults.ActionsPerSecond
	}
	if cfg.ActionBurst <= 0 {
		cfg.ActionBurst = defaults.ActionBurst
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = DefaultAllowedOrigins
	}

	h := &WebSocketHub{
		world:     world,
		auth:      auth,
		chat:      chatHandler,
		cfg:       cfg,
		clients:   make(map[*wsClient]bool),
		broadcast: make(chan []byte, 256),
		stopChan:  make(chan struct{}),
		sessions:  NewSessionLimiter(cfg.MaxConnections, cfg.MaxConnsPerIP, cfg.MaxSessionsPerUser),
		actions:   NewActionLimiter(cfg.ActionsPerSecond, cfg.ActionBurst),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if IsAllowedOrigin(origin, h.cfg.AllowedOrigins) {
		return true
	}

	// Log rejected origin for security monitoring
	log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
	RecordConnectionRejected("origin")
	return false
}

// Run fans broadcasts out to clients until Stop is called
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Stop disconnects every client and ends Run
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		close(h.stopChan)
		h.actions.Stop()
	})
}

func (h *WebSocketHub) fanOut(message []byte) {
	var slow []*wsClient

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("🐢 Dropping slow client %s (%s)", c.username, c.ip)
		if h.removeClient(c) {
			c.conn.Close()
		}
	}
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.release()
	}
	h.mu.Unlock()
	UpdateWSConnections(0)
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	jsonBytes, err := json.Marshal(wsMessage{Event: event, Data: data})
	if err != nil {
		log.Printf("⚠️ Failed to marshal %s broadcast: %v", event, err)
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
		log.Printf("⚠️ Broadcast channel full, dropped %s", event)
	}
}

// SessionStats returns live session counts and rejections by reason
func (h *WebSocketHub) SessionStats() map[string]uint64 {
	stats := h.sessions.GetStats()
	for k, v := range h.actions.GetStats() {
		stats["actions_"+k] = v
	}
	return stats
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket authenticates, upgrades and binds a connection to a new player
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get client IP for rate limiting
	ip := GetClientIP(r)

	username, err := h.auth.Authenticate(tokenFromRequest(r))
	if err != nil {
		log.Printf("🔒 WebSocket auth failed from %s: %v", ip, err)
		RecordConnectionRejected("auth")
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		writeError(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	// Reserve a session slot before upgrading
	release, err := h.sessions.Acquire(ip, username)
	if err != nil {
		log.Printf("⚠️ WebSocket connection rejected for %s from %s: %v", username, ip, err)
		status, reason := sessionRejection(err)
		RecordConnectionRejected(reason)
		writeError(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		release()
		return
	}

	player, err := h.world.AddPlayer(username)
	if err != nil {
		log.Printf("⚠️ Could not add player %s: %v", username, err)
		if errors.Is(err, game.ErrWorldFull) {
			RecordConnectionRejected("world_full")
		}
		closeWithReason(conn, websocket.ClosePolicyViolation, err.Error())
		release()
		return
	}

	client := &wsClient{
		conn:     conn,
		ip:       ip,
		username: username,
		playerID: player.ID,
		send:     make(chan []byte, sendBufferSize),
		release:  release,
	}

	if err := h.addClient(client); err != nil {
		log.Printf("⚠️ Failed to send initial state to %s: %v", username, err)
		closeWithReason(conn, websocket.CloseInternalServerErr, "initial state")
		h.world.RemovePlayer(player.ID)
		release()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

// sessionRejection maps a SessionLimiter error to an HTTP status and metric reason
func sessionRejection(err error) (int, string) {
	switch {
	case errors.Is(err, ErrIPLimit):
		return http.StatusTooManyRequests, "ws_ip_limit"
	case errors.Is(err, ErrUserLimit):
		return http.StatusConflict, "ws_user_limit"
	default:
		return http.StatusServiceUnavailable, "ws_total_limit"
	}
}

// addClient queues the initial state and registers c under one lock, so no
// tick broadcast falls between the two.
func (h *WebSocketHub) addClient(c *wsClient) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return errors.New("hub stopped")
	}

	payload, err := statesync.EncodeInitialState(h.world.InitialState(c.playerID))
	if err != nil {
		return err
	}
	data, err := json.Marshal(wsMessage{Event: statesync.EventGameState, Data: payload})
	if err != nil {
		return err
	}
	c.send <- data

	h.clients[c] = true
	count := len(h.clients)
	log.Printf("📱 %s connected from %s as %s (%d total)", c.username, c.ip, c.playerID, count)
	UpdateWSConnections(count)
	return nil
}

// removeClient unregisters c and reports whether it was still registered
func (h *WebSocketHub) removeClient(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	c.release()

	count := len(h.clients)
	log.Printf("📱 %s disconnected (%d remaining)", c.username, count)
	UpdateWSConnections(count)
	return true
}

func (h *WebSocketHub) readPump(c *wsClient) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
		h.world.RemovePlayer(c.playerID)
		if h.chat != nil {
			h.chat.Forget(c.playerID)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error from %s: %v", c.username, err)
			}
			return
		}
		IncrementWSMessages("in")

		if !h.actions.Allow(c.username) {
			continue
		}
		h.handleMessage(c, message)
	}
}

func (h *WebSocketHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
			IncrementWSMessages("out")

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage turns one inbound frame into a world action or chat line.
// Malformed frames are dropped without a reply.
func (h *WebSocketHub) handleMessage(c *wsClient, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
		RecordActionDropped("malformed")
		return
	}

	switch msg.Event {
	case EventPlayerMove:
		var data playerMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.TargetX == nil || data.TargetY == nil {
			RecordActionDropped("malformed")
			return
		}
		h.enqueue(c, game.MoveAction(c.playerID, *data.TargetX, *data.TargetY))

	case EventPlayerAttackMove:
		var data playerAttackMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.EntityID == "" {
			RecordActionDropped("malformed")
			return
		}
		h.enqueue(c, game.AttackMoveAction(c.playerID, data.EntityID))

	case EventChatMessage:
		var data chatMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			RecordActionDropped("malformed")
			return
		}
		if h.chat == nil {
			return
		}
		_, err := h.chat.Handle(chat.InboundMessage{
			PlayerID:   c.playerID,
			Text:       data.Message,
			ReceivedAt: time.Now(),
		})
		if err != nil {
			RecordActionDropped("chat")
			if !errors.Is(err, chat.ErrRateLimited) && !errors.Is(err, chat.ErrEmptyMessage) {
				log.Printf("⚠️ Chat from %s rejected: %v", c.username, err)
			}
		}

	default:
		log.Printf("📨 Unknown event %q from %s", msg.Event, c.username)
	}
}

func (h *WebSocketHub) enqueue(c *wsClient, action game.Action) {
	if err := h.world.EnqueueAction(action); err != nil {
		RecordActionDropped("invalid")
		log.Printf("⚠️ Dropped %s from %s: %v", action.Type, c.username, err)
	}
}

func closeWithReason(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	conn.Close()
}
