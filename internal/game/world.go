package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrWorldFull    = errors.New("world is full")
	ErrEmptyName    = errors.New("player name is empty")
	ErrEmptyMessage = errors.New("chat message is empty")
)

// WorldConfig configures a World.
type WorldConfig struct {
	TickInterval time.Duration
	MaxPlayers   int
	ChatHistory  int // newest messages carried in each snapshot
	ChatCapacity int // messages retained in memory
	Seed         int64
	PlayerSpawn  Tile
	TileMap      *TileMap
	Monsters     []MonsterSpawn
}

// DefaultWorldConfig returns the standard world: 600ms ticks, the default
// map and the starting monster population.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		TickInterval: 600 * time.Millisecond,
		MaxPlayers:   100,
		ChatHistory:  7,
		ChatCapacity: 100,
		Seed:         time.Now().UnixNano(),
		TileMap:      DefaultTileMap(),
		Monsters:     DefaultMonsterSpawns(),
	}
}

// TickStats describes one completed tick.
type TickStats struct {
	Tick     uint64
	Duration time.Duration
	Players  int
	Monsters int
}

// Stats is a point-in-time summary for the API.
type Stats struct {
	Tick           uint64 `json:"tick"`
	TickUpdateTime int64  `json:"tickUpdateTime"`
	Players        int    `json:"players"`
	Monsters       int    `json:"monsters"`
	AliveMonsters  int    `json:"aliveMonsters"`
	QueuedActions  int    `json:"queuedActions"`
	ChatMessages   int    `json:"chatMessages"`
	Running        bool   `json:"running"`
}

// World owns every actor, the action queue and the tick scheduler.
type World struct {
	mu       sync.RWMutex
	cfg      WorldConfig
	grid     *TileMap
	players  []*Actor
	entities []*Actor
	chat     []ChatMessage
	chatSeq  uint64
	queue    *ActionQueue
	rng      *rand.Rand

	tickCount      uint64
	tickUpdateTime int64 // unix millis

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	latest   atomic.Pointer[Snapshot]
	handler  SnapshotHandler
	onTick   func(TickStats)
	eventLog *EventLog
}

// NewWorld creates a world and spawns the configured monsters. Nothing runs
// until Start is called.
func NewWorld(cfg WorldConfig) *World {
	if cfg.TileMap == nil {
		cfg.TileMap = DefaultTileMap()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 600 * time.Millisecond
	}
	if cfg.ChatHistory <= 0 {
		cfg.ChatHistory = 7
	}
	if cfg.ChatCapacity < cfg.ChatHistory {
		cfg.ChatCapacity = cfg.ChatHistory
	}

	w := &World{
		cfg:            cfg,
		grid:           cfg.TileMap,
		queue:          NewActionQueue(),
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		eventLog:       NewEventLog(),
		tickUpdateTime: time.Now().UnixMilli(),
	}
	for _, spawn := range cfg.Monsters {
		for i := 0; i < spawn.Count; i++ {
			w.entities = append(w.entities, NewMonster(spawn.Template))
		}
	}
	w.latest.Store(w.buildSnapshot())
	return w
}

// SetSnapshotHandler registers the receiver of every tick's snapshot.
func (w *World) SetSnapshotHandler(h SnapshotHandler) {
	w.mu.Lock()
	w.handler = h
	w.mu.Unlock()
}

// OnTick registers a callback run at the end of each tick with the world
// lock held.
func (w *World) OnTick(fn func(TickStats)) {
	w.mu.Lock()
	w.onTick = fn
	w.mu.Unlock()
}

// StartEventLog begins writing gameplay events.
func (w *World) StartEventLog(opts EventLogOptions) error {
	return w.eventLog.Start(opts)
}

// StopEventLog flushes and closes the event log.
func (w *World) StopEventLog() {
	w.eventLog.Stop()
}

// EventLog exposes the event log for stats.
func (w *World) EventLog() *EventLog {
	return w.eventLog
}

// Start begins the tick loop
func (w *World) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.ticker = time.NewTicker(w.cfg.TickInterval)
	w.stopChan = make(chan struct{})
	ticker, stop := w.ticker, w.stopChan
	w.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				w.Tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 World started: tick every %v, %d monsters", w.cfg.TickInterval, len(w.entities))
}

// Stop stops the tick loop. Safe to call twice; Start may run it again.
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	w.ticker.Stop()
	close(w.stopChan)
	log.Println("🛑 World stopped")
}

// Tick advances the simulation by one step: players with their queued
// actions, then monsters, then the snapshot hand-off. Ticks never overlap.
func (w *World) Tick() {
	start := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.tickCount++
	w.eventLog.EmitSimple(EventTypeTick, w.tickCount, "", TickPayload{
		Seed:          w.cfg.Seed,
		PlayerCount:   len(w.players),
		MonsterCount:  len(w.entities),
		QueuedActions: w.queue.Len(),
	})

	for _, p := range w.players {
		p.update(w, w.queue.Drain(p.ID))
	}
	for _, m := range w.entities {
		m.update(w, nil)
	}

	w.tickUpdateTime = time.Now().UnixMilli()
	snap := w.buildSnapshot()
	w.latest.Store(snap)
	if w.handler != nil {
		w.handler.HandleSnapshot(snap)
	}
	if w.onTick != nil {
		w.onTick(TickStats{
			Tick:     w.tickCount,
			Duration: time.Since(start),
			Players:  len(w.players),
			Monsters: len(w.entities),
		})
	}
}

// AddPlayer spawns a player for an authenticated account.
func (w *World) AddPlayer(name string) (*Actor, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cfg.MaxPlayers > 0 && len(w.players) >= w.cfg.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players", ErrWorldFull, len(w.players))
	}

	p := NewPlayer(name, w.cfg.PlayerSpawn)
	w.players = append(w.players, p)
	w.eventLog.EmitSimple(EventTypePlayerJoin, w.tickCount, p.ID, PlayerJoinPayload{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		SpawnX:     p.Spawn.X,
		SpawnY:     p.Spawn.Y,
	})
	log.Printf("👤 %s joined the world (%d online)", name, len(w.players))
	return p, nil
}

// RemovePlayer drops a player and anything it still had queued.
func (w *World) RemovePlayer(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, p := range w.players {
		if p.ID != id {
			continue
		}
		w.players = append(w.players[:i], w.players[i+1:]...)
		w.queue.DropPlayer(id)
		w.eventLog.EmitSimple(EventTypePlayerLeave, w.tickCount, id, PlayerLeavePayload{
			PlayerID:   id,
			PlayerName: p.Name,
		})
		log.Printf("👋 %s left the world (%d online)", p.Name, len(w.players))
		return true
	}
	return false
}

// AddEntity registers a non-player actor.
func (w *World) AddEntity(a *Actor) {
	w.mu.Lock()
	w.entities = append(w.entities, a)
	w.mu.Unlock()
}

// RemoveEntity unregisters a non-player actor.
func (w *World) RemoveEntity(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return true
		}
	}
	return false
}

// EnqueueAction queues a command for the owning player's next update.
func (w *World) EnqueueAction(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}

	// Enqueue under the read lock so RemovePlayer cannot drop the queue
	// between the check and the append.
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.findPlayer(a.PlayerID) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, a.PlayerID)
	}

	w.queue.Enqueue(a)
	return nil
}

// PendingActions returns the number of queued actions for playerID.
func (w *World) PendingActions(playerID string) int {
	return w.queue.CountFor(playerID)
}

// GetEntityByID searches players, then monsters.
func (w *World) GetEntityByID(id string) *Actor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lookup(id)
}

// lookup is GetEntityByID for callers already holding the lock.
func (w *World) lookup(id string) *Actor {
	if p := w.findPlayer(id); p != nil {
		return p
	}
	for _, e := range w.entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (w *World) findPlayer(id string) *Actor {
	for _, p := range w.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddChatMessage appends to the chat log immediately; it is not tick-gated.
func (w *World) AddChatMessage(playerID, text string) (ChatMessage, error) {
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.findPlayer(playerID) == nil {
		return ChatMessage{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	w.chatSeq++
	msg := ChatMessage{
		ID:       w.chatSeq,
		PlayerID: playerID,
		TimeSent: time.Now().UnixMilli(),
		Message:  text,
	}
	w.chat = append(w.chat, msg)
	if over := len(w.chat) - w.cfg.ChatCapacity; over > 0 {
		w.chat = append(w.chat[:0], w.chat[over:]...)
	}
	w.eventLog.EmitSimple(EventTypeChat, w.tickCount, playerID, ChatPayload{
		MessageID: msg.ID,
		Length:    len(text),
	})
	return msg, nil
}

// Snapshot returns the snapshot built by the most recent tick.
func (w *World) Snapshot() *Snapshot {
	return w.latest.Load()
}

// InitialState builds the first-contact payload for a new client.
func (w *World) InitialState(playerID string) InitialState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := w.buildSnapshot()
	return InitialState{
		TickUpdateTime: w.tickUpdateTime,
		Players:        snap.Players,
		Entities:       snap.Entities,
		ChatMessages:   snap.ChatMessages,
		WorldMap:       w.grid.Rows(),
		PlayerID:       playerID,
	}
}

// TileMap returns the static grid. It is never mutated.
func (w *World) TileMap() *TileMap {
	return w.grid
}

// TickInterval returns the configured tick period.
func (w *World) TickInterval() time.Duration {
	return w.cfg.TickInterval
}

// Stats summarizes the world for monitoring.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	alive := 0
	for _, e := range w.entities {
		if !e.IsDead {
			alive++
		}
	}
	return Stats{
		Tick:           w.tickCount,
		TickUpdateTime: w.tickUpdateTime,
		Players:        len(w.players),
		Monsters:       len(w.entities),
		AliveMonsters:  alive,
		QueuedActions:  w.queue.Len(),
		ChatMessages:   len(w.chat),
		Running:        w.running,
	}
}

// buildSnapshot copies the client-visible state. Caller holds the lock.
func (w *World) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		Tick:           w.tickCount,
		TickUpdateTime: w.tickUpdateTime,
		Players:        make([]ActorSnapshot, 0, len(w.players)),
		Entities:       make([]ActorSnapshot, 0, len(w.entities)),
		OnlinePlayers:  make([]string, 0, len(w.players)),
	}
	for _, p := range w.players {
		snap.Players = append(snap.Players, p.Snapshot())
		snap.OnlinePlayers = append(snap.OnlinePlayers, p.ID)
	}
	for _, e := range w.entities {
		snap.Entities = append(snap.Entities, e.Snapshot())
	}

	from := len(w.chat) - w.cfg.ChatHistory
	if from < 0 {
		from = 0
	}
	snap.ChatMessages = append([]ChatMessage{}, w.chat[from:]...)
	return snap
}

func (w *World) emitAttack(attacker, target *Actor, chance, damage int) {
	w.eventLog.EmitSimple(EventTypeAttack, w.tickCount, attacker.ID, AttackPayload{
		AttackerID: attacker.ID,
		TargetID:   target.ID,
		HitChance:  chance,
		Damage:     damage,
		TargetHP:   target.CurrentHitpoints,
	})
}

func (w *World) emitDeath(victim, killer *Actor) {
	w.eventLog.EmitSimple(EventTypeDeath, w.tickCount, killer.ID, DeathPayload{
		ActorID:  victim.ID,
		Name:     victim.Name,
		Kind:     victim.Kind.String(),
		KillerID: killer.ID,
	})
	log.Printf("💀 %s was killed by %s", victim.Name, killer.Name)
}

func (w *World) emitRespawn(a *Actor) {
	w.eventLog.EmitSimple(EventTypeRespawn, w.tickCount, a.ID, RespawnPayload{
		ActorID:   a.ID,
		SpawnX:    a.Spawn.X,
		SpawnY:    a.Spawn.Y,
		Hitpoints: a.CurrentHitpoints,
	})
}
