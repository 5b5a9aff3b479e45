package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeAttack
	EventTypeDeath
	EventTypeRespawn
	EventTypeChat
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is one entry of the gameplay event log
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`
	ActorID   string    `json:"actorId"` // Source actor (for rate limiting)
	Payload   []byte    `json:"payload"` // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeAttack:
		return "attack"
	case EventTypeDeath:
		return "death"
	case EventTypeRespawn:
		return "respawn"
	case EventTypeChat:
		return "chat"
	default:
		return "unknown"
	}
}

// TickPayload summarizes a tick boundary
type TickPayload struct {
	Seed          int64 `json:"seed"`
	PlayerCount   int   `json:"playerCount"`
	MonsterCount  int   `json:"monsterCount"`
	QueuedActions int   `json:"queuedActions"`
}

// AttackPayload records one resolved swing, hit or miss
type AttackPayload struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	HitChance  int    `json:"hitChance"`
	Damage     int    `json:"damage"`
	TargetHP   int    `json:"targetHp"`
}

// DeathPayload records an actor reaching zero hitpoints
type DeathPayload struct {
	ActorID  string `json:"actorId"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	KillerID string `json:"killerId"`
}

// PlayerJoinPayload contains player join details
type PlayerJoinPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	SpawnX     int    `json:"spawnX"`
	SpawnY     int    `json:"spawnY"`
}

// PlayerLeavePayload contains player leave details
type PlayerLeavePayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// RespawnPayload contains respawn event details
type RespawnPayload struct {
	ActorID   string `json:"actorId"`
	SpawnX    int    `json:"spawnX"`
	SpawnY    int    `json:"spawnY"`
	Hitpoints int    `json:"hitpoints"`
}

// ChatPayload records a chat line without its text
type ChatPayload struct {
	MessageID uint64 `json:"messageId"`
	Length    int    `json:"length"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, actorID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}
