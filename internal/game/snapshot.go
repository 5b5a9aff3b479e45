package game

import (
	"encoding/json"
	"strconv"
)

// Direction is one of the four diagonal facing classes, or none.
type Direction string

const (
	DirNone      Direction = ""
	DirUpLeft    Direction = "upLeft"
	DirUpRight   Direction = "upRight"
	DirDownRight Direction = "downRight"
	DirDownLeft  Direction = "downLeft"
)

// MarshalJSON encodes DirNone as null.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts null as DirNone.
func (d *Direction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = DirNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = Direction(s)
	return nil
}

// Damage is the last hit an actor took, shown for a few ticks. A hidden
// value encodes as null.
type Damage struct {
	Amount int
	Shown  bool
}

// MarshalJSON encodes a hidden value as null.
func (d Damage) MarshalJSON() ([]byte, error) {
	if !d.Shown {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(d.Amount), 10), nil
}

// UnmarshalJSON accepts null or an integer.
func (d *Damage) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Damage{}
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*d = Damage{Amount: n, Shown: true}
	return nil
}

// ActorSnapshot is an immutable copy of the client-visible actor fields.
// It holds only comparable values so two snapshots can be compared with ==.
type ActorSnapshot struct {
	EntityID            string    `json:"entityID"`
	WorldX              float64   `json:"worldX"`
	WorldY              float64   `json:"worldY"`
	Name                string    `json:"name"`
	Type                Kind      `json:"type"`
	Direction           string    `json:"direction"`
	CurrentHitpoints    int       `json:"currentHitpoints"`
	HitpointsExperience int       `json:"hitpointsExperience"`
	AttackStyle         string    `json:"attackStyle"`
	IsHpBarShown        bool      `json:"isHpBarShown"`
	ExamineText         string    `json:"examineText"`
	IsDead              bool      `json:"isDead"`
	LastDamageDealt     Damage    `json:"lastDamageDealt"`
	SpriteNum           int       `json:"spriteNum"`
	NextTileDirection   Direction `json:"nextTileDirection"`
	HpBarCounter        int       `json:"hpBarCounter"`
	CombatLevel         int       `json:"combatLevel"`
}

// ChatMessage is one entry of the world chat log. ID increases by one per
// message and never repeats within a world.
type ChatMessage struct {
	ID       uint64 `json:"id"`
	PlayerID string `json:"playerID"`
	TimeSent int64  `json:"timeSent"`
	Message  string `json:"message"`
}

// Snapshot is the full client-visible world state built at the end of a
// tick. It is never mutated after construction.
type Snapshot struct {
	Tick           uint64          `json:"-"`
	TickUpdateTime int64           `json:"tickUpdateTime"`
	Players        []ActorSnapshot `json:"players"`
	Entities       []ActorSnapshot `json:"entities"`
	ChatMessages   []ChatMessage   `json:"chatMessages"`
	WorldMap       [][]int         `json:"worldMap,omitempty"`
	OnlinePlayers  []string        `json:"onlinePlayers"`
}

// InitialState is sent once to a newly connected client.
type InitialState struct {
	TickUpdateTime int64           `json:"tickUpdateTime"`
	Players        []ActorSnapshot `json:"players"`
	Entities       []ActorSnapshot `json:"entities"`
	ChatMessages   []ChatMessage   `json:"chatMessages"`
	WorldMap       [][]int         `json:"worldMap"`
	PlayerID       string          `json:"playerID"`
}

// SnapshotHandler receives every tick's snapshot. It is called with the
// world lock held and must not call back into the World.
type SnapshotHandler interface {
	HandleSnapshot(snap *Snapshot)
}

// SnapshotHandlerFunc adapts a function to SnapshotHandler.
type SnapshotHandlerFunc func(snap *Snapshot)

// HandleSnapshot calls f(snap).
func (f SnapshotHandlerFunc) HandleSnapshot(snap *Snapshot) { f(snap) }

// FindActor returns the actor with id from either list.
func (s *Snapshot) FindActor(id string) (ActorSnapshot, bool) {
	for _, p := range s.Players {
		if p.EntityID == id {
			return p, true
		}
	}
	for _, e := range s.Entities {
		if e.EntityID == id {
			return e, true
		}
	}
	return ActorSnapshot{}, false
}
