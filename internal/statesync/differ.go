// Package statesync turns consecutive world snapshots into the per-tick
// delta messages sent to clients.
package statesync

import "github.com/willheto/game-server/internal/game"

// Diff is the client-visible change between two snapshots. Slices are never
// nil so they encode as [] rather than null.
type Diff struct {
	Players        []game.ActorSnapshot `json:"players"`
	Entities       []game.ActorSnapshot `json:"entities"`
	ChatMessages   []game.ChatMessage   `json:"chatMessages"`
	WorldMap       [][]int              `json:"worldMap,omitempty"`
	TickUpdateTime int64                `json:"tickUpdateTime"`
	OnlinePlayers  []string             `json:"onlinePlayers"`
}

// Empty reports whether nothing but the timestamp changed.
func (d Diff) Empty() bool {
	return len(d.Players) == 0 && len(d.Entities) == 0 &&
		len(d.ChatMessages) == 0 && d.WorldMap == nil
}

// Differ compares snapshots by actor id. It keeps an index between calls to
// avoid reallocating every tick, so one Differ must not be shared between
// goroutines.
type Differ struct {
	index map[string]game.ActorSnapshot
}

// NewDiffer creates a Differ.
func NewDiffer() *Differ {
	return &Differ{index: make(map[string]game.ActorSnapshot)}
}

// Diff returns what changed from prev to cur. A nil prev yields the whole of
// cur. Actors are matched by id, so reordering alone is not a change.
func (d *Differ) Diff(prev, cur *game.Snapshot) Diff {
	if cur == nil {
		return Diff{
			Players:       []game.ActorSnapshot{},
			Entities:      []game.ActorSnapshot{},
			ChatMessages:  []game.ChatMessage{},
			OnlinePlayers: []string{},
		}
	}
	if prev == nil {
		return full(cur)
	}

	out := Diff{
		Players:       d.changed(prev.Players, cur.Players),
		Entities:      d.changed(prev.Entities, cur.Entities),
		ChatMessages:  newMessages(prev.ChatMessages, cur.ChatMessages),
		OnlinePlayers: []string{},
	}
	if !sameGrid(prev.WorldMap, cur.WorldMap) {
		out.WorldMap = cur.WorldMap
	}
	return out
}

func full(s *game.Snapshot) Diff {
	return Diff{
		Players:       append([]game.ActorSnapshot{}, s.Players...),
		Entities:      append([]game.ActorSnapshot{}, s.Entities...),
		ChatMessages:  append([]game.ChatMessage{}, s.ChatMessages...),
		WorldMap:      s.WorldMap,
		OnlinePlayers: []string{},
	}
}

// changed returns the records in cur that are new or differ from prev.
func (d *Differ) changed(prev, cur []game.ActorSnapshot) []game.ActorSnapshot {
	if d.index == nil {
		d.index = make(map[string]game.ActorSnapshot)
	}
	clear(d.index)
	for _, a := range prev {
		d.index[a.EntityID] = a
	}

	out := make([]game.ActorSnapshot, 0)
	for _, a := range cur {
		old, ok := d.index[a.EntityID]
		if !ok || old != a {
			out = append(out, a)
		}
	}
	return out
}

// newMessages returns chat entries with an id above anything prev carried.
func newMessages(prev, cur []game.ChatMessage) []game.ChatMessage {
	var last uint64
	for _, m := range prev {
		if m.ID > last {
			last = m.ID
		}
	}

	out := make([]game.ChatMessage, 0)
	for _, m := range cur {
		if m.ID > last {
			out = append(out, m)
		}
	}
	return out
}

func sameGrid(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
