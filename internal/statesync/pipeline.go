package statesync

import (
	"log"
	"sync"
	"time"

	"github.com/willheto/game-server/internal/codec"
	"github.com/willheto/game-server/internal/game"
)

// EventGameState is the outbound event name for both the first-contact
// state and every per-tick delta.
const EventGameState = "gameState"

// Broadcaster fans a message out to every connected client.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// EncodeStats describes one encoded tick message.
type EncodeStats struct {
	Tick         uint64
	Bytes        int
	TableEntries int
	TableBytes   int
	Players      int
	Entities     int
	ChatMessages int
	Duration     time.Duration
}

// Pipeline is the world's SnapshotHandler: diff against the previous tick,
// stamp the timestamp and online list, encode, then broadcast.
type Pipeline struct {
	mu        sync.Mutex
	differ    *Differ
	prev      *game.Snapshot
	out       Broadcaster
	onEncoded func(EncodeStats)
}

// NewPipeline creates a pipeline writing to out.
func NewPipeline(out Broadcaster) *Pipeline {
	return &Pipeline{
		differ: NewDiffer(),
		out:    out,
	}
}

// OnEncoded registers a hook run after each message is encoded.
func (p *Pipeline) OnEncoded(fn func(EncodeStats)) {
	p.mu.Lock()
	p.onEncoded = fn
	p.mu.Unlock()
}

// HandleSnapshot implements game.SnapshotHandler.
func (p *Pipeline) HandleSnapshot(snap *game.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	diff := p.differ.Diff(p.prev, snap)
	diff.TickUpdateTime = snap.TickUpdateTime
	diff.OnlinePlayers = append(diff.OnlinePlayers, snap.OnlinePlayers...)
	p.prev = snap

	payload, err := codec.EncodeJSON(diff)
	if err != nil {
		log.Printf("⚠️ Failed to encode tick %d: %v", snap.Tick, err)
		return
	}
	if p.out != nil {
		p.out.Broadcast(EventGameState, payload)
	}

	if p.onEncoded != nil {
		p.onEncoded(EncodeStats{
			Tick:         snap.Tick,
			Bytes:        payload.Size(),
			TableEntries: len(payload.CodeTable),
			TableBytes:   payload.TableSize(),
			Players:      len(diff.Players),
			Entities:     len(diff.Entities),
			ChatMessages: len(diff.ChatMessages),
			Duration:     time.Since(start),
		})
	}
}

// Reset forgets the previous snapshot so the next tick is sent in full.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.prev = nil
	p.mu.Unlock()
}

// EncodeInitialState encodes the first-contact payload for one client.
func EncodeInitialState(state game.InitialState) (codec.Payload, error) {
	return codec.EncodeJSON(state)
}
