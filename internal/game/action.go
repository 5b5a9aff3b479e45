package game

import (
	"errors"
	"fmt"
	"sync"
)

// ActionType identifies a client command.
type ActionType string

const (
	ActionMove       ActionType = "move"
	ActionAttackMove ActionType = "playerAttackMove"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Action is a pending client command tagged with the submitting player.
type Action struct {
	PlayerID string     `json:"playerID"`
	Type     ActionType `json:"action"`
	Target   Tile       `json:"target"`   // move
	EntityID string     `json:"entityID"` // attack move
}

// MoveAction builds a tile-move command.
func MoveAction(playerID string, x, y int) Action {
	return Action{PlayerID: playerID, Type: ActionMove, Target: Tile{X: x, Y: y}}
}

// AttackMoveAction builds a pursue-and-attack command.
func AttackMoveAction(playerID, entityID string) Action {
	return Action{PlayerID: playerID, Type: ActionAttackMove, EntityID: entityID}
}

// Validate rejects actions missing required fields. Unknown types pass
// through so the tick can log them.
func (a Action) Validate() error {
	if a.PlayerID == "" {
		return fmt.Errorf("%w: missing player id", ErrInvalidAction)
	}
	switch a.Type {
	case "":
		return fmt.Errorf("%w: missing action type", ErrInvalidAction)
	case ActionAttackMove:
		if a.EntityID == "" {
			return fmt.Errorf("%w: attack move without entity id", ErrInvalidAction)
		}
	}
	return nil
}

// ActionQueue holds commands between ticks. Enqueue may be called from any
// goroutine; Drain is called by the tick.
type ActionQueue struct {
	mu      sync.Mutex
	pending []Action
}

// NewActionQueue creates an empty queue.
func NewActionQueue() *ActionQueue {
	return &ActionQueue{pending: make([]Action, 0, 64)}
}

// Enqueue appends an action in arrival order.
func (q *ActionQueue) Enqueue(a Action) {
	q.mu.Lock()
	q.pending = append(q.pending, a)
	q.mu.Unlock()
}

// Drain removes and returns every action submitted by playerID, preserving
// arrival order. Other players' actions stay queued.
func (q *ActionQueue) Drain(playerID string) []Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	var mine []Action
	kept := q.pending[:0]
	for _, a := range q.pending {
		if a.PlayerID == playerID {
			mine = append(mine, a)
		} else {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(q.pending); i++ {
		q.pending[i] = Action{}
	}
	q.pending = kept
	return mine
}

// DropPlayer discards everything queued by playerID.
func (q *ActionQueue) DropPlayer(playerID string) {
	q.Drain(playerID)
}

// Len returns the number of queued actions.
func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// CountFor returns the number of queued actions for playerID.
func (q *ActionQueue) CountFor(playerID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, a := range q.pending {
		if a.PlayerID == playerID {
			n++
		}
	}
	return n
}
