package game

import (
	"errors"
	"sync"
	"testing"
)

// TestActionValidate tests required fields per action type
func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"move", MoveAction("p1", 3, 4), false},
		{"attack move", AttackMoveAction("p1", "m1"), false},
		{"missing player", MoveAction("", 3, 4), true},
		{"missing type", Action{PlayerID: "p1"}, true},
		{"attack move without target", AttackMoveAction("p1", ""), true},
		{"unknown type passes through", Action{PlayerID: "p1", Type: "dance"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAction) {
					t.Errorf("Expected ErrInvalidAction, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestActionQueueDrainOrder verifies arrival order survives per player
func TestActionQueueDrainOrder(t *testing.T) {
	q := NewActionQueue()
	q.Enqueue(MoveAction("p1", 1, 0))
	q.Enqueue(MoveAction("p2", 5, 5))
	q.Enqueue(MoveAction("p1", 2, 0))
	q.Enqueue(AttackMoveAction("p1", "m1"))

	got := q.Drain("p1")
	if len(got) != 3 {
		t.Fatalf("Expected 3 actions for p1, got %d", len(got))
	}
	if got[0].Target.X != 1 || got[1].Target.X != 2 || got[2].Type != ActionAttackMove {
		t.Errorf("Actions out of order: %+v", got)
	}

	if n := q.CountFor("p1"); n != 0 {
		t.Errorf("Expected p1 queue empty after drain, got %d", n)
	}
	if n := q.Len(); n != 1 {
		t.Errorf("Expected p2 action to remain, got %d queued", n)
	}
	if got := q.Drain("p1"); len(got) != 0 {
		t.Errorf("Second drain should be empty, got %d", len(got))
	}
}

// TestActionQueueDropPlayer discards one player's commands only
func TestActionQueueDropPlayer(t *testing.T) {
	q := NewActionQueue()
	q.Enqueue(MoveAction("p1", 1, 0))
	q.Enqueue(MoveAction("p2", 1, 0))
	q.DropPlayer("p1")

	if q.CountFor("p1") != 0 {
		t.Error("p1 actions should be dropped")
	}
	if q.CountFor("p2") != 1 {
		t.Error("p2 actions should be kept")
	}
}

// TestActionQueueConcurrent enqueues from many goroutines
func TestActionQueueConcurrent(t *testing.T) {
	q := NewActionQueue()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Enqueue(MoveAction("p1", i, j))
			}
		}(i)
	}
	wg.Wait()

	if got := len(q.Drain("p1")); got != 1000 {
		t.Errorf("Expected 1000 actions, got %d", got)
	}
}
