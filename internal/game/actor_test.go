package game

import "testing"

// sturdy gives an actor enough hitpoints to survive a long exchange.
func sturdy(a *Actor) *Actor {
	a.Skills.Hitpoints = ExperienceForLevel(99)
	a.CurrentHitpoints = a.MaxHitpoints()
	return a
}

// TestDirectionOf checks every delta class, including the collapse of pure
// horizontal and vertical moves onto a diagonal
func TestDirectionOf(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   Direction
	}{
		{"up right", 1, -1, DirUpRight},
		{"down right", 1, 1, DirDownRight},
		{"up left", -1, -1, DirUpLeft},
		{"down left", -1, 1, DirDownLeft},
		{"right", 1, 0, DirDownRight},
		{"left", -1, 0, DirUpLeft},
		{"down", 0, 1, DirDownLeft},
		{"up", 0, -1, DirUpRight},
		{"half step right", 0.5, 0, DirDownRight},
		{"no movement", 0, 0, DirNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := directionOf(tt.dx, tt.dy); got != tt.want {
				t.Errorf("directionOf(%v, %v) = %q, want %q", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

// TestNextSprite checks the 3-frame cycles and the restart on a class change
func TestNextSprite(t *testing.T) {
	tests := []struct {
		name    string
		dir     Direction
		current int
		want    int
	}{
		{"down right first", DirDownRight, 7, 8},
		{"down right second", DirDownRight, 8, 9},
		{"down right wraps", DirDownRight, 9, 7},
		{"up left wraps", DirUpLeft, 3, 1},
		{"up right", DirUpRight, 4, 5},
		{"down left wraps", DirDownLeft, 12, 10},
		{"class change restarts", DirDownRight, 2, 7},
		{"initial sprite restarts", DirDownLeft, 1, 10},
		{"no direction keeps sprite", DirNone, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextSprite(tt.dir, tt.current); got != tt.want {
				t.Errorf("Expected sprite %d, got %d", tt.want, got)
			}
		})
	}
}

// TestWalkSpriteCycle walks east and checks position, facing and sprite
// after every tick
func TestWalkSpriteCycle(t *testing.T) {
	w := newTestWorld()
	p, _ := w.AddPlayer("walker")
	w.EnqueueAction(MoveAction(p.ID, 5, 0))

	steps := []struct {
		x      float64
		sprite int
		dir    Direction
	}{
		{0, 7, DirDownRight}, // turn only
		{1, 8, DirDownRight},
		{2, 9, DirDownRight},
		{3, 7, DirDownRight},
		{4, 8, DirDownRight},
		{5, 8, DirNone}, // arrived
	}

	for i, want := range steps {
		w.Tick()
		if p.X != want.x || p.Y != 0 {
			t.Errorf("Tick %d: expected (%v,0), got (%v,%v)", i+1, want.x, p.X, p.Y)
		}
		if p.SpriteNum != want.sprite {
			t.Errorf("Tick %d: expected sprite %d, got %d", i+1, want.sprite, p.SpriteNum)
		}
		if p.NextTileDirection != want.dir {
			t.Errorf("Tick %d: expected direction %q, got %q", i+1, want.dir, p.NextTileDirection)
		}
	}

	if p.State() != StateIdle {
		t.Errorf("Expected idle after arriving, got %v", p.State())
	}
}

// TestMoveRedirect lands on the next tile and turns toward a new target
// given mid-walk
func TestMoveRedirect(t *testing.T) {
	w := newTestWorld()
	p, _ := w.AddPlayer("walker")

	w.EnqueueAction(MoveAction(p.ID, 0, 3))
	w.Tick() // turn
	w.Tick() // (0,1)
	if p.Tile() != (Tile{0, 1}) {
		t.Fatalf("Expected (0,1) before redirect, got %v", p.Tile())
	}
	if p.SpriteNum != 11 {
		t.Errorf("Expected sprite 11 walking down, got %d", p.SpriteNum)
	}

	w.EnqueueAction(MoveAction(p.ID, 3, 2))
	w.Tick()

	if p.Tile() != (Tile{0, 2}) {
		t.Errorf("Expected to land on (0,2), got %v", p.Tile())
	}
	if p.NextTileDirection != DirDownRight {
		t.Errorf("Expected to face the new route, got %q", p.NextTileDirection)
	}
	if p.SpriteNum != 7 {
		t.Errorf("Expected sprite cycle restart at 7, got %d", p.SpriteNum)
	}
	if p.TargetTile == nil || *p.TargetTile != (Tile{3, 2}) {
		t.Fatalf("Expected target (3,2), got %v", p.TargetTile)
	}
	if p.NewTargetTile != nil {
		t.Error("Pending target should be consumed")
	}

	for i := 0; i < 3; i++ {
		w.Tick()
	}
	if p.Tile() != (Tile{3, 2}) || p.State() != StateIdle {
		t.Errorf("Expected idle at (3,2), got %v in %v", p.Tile(), p.State())
	}
}

// TestWanderPolicy checks the interval, the chance and the targeting guard
func TestWanderPolicy(t *testing.T) {
	w := newTestWorld()

	newWanderer := func(chance float64) *Actor {
		m := placidMonster(Tile{5, 5})
		m.Wander = &WanderPolicy{IntervalTicks: 8, Chance: chance, Area: 1}
		return m
	}

	t.Run("moves on the eighth tick", func(t *testing.T) {
		m := newWanderer(1)
		for i := 1; i < 8; i++ {
			m.wanderStep(w)
			if m.NewTargetTile != nil {
				t.Fatalf("Wandered early on tick %d", i)
			}
		}
		m.wanderStep(w)
		if m.NewTargetTile == nil || *m.NewTargetTile != (Tile{0, 0}) {
			t.Errorf("Expected wander target (0,0), got %v", m.NewTargetTile)
		}
	})

	t.Run("never with zero chance", func(t *testing.T) {
		m := newWanderer(0)
		for i := 0; i < 64; i++ {
			m.wanderStep(w)
		}
		if m.NewTargetTile != nil {
			t.Errorf("Expected no wander, got %v", m.NewTargetTile)
		}
	})

	t.Run("not while targeting", func(t *testing.T) {
		m := newWanderer(1)
		m.TargetID = "someone"
		for i := 0; i < 64; i++ {
			m.wanderStep(w)
		}
		if m.NewTargetTile != nil || m.wanderCounter != 0 {
			t.Errorf("Expected no wander while targeting, got %v (counter %d)", m.NewTargetTile, m.wanderCounter)
		}
	})

	t.Run("not while already walking", func(t *testing.T) {
		m := newWanderer(1)
		dest := Tile{6, 6}
		m.TargetTile = &dest
		for i := 0; i < 8; i++ {
			m.wanderStep(w)
		}
		if m.NewTargetTile != nil {
			t.Errorf("Expected the walk to continue, got %v", m.NewTargetTile)
		}
	})
}

// TestWanderRate picks a new tile on about half of the checks
func TestWanderRate(t *testing.T) {
	w := newTestWorld()
	m := placidMonster(Tile{5, 5})
	policy := DefaultWander()
	policy.Area = 1
	m.Wander = &policy

	const checks = 1000
	moves := 0
	for i := 0; i < checks*policy.IntervalTicks; i++ {
		m.wanderStep(w)
		if m.NewTargetTile != nil {
			moves++
			m.NewTargetTile = nil
		}
	}

	if moves < 400 || moves > 600 {
		t.Errorf("Expected about %d wanders out of %d checks, got %d", checks/2, checks, moves)
	}
}

// TestMonsterFollowDelay holds a monster in place after a swing before it
// closes in again
func TestMonsterFollowDelay(t *testing.T) {
	w := newTestWorld()
	p, _ := w.AddPlayer("bait")
	sturdy(p)
	m := sturdy(placidMonster(Tile{1, 0}))
	w.AddEntity(m)
	m.TargetID = p.ID

	w.Tick()
	if m.attackCooldown != m.AttackSpeed {
		t.Fatalf("Expected the monster to swing on the first tick, cooldown %d", m.attackCooldown)
	}

	// Step the player out of reach and keep it passive
	p.clearPursuit()
	p.X = 4

	for i := 0; i < FollowDelayTicks; i++ {
		w.Tick()
		p.clearPursuit()
		if m.Tile() != (Tile{1, 0}) {
			t.Fatalf("Monster moved during the follow delay (tick %d): %v", i+2, m.Tile())
		}
	}

	w.Tick()
	if m.Tile() != (Tile{2, 0}) {
		t.Errorf("Expected the monster to close in after the delay, got %v", m.Tile())
	}
}

// TestPlayerNoFollowDelay lets a player chase right after a swing
func TestPlayerNoFollowDelay(t *testing.T) {
	w := newTestWorld()
	p, _ := w.AddPlayer("chaser")
	sturdy(p)
	m := sturdy(placidMonster(Tile{1, 0}))
	w.AddEntity(m)

	w.EnqueueAction(AttackMoveAction(p.ID, m.ID))
	w.Tick()
	if p.attackCooldown != p.AttackSpeed {
		t.Fatalf("Expected the player to swing on the first tick, cooldown %d", p.attackCooldown)
	}

	m.clearPursuit()
	m.X = 4
	w.Tick()
	if p.Tile() != (Tile{1, 0}) {
		t.Errorf("Expected the player to step after the target, got %v", p.Tile())
	}
}

// TestAttackCooldownSpacing swings once every AttackSpeedTicks while in reach
func TestAttackCooldownSpacing(t *testing.T) {
	w := newTestWorld()
	p, _ := w.AddPlayer("fighter")
	sturdy(p)
	m := sturdy(placidMonster(Tile{1, 0}))
	w.AddEntity(m)

	w.EnqueueAction(AttackMoveAction(p.ID, m.ID))

	var swings []int
	for tick := 1; tick <= 3*AttackSpeedTicks+1; tick++ {
		w.Tick()
		if p.attackCooldown == p.AttackSpeed {
			swings = append(swings, tick)
		} else if p.State() != StateAttacking {
			t.Errorf("Tick %d: expected attacking between swings, got %v", tick, p.State())
		}
	}

	want := []int{1, 1 + AttackSpeedTicks, 1 + 2*AttackSpeedTicks, 1 + 3*AttackSpeedTicks}
	if len(swings) != len(want) {
		t.Fatalf("Expected swings on ticks %v, got %v", want, swings)
	}
	for i := range want {
		if swings[i] != want[i] {
			t.Errorf("Expected swings on ticks %v, got %v", want, swings)
			break
		}
	}
	if p.Tile() != (Tile{0, 0}) {
		t.Errorf("Player should attack in place, moved to %v", p.Tile())
	}
}
