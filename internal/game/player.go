package game

import "log"

// Player defaults for newly connected accounts.
const (
	PlayerHitpointsXP  = 388 // level 5
	PlayerStrengthXP   = 500 // level 5
	PlayerRespawnTicks = 1
)

// NewPlayer creates a player actor at spawn.
func NewPlayer(name string, spawn Tile) *Actor {
	return newActor(KindPlayer, name, spawn, Skills{
		Hitpoints: PlayerHitpointsXP,
		Strength:  PlayerStrengthXP,
	}, PlayerRespawnTicks)
}

// updatePlayer applies this tick's commands in arrival order, then moves or
// attacks toward the resulting target.
func (a *Actor) updatePlayer(w *World, actions []Action) {
	if a.tickRespawn(w) {
		return
	}
	a.tickTimers()

	for _, act := range actions {
		a.applyAction(w, act)
	}

	a.moveTowardsTarget(w)
}

func (a *Actor) applyAction(w *World, act Action) {
	switch act.Type {
	case ActionMove:
		t := act.Target
		if !w.grid.InBounds(t) {
			return
		}
		if t == a.Tile() || (a.TargetTile != nil && *a.TargetTile == t && a.TargetID == "") {
			return
		}
		a.NewTargetTile = &t
		a.TargetID = ""

	case ActionAttackMove:
		target := w.lookup(act.EntityID)
		if target == nil {
			log.Printf("⚠️ %s attacked unknown entity %s", a.Name, act.EntityID)
			return
		}
		if target == a || target.IsDead {
			return
		}
		t := target.Tile()
		a.NewTargetTile = &t
		a.TargetID = target.ID

	default:
		log.Printf("⚠️ Unknown action %q from %s", act.Type, a.ID)
	}
}
