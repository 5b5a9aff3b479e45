package game

import (
	"log"
	"math"

	"github.com/google/uuid"
)

// Kind selects which update routine an actor runs. The numeric values are
// the wire "type" codes.
type Kind uint8

const (
	KindPlayer  Kind = 0
	KindNPC     Kind = 1
	KindMonster Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindNPC:
		return "npc"
	case KindMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// ActorState is the behavioral state derived from an actor's fields.
type ActorState uint8

const (
	StateIdle ActorState = iota
	StateSeekingTile
	StatePursuing
	StateAttacking
	StateDead
	StateRespawning
)

func (s ActorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeekingTile:
		return "seeking_tile"
	case StatePursuing:
		return "pursuing"
	case StateAttacking:
		return "attacking"
	case StateDead:
		return "dead"
	case StateRespawning:
		return "respawning"
	default:
		return "unknown"
	}
}

// StepSize is how far an actor moves per tick, in world units.
const StepSize = 1.0

var spriteCycles = map[Direction][3]int{
	DirUpLeft:    {1, 2, 3},
	DirUpRight:   {4, 5, 6},
	DirDownRight: {7, 8, 9},
	DirDownLeft:  {10, 11, 12},
}

// Actor is any simulated combatant. Players and monsters share this record;
// Kind picks the update routine and Wander the idle policy.
type Actor struct {
	ID          string
	Kind        Kind
	Name        string
	ExamineText string

	// Position is fractional while mid-step and integral at rest.
	X, Y  float64
	Spawn Tile

	Skills           Skills
	CurrentHitpoints int
	AttackStyle      string
	AttackSpeed      int
	Weapon           *Weapon
	attackCooldown   int

	// Movement target: a fixed tile, a followed actor, or (for one tick
	// while switching) both.
	TargetTile    *Tile
	NewTargetTile *Tile
	TargetID      string

	IsDead         bool
	RespawnTicks   int
	respawnCounter int

	Facing            string
	HpBarShown        bool
	HpBarCounter      int
	LastDamage        Damage
	lastDamageCounter int
	SpriteNum         int
	NextTileDirection Direction

	followCounter int
	wanderCounter int
	Wander        *WanderPolicy
}

func newActorID() string {
	return uuid.NewString()
}

func newActor(kind Kind, name string, spawn Tile, skills Skills, respawnTicks int) *Actor {
	a := &Actor{
		ID:           newActorID(),
		Kind:         kind,
		Name:         name,
		X:            float64(spawn.X),
		Y:            float64(spawn.Y),
		Spawn:        spawn,
		Skills:       skills,
		AttackStyle:  "melee",
		AttackSpeed:  AttackSpeedTicks,
		RespawnTicks: respawnTicks,
		Facing:       "down",
		SpriteNum:    1,
	}
	a.CurrentHitpoints = a.MaxHitpoints()
	return a
}

// MaxHitpoints is derived from hitpoints experience every time.
func (a *Actor) MaxHitpoints() int {
	return LevelFromExperience(a.Skills.Hitpoints)
}

// CombatLevel returns the actor's aggregate combat rating.
func (a *Actor) CombatLevel() int {
	return CombatLevel(a.Skills.Levels())
}

// Tile returns the tile the actor currently occupies.
func (a *Actor) Tile() Tile {
	return TileAt(a.X, a.Y)
}

// State derives the behavioral state from the actor's fields.
func (a *Actor) State() ActorState {
	switch {
	case a.IsDead && a.respawnCounter == 0:
		return StateDead
	case a.IsDead:
		return StateRespawning
	case a.TargetID != "" && a.attackCooldown > 0:
		return StateAttacking
	case a.TargetID != "":
		return StatePursuing
	case a.TargetTile != nil || a.NewTargetTile != nil:
		return StateSeekingTile
	default:
		return StateIdle
	}
}

func (a *Actor) update(w *World, actions []Action) {
	switch a.Kind {
	case KindPlayer:
		a.updatePlayer(w, actions)
	default:
		a.updateMonster(w)
	}
}

// tickRespawn advances the death countdown. It reports true when the actor
// spent this tick dead or respawning and must do nothing else.
func (a *Actor) tickRespawn(w *World) bool {
	if !a.IsDead {
		return false
	}
	a.respawnCounter++
	a.resetToSpawn()
	if a.respawnCounter >= a.RespawnTicks {
		a.IsDead = false
		a.respawnCounter = 0
		a.CurrentHitpoints = a.MaxHitpoints()
		w.emitRespawn(a)
	}
	return true
}

// resetToSpawn puts the actor back at its spawn with full hitpoints and no
// transient combat or display state.
func (a *Actor) resetToSpawn() {
	a.CurrentHitpoints = a.MaxHitpoints()
	a.clearPursuit()
	a.X = float64(a.Spawn.X)
	a.Y = float64(a.Spawn.Y)
	a.HpBarShown = false
	a.HpBarCounter = 0
	a.LastDamage = Damage{}
	a.lastDamageCounter = 0
	a.NextTileDirection = DirNone
	a.attackCooldown = 0
	a.followCounter = 0
	a.wanderCounter = 0
}

func (a *Actor) clearPursuit() {
	a.TargetID = ""
	a.TargetTile = nil
	a.NewTargetTile = nil
}

// tickTimers decrements the per-tick cooldowns. Each runs at most once per
// tick.
func (a *Actor) tickTimers() {
	if a.attackCooldown > 0 {
		a.attackCooldown--
	}
	if a.lastDamageCounter > 0 {
		a.lastDamageCounter--
	} else {
		a.LastDamage = Damage{}
	}
	if a.HpBarCounter > 0 {
		a.HpBarCounter--
	} else {
		a.HpBarShown = false
	}
}

// effectiveTarget resolves where the actor is heading this tick. A followed
// actor is re-read every tick so pursuit tracks its live position.
func (a *Actor) effectiveTarget(w *World) (Tile, bool) {
	if a.TargetTile != nil && a.NewTargetTile != nil && a.TargetID != "" {
		return *a.TargetTile, true
	}
	if a.TargetID != "" {
		target := w.lookup(a.TargetID)
		if target == nil {
			log.Printf("⚠️ %s lost target %s", a.Name, a.TargetID)
			a.clearPursuit()
			return Tile{}, false
		}
		if target.IsDead {
			a.clearPursuit()
			return Tile{}, false
		}
		return target.Tile(), true
	}
	if a.TargetTile != nil {
		return *a.TargetTile, true
	}
	if a.NewTargetTile != nil {
		return *a.NewTargetTile, true
	}
	return Tile{}, false
}

func (a *Actor) moveTowardsTarget(w *World) {
	goal, ok := a.effectiveTarget(w)
	if !ok {
		return
	}
	path := FindPath(a.Tile(), goal, w.grid)

	// In reach of a followed actor: swing instead of stepping.
	if a.TargetID != "" && path != nil && len(path) <= 2 {
		target := w.lookup(a.TargetID)
		if target == nil {
			log.Printf("⚠️ %s lost target %s", a.Name, a.TargetID)
			a.clearPursuit()
			return
		}
		if manhattan(a.Tile(), target.Tile()) <= 1 {
			a.attack(w, target)
			a.NextTileDirection = DirNone
			a.TargetTile = nil
			a.NewTargetTile = nil
			return
		}
	}

	var redirect *Tile
	if a.NewTargetTile != nil && a.TargetTile != nil && *a.NewTargetTile != *a.TargetTile {
		from := a.Tile()
		if len(path) > 1 {
			from = path[1]
		}
		if p := FindPath(from, *a.NewTargetTile, w.grid); len(p) > 1 {
			step := p[1]
			redirect = &step
		}
	}

	if len(path) > 1 {
		a.moveAlongPath(path, redirect)
	}
}

// moveAlongPath advances one step along path. When redirect is set the actor
// lands on the next node and turns toward the new route instead.
func (a *Actor) moveAlongPath(path []Tile, redirect *Tile) {
	next := path[1]
	lastStep := len(path) == 2

	switch {
	case redirect != nil:
		a.X = float64(next.X)
		a.Y = float64(next.Y)
		a.face(float64(redirect.X-next.X), float64(redirect.Y-next.Y))
	case a.NewTargetTile != nil:
		// Fresh command: turn toward the first step, walk from next tick.
		a.face(float64(next.X)-a.X, float64(next.Y)-a.Y)
	default:
		dx := float64(next.X) - a.X
		dy := float64(next.Y) - a.Y
		dist := math.Hypot(dx, dy)
		if dist > StepSize {
			a.X += dx / dist * StepSize
			a.Y += dy / dist * StepSize
		} else {
			a.X = float64(next.X)
			a.Y = float64(next.Y)
		}
		if lastStep {
			a.TargetTile = nil
			a.NextTileDirection = DirNone
		} else {
			after := path[2]
			a.face(float64(after.X-next.X), float64(after.Y-next.Y))
		}
	}

	if a.NewTargetTile != nil {
		a.TargetTile = a.NewTargetTile
	}
	a.NewTargetTile = nil
}

// directionOf maps a movement delta onto the four diagonal classes. Pure
// horizontal and vertical deltas collapse onto a diagonal.
func directionOf(dx, dy float64) Direction {
	switch {
	case dx > 0 && dy < 0:
		return DirUpRight
	case dx > 0 && dy > 0:
		return DirDownRight
	case dx < 0 && dy < 0:
		return DirUpLeft
	case dx < 0 && dy > 0:
		return DirDownLeft
	case dx > 0:
		return DirDownRight
	case dx < 0:
		return DirUpLeft
	case dy > 0:
		return DirDownLeft
	case dy < 0:
		return DirUpRight
	}
	return DirNone
}

func (a *Actor) face(dx, dy float64) {
	a.NextTileDirection = directionOf(dx, dy)
	if a.NextTileDirection != DirNone {
		a.SpriteNum = nextSprite(a.NextTileDirection, a.SpriteNum)
	}
}

// nextSprite advances the 3-frame cycle for d. A sprite from another cycle
// restarts at the first frame.
func nextSprite(d Direction, current int) int {
	frames, ok := spriteCycles[d]
	if !ok {
		return current
	}
	for i, f := range frames {
		if f == current {
			return frames[(i+1)%len(frames)]
		}
	}
	return frames[0]
}

// attack resolves one combat exchange against target if the cooldown allows.
func (a *Actor) attack(w *World, target *Actor) {
	if target == a {
		log.Printf("⚠️ %s tried to attack itself", a.Name)
		a.clearPursuit()
		return
	}
	if a.TargetID == "" || a.attackCooldown != 0 {
		return
	}
	if target.IsDead {
		a.clearPursuit()
		return
	}

	if dir := directionOf(target.X-a.X, target.Y-a.Y); dir != DirNone {
		a.SpriteNum = spriteCycles[dir][0]
	}
	a.attackCooldown = a.AttackSpeed

	mine := a.Skills.Levels()
	theirs := target.Skills.Levels()
	chance := HitChance(mine.Attack, theirs.Defence)
	damage := 0
	if RollAttack(w.rng, chance) {
		damage = AttackDamage(mine.Strength, a.Weapon)
	}

	target.CurrentHitpoints -= damage
	target.LastDamage = Damage{Amount: damage, Shown: true}
	target.lastDamageCounter = DamageDisplayTicks
	target.HpBarCounter = HitpointsBarTicks
	target.HpBarShown = true
	w.emitAttack(a, target, chance, damage)

	if target.CurrentHitpoints <= 0 {
		a.TargetID = ""
		a.TargetTile = nil
		target.IsDead = true
		target.clearPursuit()
		w.emitDeath(target, a)
	} else if target.TargetID == "" {
		target.TargetID = a.ID
	}

	a.followCounter = FollowDelayTicks
}

// Snapshot copies the client-visible fields.
func (a *Actor) Snapshot() ActorSnapshot {
	return ActorSnapshot{
		EntityID:            a.ID,
		WorldX:              a.X,
		WorldY:              a.Y,
		Name:                a.Name,
		Type:                a.Kind,
		Direction:           a.Facing,
		CurrentHitpoints:    a.CurrentHitpoints,
		HitpointsExperience: a.Skills.Hitpoints,
		AttackStyle:         a.AttackStyle,
		IsHpBarShown:        a.HpBarShown,
		ExamineText:         a.ExamineText,
		IsDead:              a.IsDead,
		LastDamageDealt:     a.LastDamage,
		SpriteNum:           a.SpriteNum,
		NextTileDirection:   a.NextTileDirection,
		HpBarCounter:        a.HpBarCounter,
		CombatLevel:         a.CombatLevel(),
	}
}
