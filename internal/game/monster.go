package game

// WanderPolicy makes an idle monster pick a random tile now and then.
type WanderPolicy struct {
	IntervalTicks int     // check once every IntervalTicks ticks
	Chance        float64 // probability of moving on a check
	Area          int     // candidate tiles are [0, Area) on both axes
}

// DefaultWander checks every 8 ticks with a 50% chance over a 10x10 area.
func DefaultWander() WanderPolicy {
	return WanderPolicy{IntervalTicks: 8, Chance: 0.5, Area: 10}
}

// MonsterTemplate describes a monster type.
type MonsterTemplate struct {
	Name         string
	ExamineText  string
	Skills       Skills
	RespawnTicks int
	Spawn        Tile
	Wander       WanderPolicy
}

// MonsterSpawn places Count copies of a template at world creation.
type MonsterSpawn struct {
	Template MonsterTemplate
	Count    int
}

// Bear is a slow brawler with no offensive training.
var Bear = MonsterTemplate{
	Name:         "Bear",
	ExamineText:  "A big bear.",
	Skills:       Skills{Hitpoints: 388},
	RespawnTicks: 20,
	Spawn:        Tile{X: 0, Y: 0},
	Wander:       DefaultWander(),
}

// Skeleton trades some toughness for a little accuracy.
var Skeleton = MonsterTemplate{
	Name:         "Skeleton",
	ExamineText:  "A rattling skeleton.",
	Skills:       Skills{Hitpoints: 388, Attack: 83, Defence: 83},
	RespawnTicks: 15,
	Spawn:        Tile{X: 0, Y: 0},
	Wander:       DefaultWander(),
}

// DefaultMonsterSpawns is the starting population.
func DefaultMonsterSpawns() []MonsterSpawn {
	return []MonsterSpawn{
		{Template: Bear, Count: 2},
		{Template: Skeleton, Count: 3},
	}
}

// NewMonster creates a monster from a template.
func NewMonster(t MonsterTemplate) *Actor {
	a := newActor(KindMonster, t.Name, t.Spawn, t.Skills, t.RespawnTicks)
	a.ExamineText = t.ExamineText
	wander := t.Wander
	if wander.IntervalTicks > 0 {
		a.Wander = &wander
	}
	return a
}

// updateMonster runs the autonomous routine: wander when idle, otherwise
// chase and fight whoever it is targeting.
func (a *Actor) updateMonster(w *World) {
	if a.tickRespawn(w) {
		return
	}
	a.wanderStep(w)
	a.tickTimers()

	if a.TargetID != "" && a.followCounter > 0 {
		a.followCounter--
		return
	}
	a.moveTowardsTarget(w)
}

func (a *Actor) wanderStep(w *World) {
	if a.Wander == nil || a.TargetID != "" {
		return
	}
	a.wanderCounter++
	if a.wanderCounter < a.Wander.IntervalTicks {
		return
	}
	a.wanderCounter = 0
	if a.TargetTile != nil || a.Wander.Area <= 0 {
		return
	}
	if w.rng.Float64() >= a.Wander.Chance {
		return
	}
	t := Tile{X: w.rng.Intn(a.Wander.Area), Y: w.rng.Intn(a.Wander.Area)}
	if t == a.Tile() || !w.grid.Walkable(t) {
		return
	}
	a.NewTargetTile = &t
}
