package game

import (
	"math"
	"math/rand"
)

// Combat timing, in ticks. All timers are tick-counted so a replay with the
// same seed resolves identically.
const (
	AttackSpeedTicks      = 4  // ticks between attacks
	FollowDelayTicks      = 2  // reaction lag before closing in again
	DamageDisplayTicks    = 3  // how long lastDamageDealt stays visible
	HitpointsBarTicks     = 10 // how long the hp bar stays visible
	MinHitChance          = 5
	MaxHitChance          = 95
	BaseHitChance         = 50
	HitChancePerLevelDiff = 5
)

// Skills holds experience for each of the seven combat skills.
type Skills struct {
	Attack    int `json:"attack"`
	Strength  int `json:"strength"`
	Defence   int `json:"defence"`
	Hitpoints int `json:"hitpoints"`
	Ranged    int `json:"ranged"`
	Magic     int `json:"magic"`
	Prayer    int `json:"prayer"`
}

// SkillLevels is Skills converted to levels.
type SkillLevels struct {
	Attack, Strength, Defence, Hitpoints, Ranged, Magic, Prayer int
}

// Levels converts every skill's experience into a level.
func (s Skills) Levels() SkillLevels {
	return SkillLevels{
		Attack:    LevelFromExperience(s.Attack),
		Strength:  LevelFromExperience(s.Strength),
		Defence:   LevelFromExperience(s.Defence),
		Hitpoints: LevelFromExperience(s.Hitpoints),
		Ranged:    LevelFromExperience(s.Ranged),
		Magic:     LevelFromExperience(s.Magic),
		Prayer:    LevelFromExperience(s.Prayer),
	}
}

// HitChance returns the percentage chance an attacker lands a hit.
func HitChance(attackLevel, defenceLevel int) int {
	chance := BaseHitChance + HitChancePerLevelDiff*(attackLevel-defenceLevel)
	if chance < MinHitChance {
		return MinHitChance
	}
	if chance > MaxHitChance {
		return MaxHitChance
	}
	return chance
}

// AttackDamage returns the damage of a successful hit. A nil weapon means
// unarmed.
func AttackDamage(strengthLevel int, weapon *Weapon) int {
	if weapon == nil {
		return 1 + strengthLevel/4
	}
	return strengthLevel/4 + weapon.AttackValue
}

// RollAttack draws a uniform percentage and reports whether it lands under
// the hit chance.
func RollAttack(rng *rand.Rand, hitChance int) bool {
	return rng.Float64()*100 < float64(hitChance)
}

// CombatLevel aggregates all skills into a single combat rating.
func CombatLevel(lv SkillLevels) int {
	base := float64(lv.Hitpoints+lv.Defence+lv.Prayer/2) / 4
	melee := base + float64(lv.Attack+lv.Strength)*0.325
	magic := base + float64(lv.Magic/2+lv.Magic)*0.325
	ranged := base + float64(lv.Ranged/2+lv.Ranged)*0.325
	return int(math.Floor(math.Max(melee, math.Max(magic, ranged))))
}
