package game

import (
	"errors"
	"fmt"
	"math"
)

// Level bounds. Experience past the MaxLevel threshold adds no levels.
const (
	MinLevel = 1
	MaxLevel = 120
)

// ErrLevelOutOfRange is raised (via panic) when asking for the experience
// step of a level below 2. Only a caller bug can produce it.
var ErrLevelOutOfRange = errors.New("level must be 2 or higher")

// ExperienceDifference returns the experience needed to advance from
// level-1 to level.
func ExperienceDifference(level int) int {
	if level < 2 {
		panic(fmt.Errorf("%w: got %d", ErrLevelOutOfRange, level))
	}
	l := float64(level)
	return int(math.Floor(0.25 * (l - 1 + 300*math.Pow(2, (l-1)/7))))
}

// LevelFromExperience walks the curve upward and returns the highest level
// whose cumulative threshold does not exceed xp, capped at MaxLevel.
func LevelFromExperience(xp int) int {
	level := MinLevel
	accumulated := 0
	for level < MaxLevel {
		diff := ExperienceDifference(level + 1)
		if accumulated+diff > xp {
			break
		}
		accumulated += diff
		level++
	}
	return level
}

// ExperienceForLevel returns the total experience at which level is reached.
func ExperienceForLevel(level int) int {
	total := 0
	for l := 2; l <= level; l++ {
		total += ExperienceDifference(l)
	}
	return total
}

// ExperienceUntilNextLevel returns how much more experience xp needs to
// reach the next level, or 0 at MaxLevel.
func ExperienceUntilNextLevel(xp int) int {
	level := LevelFromExperience(xp)
	if level >= MaxLevel {
		return 0
	}
	return ExperienceForLevel(level+1) - xp
}
