package game

import (
	"errors"
	"math"
	"testing"
)

// TestLevelFromExperience checks the level thresholds around the first steps
func TestLevelFromExperience(t *testing.T) {
	tests := []struct {
		xp       int
		expected int
	}{
		{0, 1},
		{82, 1},
		{83, 2},
		{173, 2},
		{174, 3},
		{275, 4},
		{386, 4},
		{387, 5},
		{388, 5},
		{500, 5},
		{511, 6},
	}

	for _, tt := range tests {
		if got := LevelFromExperience(tt.xp); got != tt.expected {
			t.Errorf("Expected level %d for %d xp, got %d", tt.expected, tt.xp, got)
		}
	}
}

// TestExperienceDifference checks the per-level increments
func TestExperienceDifference(t *testing.T) {
	expected := map[int]int{2: 83, 3: 91, 4: 101, 5: 112, 6: 124}
	for level, diff := range expected {
		if got := ExperienceDifference(level); got != diff {
			t.Errorf("Expected difference %d for level %d, got %d", diff, level, got)
		}
	}
}

// TestExperienceDifferencePanics verifies levels below 2 are rejected
func TestExperienceDifferencePanics(t *testing.T) {
	for _, level := range []int{1, 0, -3} {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Errorf("Expected panic for level %d", level)
					return
				}
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrLevelOutOfRange) {
					t.Errorf("Expected ErrLevelOutOfRange for level %d, got %v", level, r)
				}
			}()
			ExperienceDifference(level)
		}()
	}
}

// TestLevelMonotonic verifies more experience never lowers the level
func TestLevelMonotonic(t *testing.T) {
	prev := LevelFromExperience(0)
	for xp := 1; xp <= 20000; xp += 7 {
		level := LevelFromExperience(xp)
		if level < prev {
			t.Fatalf("Level dropped from %d to %d at %d xp", prev, level, xp)
		}
		prev = level
	}
}

// TestExperienceForLevel checks the cumulative thresholds line up with the
// level lookup
func TestExperienceForLevel(t *testing.T) {
	if got := ExperienceForLevel(1); got != 0 {
		t.Errorf("Expected 0 xp for level 1, got %d", got)
	}
	if got := ExperienceForLevel(5); got != 387 {
		t.Errorf("Expected 387 xp for level 5, got %d", got)
	}

	for level := 2; level <= 30; level++ {
		xp := ExperienceForLevel(level)
		if got := LevelFromExperience(xp); got != level {
			t.Errorf("Expected level %d at %d xp, got %d", level, xp, got)
		}
		if got := LevelFromExperience(xp - 1); got != level-1 {
			t.Errorf("Expected level %d at %d xp, got %d", level-1, xp-1, got)
		}
	}
}

// TestExperienceUntilNextLevel checks the remaining-xp helper
func TestExperienceUntilNextLevel(t *testing.T) {
	tests := []struct {
		xp       int
		expected int
	}{
		{0, 83},
		{82, 1},
		{83, 91},
		{388, 123},
	}

	for _, tt := range tests {
		if got := ExperienceUntilNextLevel(tt.xp); got != tt.expected {
			t.Errorf("Expected %d xp remaining from %d, got %d", tt.expected, tt.xp, got)
		}
	}
}

// TestLevelCap stops the curve at MaxLevel for any experience
func TestLevelCap(t *testing.T) {
	capXP := ExperienceForLevel(MaxLevel)

	tests := []struct {
		name string
		xp   int
		want int
	}{
		{"one below cap", capXP - 1, MaxLevel - 1},
		{"at cap", capXP, MaxLevel},
		{"past cap", capXP * 4, MaxLevel},
		{"max int", math.MaxInt, MaxLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromExperience(tt.xp); got != tt.want {
				t.Errorf("Expected level %d at %d xp, got %d", tt.want, tt.xp, got)
			}
		})
	}

	if got := ExperienceUntilNextLevel(math.MaxInt); got != 0 {
		t.Errorf("Expected 0 xp to go at the cap, got %d", got)
	}
	if got := ExperienceUntilNextLevel(capXP - 1); got != 1 {
		t.Errorf("Expected 1 xp to go below the cap, got %d", got)
	}
}
