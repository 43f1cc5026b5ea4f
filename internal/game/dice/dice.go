// Package dice provides the randomness abstraction and roll-result types
// for the quarrel resolution engine.
package dice

import "fmt"

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollResult holds the full audit trail for one dice roll.
//
// Postcondition: Total() == sum(Dice).
type RollResult struct {
	Sides int   // faces per die
	Dice  []int // individual die results, each in [1, Sides]
}

// Total returns the sum of all die results.
func (r RollResult) Total() int {
	total := 0
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "3d6 → [4 2 6] = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%dd%d → %v = %d", len(r.Dice), r.Sides, r.Dice, r.Total())
}

// Roll throws count dice with the given number of sides using src.
//
// Precondition: count >= 1, sides >= 2, src non-nil.
// Postcondition: len(result.Dice) == count; every die is in [1, sides].
func Roll(count, sides int, src Source) RollResult {
	dice := make([]int, count)
	for i := range dice {
		dice[i] = src.Intn(sides) + 1
	}
	return RollResult{Sides: sides, Dice: dice}
}

// D100 rolls a single percentile die in [1, 100].
func D100(src Source) int {
	return src.Intn(100) + 1
}

// D10 rolls a single d10 in [1, 10].
func D10(src Source) int {
	return src.Intn(10) + 1
}
