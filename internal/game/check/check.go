// Package check implements percentile check evaluation: a 1d100 roll
// against a target value, classified into success/failure with critical
// and fumble handling, and a signed "hits" margin measured in tens.
package check

import "github.com/rkellett/quarrel/internal/game/dice"

// CriticalFloor is the minimum hits granted by a critical result.
const CriticalFloor = 6

// FumbleCeiling is the maximum hits allowed by a fumble result.
const FumbleCeiling = -6

// Options modifies how a check is evaluated.
type Options struct {
	// LuckSpent suppresses doubles-based criticals and fumbles (but not
	// the natural 1-5 / 96-100 thresholds). Models a reroll resource
	// spent to avoid an extreme outcome.
	LuckSpent bool
	// AdditionalHits is a specialization bonus added to hits on success,
	// before the critical/fumble floors are applied.
	AdditionalHits int
}

// Result is the outcome of one percentile check.
type Result struct {
	Roll     int  // the raw d100 result, 1..100
	Target   int  // the target value rolled against
	Success  bool // roll <= target
	Double   bool // roll is a multiple of 11 (11, 22, ... 99)
	Critical bool
	Fumble   bool
	// Hits is the margin of success in tens: target/10 - roll/10,
	// plus AdditionalHits on success, then floored at CriticalFloor on a
	// critical or capped at FumbleCeiling on a fumble.
	Hits int
}

// Evaluate rolls 1d100 against target using src and classifies the outcome.
//
// Precondition: src must be non-nil; target may be any non-negative value.
// Postcondition: Result.Roll is in [1, 100]; Critical implies Hits >= 6;
// Fumble implies Hits <= -6.
func Evaluate(target int, opts Options, src dice.Source) Result {
	return Classify(target, dice.D100(src), opts)
}

// Classify computes the full check result for an already-known roll.
// Split out from Evaluate so stored rolls can be re-classified exactly.
//
// Precondition: roll must be in [1, 100].
func Classify(target, roll int, opts Options) Result {
	r := Result{
		Roll:    roll,
		Target:  target,
		Success: roll <= target,
	}
	r.Double = roll%11 == 0 && roll != 100

	r.Critical = roll <= 5 || (r.Success && r.Double && !opts.LuckSpent)
	r.Fumble = roll >= 96 || (!r.Success && r.Double && !opts.LuckSpent)

	hits := target/10 - roll/10
	if r.Success {
		hits += opts.AdditionalHits
	}
	// The floors apply unconditionally when triggered: even a weak fumble
	// is clamped to at most -6, even a weak crit is raised to at least 6.
	if r.Critical {
		hits = max(hits+1, CriticalFloor)
	}
	if r.Fumble {
		hits = min(hits-1, FumbleCeiling)
	}
	r.Hits = hits
	return r
}
