// Package mob implements the aggregate-actor side pipeline: converting
// damage into body-count attrition, recomputing the discrete mob scale,
// and triggering a rout check when the scale drops.
package mob

import (
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// BodiesPerKill is the damage required to drop one body from a mob.
const BodiesPerKill = 5

// Scale is the discrete size class of a mob.
type Scale int

const (
	ScaleNone Scale = iota
	ScaleSmall
	ScaleMedium
	ScaleLarge
	ScaleHuge
)

// String returns the display label for a scale.
func (s Scale) String() string {
	switch s {
	case ScaleHuge:
		return "huge"
	case ScaleLarge:
		return "large"
	case ScaleMedium:
		return "medium"
	case ScaleSmall:
		return "small"
	default:
		return "none"
	}
}

// ScaleFor returns the scale for a body count using the fixed
// breakpoints: >=100 huge, >=50 large, >=20 medium, >=5 small, else none.
//
// Postcondition: non-decreasing in bodies.
func ScaleFor(bodies int) Scale {
	switch {
	case bodies >= 100:
		return ScaleHuge
	case bodies >= 50:
		return ScaleLarge
	case bodies >= 20:
		return ScaleMedium
	case bodies >= BodiesPerKill:
		return ScaleSmall
	default:
		return ScaleNone
	}
}

// Attrition is the outcome of applying damage to a mob.
type Attrition struct {
	BodiesKilled    int
	RemainingBodies int
	OldScale        Scale
	NewScale        Scale
	// RoutRequired is true when the scale strictly decreased, which
	// forces a morale check.
	RoutRequired bool
}

// ApplyDamage converts net damage into body attrition: one body per full
// BodiesPerKill points.
//
// Precondition: bodies >= 0; netDamage >= 0.
// Postcondition: RemainingBodies >= 0; RoutRequired iff NewScale < OldScale.
func ApplyDamage(bodies, netDamage int) Attrition {
	killed := netDamage / BodiesPerKill
	remaining := bodies - killed
	if remaining < 0 {
		remaining = 0
	}
	att := Attrition{
		BodiesKilled:    killed,
		RemainingBodies: remaining,
		OldScale:        ScaleFor(bodies),
		NewScale:        ScaleFor(remaining),
	}
	att.RoutRequired = att.NewScale < att.OldScale
	return att
}

// RoutResult is the outcome of a morale check after a scale drop.
type RoutResult struct {
	Check check.Result
	// Routed is true when the check failed: the mob is destroyed or
	// fled, and its body count is forced to zero.
	Routed          bool
	RemainingBodies int
}

// RollRout resolves the morale check for a mob whose scale decreased.
// target is either the mob's own ability score (Steel) or a designated
// leader's Leadership skill value.
//
// Precondition: src must be non-nil.
// Postcondition: Routed implies RemainingBodies == 0.
func RollRout(target, bodies int, opts check.Options, src dice.Source) RoutResult {
	result := check.Evaluate(target, opts, src)
	out := RoutResult{Check: result, RemainingBodies: bodies}
	if !result.Success {
		out.Routed = true
		out.RemainingBodies = 0
	}
	return out
}
