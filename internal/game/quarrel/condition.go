package quarrel

import (
	"fmt"

	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/conditions"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// ConditionQuarrel is the single-sided variant: one check against a
// static difficulty with fixed result messages and no hit-location
// stage. Threshold crossings (stress, corruption) open these.
type ConditionQuarrel struct {
	Name   string
	Actor  Party
	Target int
	// Success, Failure, and Cost are the fixed result messages. Cost
	// names what failure inflicts (a Madness, a Mutation) and is
	// rendered only on failure.
	Success string
	Failure string
	Cost    string
}

// ConditionResult is the resolved single-sided quarrel.
type ConditionResult struct {
	Check   check.Result
	Failed  bool
	Message string
	// Grants is the item type to inflict through the actor store when
	// the quarrel failed, empty otherwise.
	Grants string
}

// FromThreshold builds the condition-quarrel a threshold crossing
// demands. The target is the actor's rating in the event's skill; the
// caller resolves it from the sheet.
func FromThreshold(ev conditions.ThresholdEvent, party Party, target int) ConditionQuarrel {
	name := fmt.Sprintf("%s threshold (%d)", ev.Condition, ev.NewValue)
	q := ConditionQuarrel{
		Name:    name,
		Actor:   party,
		Target:  target,
		Success: fmt.Sprintf("%s holds firm against the rising %s.", party.DisplayName("Attacker"), ev.Condition),
		Failure: fmt.Sprintf("%s buckles under the %s.", party.DisplayName("Attacker"), ev.Condition),
		Cost:    ev.Grants,
	}
	return q
}

// Resolve rolls the check and picks the fixed result message. Failure
// carries the granted item type back to the caller; success grants
// nothing. There is never a hit-location stage.
func (q ConditionQuarrel) Resolve(opts check.Options, src dice.Source) ConditionResult {
	res := check.Evaluate(q.Target, opts, src)
	out := ConditionResult{Check: res, Failed: !res.Success}
	if res.Success {
		out.Message = q.Success
		return out
	}
	out.Message = q.Failure
	if q.Cost != "" {
		out.Message = fmt.Sprintf("%s Gains: %s.", q.Failure, q.Cost)
		out.Grants = q.Cost
	}
	return out
}
