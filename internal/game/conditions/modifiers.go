package conditions

import "github.com/rkellett/quarrel/internal/game/actor"

// TraumaModifierPerRating is the check penalty per trauma rating on the
// body region a check depends on.
const TraumaModifierPerRating = -20

// CheckModifier sums the flat percentage modifiers that the named
// conditions impose on the bearer's checks: rating-scaled penalties
// (pain, blind, ...) plus rating-independent self modifiers (prone).
// Unknown condition names contribute nothing.
//
// Postcondition: returns 0 when the actor bears none of the conditions.
func CheckModifier(reg *Registry, a *actor.Actor, conditionIDs ...string) int {
	total := 0
	for _, id := range conditionIDs {
		def, ok := reg.Get(id)
		if !ok {
			continue
		}
		rating := a.ConditionRating(id)
		if rating > 0 {
			total += def.CheckModifier * rating
			total += def.SelfModifier
		}
	}
	return total
}

// AttackerModifier sums the modifiers granted to an attacker by the
// defender's conditions (e.g. +20% against a prone target).
func AttackerModifier(reg *Registry, defender *actor.Actor) int {
	total := 0
	for _, def := range reg.All() {
		if def.AttackerModifier == 0 {
			continue
		}
		if defender.ConditionRating(def.ID) > 0 {
			total += def.AttackerModifier
		}
	}
	return total
}

// TraumaModifier returns the penalty for checks that use the given body
// region: -20% per trauma rating on that region.
func TraumaModifier(a *actor.Actor, region actor.Region) int {
	return TraumaModifierPerRating * a.TraumaRating(region)
}
