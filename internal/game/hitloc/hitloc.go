// Package hitloc implements the hit-location and battle-wear stage of a
// quarrel: the defender's initial region pick, the attacker's hit-funded
// adjacency moves with free undo, and the final damage computation with
// weapon/armor wear applied.
package hitloc

import (
	"errors"
	"fmt"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// MoveCost is the number of hits spent per adjacency move.
const MoveCost = 2

// ErrResolved is returned by operations on a resolver whose hit has
// already been confirmed.
var ErrResolved = errors.New("hit location already resolved")

// adjacency is the fixed body-region graph: the torso is the hub
// connected to the head and all four limbs; limbs and head connect only
// to the torso.
var adjacency = map[actor.Region][]actor.Region{
	actor.RegionTorso: {
		actor.RegionHead,
		actor.RegionLeftArm, actor.RegionRightArm,
		actor.RegionLeftLeg, actor.RegionRightLeg,
	},
	actor.RegionHead:     {actor.RegionTorso},
	actor.RegionLeftArm:  {actor.RegionTorso},
	actor.RegionRightArm: {actor.RegionTorso},
	actor.RegionLeftLeg:  {actor.RegionTorso},
	actor.RegionRightLeg: {actor.RegionTorso},
}

// Adjacent reports whether to can be reached from from in one move.
func Adjacent(from, to actor.Region) bool {
	for _, r := range adjacency[from] {
		if r == to {
			return true
		}
	}
	return false
}

// AdjacentTo returns the regions reachable from r in one move.
func AdjacentTo(r actor.Region) []actor.Region {
	out := make([]actor.Region, len(adjacency[r]))
	copy(out, adjacency[r])
	return out
}

// Params carries the inputs a resolution needs from the quarrel and from
// both actors' prepared derived data.
type Params struct {
	NetHits              int
	WeaponDamage         int // attacker's damage value, for previews
	AttackerAbilityBonus int
	WeaponBonusMax       int
	WeaponWear           int // attacker weapon wear before this interaction
	DefenderAbilityBonus int
	Soak                 map[actor.Region]int
	ArmorBonusMax        map[actor.Region]int
	ArmorWear            map[actor.Region]int // defender armor wear before this interaction
}

// Outcome is the applied result of a confirmed hit.
type Outcome struct {
	Region        actor.Region
	Damage        int
	RemainingHits int
	// WeaponWearDelta / ArmorWearDelta are the wear amounts actually
	// applied this interaction, after clamping.
	WeaponWearDelta int
	ArmorWearDelta  int
	// ArmorDice is the realized Nd6 armor reduction roll, persisted so a
	// past resolution can be replayed exactly.
	ArmorDice      []int
	ArmorReduction int
}

// Resolver drives one hit-location stage. It is not safe for concurrent
// use; the quarrel session serialises access.
type Resolver struct {
	params    Params
	current   actor.Region
	history   []actor.Region
	remaining int
	picked    bool
	resolved  bool
}

// NewResolver creates a Resolver for the given quarrel parameters.
//
// Precondition: params.NetHits > 0 (a deflected quarrel never reaches
// this stage); soak/armor maps may be nil (treated as all zeroes).
func NewResolver(params Params) *Resolver {
	if params.Soak == nil {
		params.Soak = map[actor.Region]int{}
	}
	if params.ArmorBonusMax == nil {
		params.ArmorBonusMax = map[actor.Region]int{}
	}
	if params.ArmorWear == nil {
		params.ArmorWear = map[actor.Region]int{}
	}
	return &Resolver{
		params:    params,
		remaining: params.NetHits,
	}
}

// Preview returns the live net-damage preview for a region:
// max(0, weaponDamage + remainingHits - regionSoak). Attacker moves
// spend hits, so the preview tracks what a confirm would use right now.
func (r *Resolver) Preview(region actor.Region) int {
	dmg := r.params.WeaponDamage + r.remaining - r.params.Soak[region]
	if dmg < 0 {
		return 0
	}
	return dmg
}

// Select records the defender's initial region pick. It consumes no hits.
//
// Precondition: region must be one of the six body regions.
// Postcondition: Current() == region; RemainingHits() == NetHits.
func (r *Resolver) Select(region actor.Region) error {
	if r.resolved {
		return ErrResolved
	}
	if !actor.IsValidRegion(region) {
		return fmt.Errorf("unknown body region %q", region)
	}
	if r.picked {
		return fmt.Errorf("initial region already selected")
	}
	r.current = region
	r.picked = true
	return nil
}

// Move shifts the wound to a region adjacent to the current one, spending
// MoveCost hits. Moving back to the immediately previous region is an
// undo: always free, refunding MoveCost hits capped at the original net
// total.
//
// Precondition: Select must have been called.
func (r *Resolver) Move(to actor.Region) error {
	if r.resolved {
		return ErrResolved
	}
	if !r.picked {
		return fmt.Errorf("no initial region selected")
	}

	// Undo is free and always allowed.
	if n := len(r.history); n > 0 && r.history[n-1] == to {
		r.history = r.history[:n-1]
		r.current = to
		r.remaining += MoveCost
		if r.remaining > r.params.NetHits {
			r.remaining = r.params.NetHits
		}
		return nil
	}

	if !Adjacent(r.current, to) {
		return fmt.Errorf("region %q is not adjacent to %q", to, r.current)
	}
	if r.remaining < MoveCost {
		return fmt.Errorf("not enough hits to move: have %d, need %d", r.remaining, MoveCost)
	}
	r.history = append(r.history, r.current)
	r.current = to
	r.remaining -= MoveCost
	return nil
}

// Current returns the currently selected region.
func (r *Resolver) Current() actor.Region { return r.current }

// RemainingHits returns the hits left to spend on moves.
func (r *Resolver) RemainingHits() int { return r.remaining }

// WearPreview returns the deterministic UI preview for rolling n armor
// wear dice: best case (all ones), expected (3.5 per die, floored), and
// worst case (all sixes). The actual applied reduction uses a real roll.
func WearPreview(n int) (min, avg, max int) {
	if n <= 0 {
		return 0, 0, 0
	}
	return n, 7 * n / 2, 6 * n
}

// ClampWear bounds a requested wear delta so total wear cannot leave
// [0, bonusMax]: the delta is cut to the headroom bonusMax - current.
func ClampWear(delta, current, bonusMax int) int {
	if delta < 0 {
		delta = 0
	}
	if headroom := bonusMax - current; delta > headroom {
		delta = headroom
	}
	if delta < 0 {
		return 0
	}
	return delta
}

// Confirm applies the hit at the current region with the remaining hits,
// adding weapon wear and rolling armor wear reduction dice.
//
// Final damage: max(0, (attackerAbilityBonus + effectiveWeaponBonus +
// remainingHits) - (defenderAbilityBonus + effectiveArmorBonus)), plus
// the weapon wear added this interaction, minus the realized armor dice
// total (only when armor wear was added), floored at 0.
//
// Precondition: Select must have been called; src must be non-nil when
// armorWearDelta > 0.
// Postcondition: the resolver is terminal; further calls return
// ErrResolved. The realized armor dice are recorded on the Outcome.
func (r *Resolver) Confirm(weaponWearDelta, armorWearDelta int, src dice.Source) (Outcome, error) {
	if r.resolved {
		return Outcome{}, ErrResolved
	}
	if !r.picked {
		return Outcome{}, fmt.Errorf("no initial region selected")
	}

	region := r.current
	weaponWearDelta = ClampWear(weaponWearDelta, r.params.WeaponWear, r.params.WeaponBonusMax)
	armorWearDelta = ClampWear(armorWearDelta, r.params.ArmorWear[region], r.params.ArmorBonusMax[region])

	// Wear accumulated on a weapon raises its effective bonus; wear on
	// armor lowers its protection.
	effWeapon := r.params.WeaponBonusMax + r.params.WeaponWear
	effArmor := r.params.ArmorBonusMax[region] - r.params.ArmorWear[region]

	damage := (r.params.AttackerAbilityBonus + effWeapon + r.remaining) -
		(r.params.DefenderAbilityBonus + effArmor)
	if damage < 0 {
		damage = 0
	}
	damage += weaponWearDelta

	out := Outcome{
		Region:          region,
		RemainingHits:   r.remaining,
		WeaponWearDelta: weaponWearDelta,
		ArmorWearDelta:  armorWearDelta,
		ArmorDice:       []int{},
	}
	if armorWearDelta > 0 {
		roll := dice.Roll(armorWearDelta, 6, src)
		out.ArmorDice = roll.Dice
		out.ArmorReduction = roll.Total()
		damage -= out.ArmorReduction
	}
	if damage < 0 {
		damage = 0
	}
	out.Damage = damage

	r.resolved = true
	return out, nil
}
