package actor

import (
	"fmt"

	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// Behavior is the capability shared by the two actor variants. The host
// selects a variant once by kind; everything downstream works against
// this interface.
type Behavior interface {
	// PrepareDerivedData recomputes all derived fields (see Actor).
	PrepareDerivedData()
	// RollAttribute evaluates a check against the named attribute.
	// modifier is a flat percentage adjustment from conditions (may be
	// negative); it shifts the target value before evaluation.
	RollAttribute(key string, modifier int, opts check.Options, src dice.Source) (check.Result, error)
	// RollSkill evaluates a check against the named skill within a
	// category. A specialization named in opts contributes its rating as
	// additional hits; that wiring is the caller's job via Options.
	RollSkill(category, name string, modifier int, opts check.Options, src dice.Source) (check.Result, error)
	// RollCheck evaluates a check against a raw target value.
	RollCheck(target int, opts check.Options, src dice.Source) check.Result
}

// BehaviorFor returns the variant implementation for a's kind.
//
// Postcondition: returns a non-nil Behavior backed by a.
func BehaviorFor(a *Actor) Behavior {
	if a.Kind == KindMonster {
		return &MonsterBehavior{Actor: a}
	}
	return &DescendantBehavior{Actor: a}
}

// DescendantBehavior rolls against stored attribute and skill values.
type DescendantBehavior struct {
	*Actor
}

// RollAttribute rolls 1d100 against the attribute value plus modifier.
func (b *DescendantBehavior) RollAttribute(key string, modifier int, opts check.Options, src dice.Source) (check.Result, error) {
	attr, ok := b.Attributes[key]
	if !ok || attr == nil {
		return check.Result{}, fmt.Errorf("actor %q has no attribute %q", b.Name, key)
	}
	return check.Evaluate(attr.Value+modifier, opts, src), nil
}

// RollSkill rolls 1d100 against the skill value plus modifier.
func (b *DescendantBehavior) RollSkill(category, name string, modifier int, opts check.Options, src dice.Source) (check.Result, error) {
	cat, ok := b.Skills[category]
	if !ok {
		return check.Result{}, fmt.Errorf("actor %q has no skill category %q", b.Name, category)
	}
	sk, ok := cat[name]
	if !ok || sk == nil {
		return check.Result{}, fmt.Errorf("actor %q has no skill %q/%q", b.Name, category, name)
	}
	return check.Evaluate(sk.Value+modifier, opts, src), nil
}

// RollCheck rolls 1d100 against a raw target.
func (b *DescendantBehavior) RollCheck(target int, opts check.Options, src dice.Source) check.Result {
	return check.Evaluate(target, opts, src)
}

// MonsterBehavior rolls everything against the derived ability score,
// with the monster's plus-hits folded into every check.
type MonsterBehavior struct {
	*Actor
}

// RollAttribute rolls against the derived ability score; monsters do not
// track individual attributes.
func (b *MonsterBehavior) RollAttribute(_ string, modifier int, opts check.Options, src dice.Source) (check.Result, error) {
	return b.RollCheck(b.Derived.AbilityScore+modifier, opts, src), nil
}

// RollSkill rolls against the derived ability score; monsters do not
// track individual skills.
func (b *MonsterBehavior) RollSkill(_, _ string, modifier int, opts check.Options, src dice.Source) (check.Result, error) {
	return b.RollCheck(b.Derived.AbilityScore+modifier, opts, src), nil
}

// RollCheck rolls 1d100 against target with the monster's plus-hits added
// as additional hits on success.
func (b *MonsterBehavior) RollCheck(target int, opts check.Options, src dice.Source) check.Result {
	opts.AdditionalHits += b.Derived.PlusHits
	return check.Evaluate(target, opts, src)
}
