package conditions

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/actor"
)

// ThresholdEvent describes a multiple-of-N boundary crossing that must
// trigger a secondary quarrel.
type ThresholdEvent struct {
	ActorID   string
	Condition string
	OldValue  int
	NewValue  int
	// Skill is the skill the actor rolls for the triggered quarrel.
	Skill string
	// Grants is the item type inflicted when the quarrel fails.
	Grants string
}

// Scheduler receives threshold events after the rating change has been
// committed. Implementations typically open a condition-quarrel.
type Scheduler func(ev ThresholdEvent)

// Tracker mutates condition ratings on actors and fires threshold
// triggers. The crossing test runs against the pre-commit value; the
// scheduled quarrel fires only after commit succeeds.
type Tracker struct {
	reg      *Registry
	logger   *zap.Logger
	schedule Scheduler
}

// NewTracker creates a Tracker.
//
// Precondition: reg and logger must be non-nil. schedule may be nil when
// no secondary-quarrel wiring exists (threshold events are then dropped).
func NewTracker(reg *Registry, logger *zap.Logger, schedule Scheduler) *Tracker {
	if schedule == nil {
		schedule = func(ThresholdEvent) {}
	}
	return &Tracker{reg: reg, logger: logger, schedule: schedule}
}

// Crossed reports whether moving from old to new crosses a multiple-of-step
// boundary on increase: floor(new/step) > floor(old/step).
//
// Precondition: step > 0.
func Crossed(old, new, step int) bool {
	return new > old && new/step > old/step
}

// Adjust changes the rating of the named condition on a by delta, floored
// at zero, then calls commit to persist the actor. If the change crosses
// the condition's threshold on increase and commit succeeds, the
// threshold event is scheduled afterwards.
//
// Precondition: a must be non-nil; commit may be nil (treated as a no-op
// local mutation).
// Postcondition: the stored rating is non-negative; returns the new
// rating. On commit failure the in-memory change is kept for the caller
// to inspect but no event fires.
func (t *Tracker) Adjust(a *actor.Actor, name string, delta int, commit func() error) (int, error) {
	if a.Conditions == nil {
		a.Conditions = make(map[string]*actor.ConditionValue)
	}
	cv := a.Conditions[name]
	if cv == nil {
		cv = &actor.ConditionValue{}
		a.Conditions[name] = cv
	}

	old := cv.Value
	next := old + delta
	if next < 0 {
		next = 0
	}

	var fire *ThresholdEvent
	if def, ok := t.reg.Get(name); ok && def.Threshold > 0 && Crossed(old, next, def.Threshold) {
		fire = &ThresholdEvent{
			ActorID:   a.ID,
			Condition: name,
			OldValue:  old,
			NewValue:  next,
			Skill:     def.ThresholdSkill,
			Grants:    def.Grants,
		}
	}

	cv.Value = next

	if commit != nil {
		if err := commit(); err != nil {
			return next, fmt.Errorf("committing condition %q on actor %q: %w", name, a.ID, err)
		}
	}

	if fire != nil {
		t.logger.Info("condition threshold crossed",
			zap.String("actor", a.ID),
			zap.String("condition", name),
			zap.Int("old", old),
			zap.Int("new", next),
		)
		t.schedule(*fire)
	}
	return next, nil
}

// Raise increases the named condition by amount.
func (t *Tracker) Raise(a *actor.Actor, name string, amount int, commit func() error) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("raise amount must be non-negative, got %d", amount)
	}
	return t.Adjust(a, name, amount, commit)
}

// Lower decreases the named condition by amount, floored at zero.
func (t *Tracker) Lower(a *actor.Actor, name string, amount int, commit func() error) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("lower amount must be non-negative, got %d", amount)
	}
	return t.Adjust(a, name, -amount, commit)
}

// Set moves the named condition to an absolute rating. Threshold
// crossings fire exactly as if the difference had been applied as a
// delta.
func (t *Tracker) Set(a *actor.Actor, name string, value int, commit func() error) (int, error) {
	if value < 0 {
		value = 0
	}
	current := a.ConditionRating(name)
	return t.Adjust(a, name, value-current, commit)
}

// AdjustTrauma changes the trauma rating for a body region, floored at
// zero. Trauma has no threshold behavior.
func (t *Tracker) AdjustTrauma(a *actor.Actor, region actor.Region, delta int, commit func() error) (int, error) {
	if a.Trauma == nil {
		a.Trauma = make(map[actor.Region]*actor.ConditionValue)
	}
	cv := a.Trauma[region]
	if cv == nil {
		cv = &actor.ConditionValue{}
		a.Trauma[region] = cv
	}
	next := cv.Value + delta
	if next < 0 {
		next = 0
	}
	cv.Value = next
	if commit != nil {
		if err := commit(); err != nil {
			return next, fmt.Errorf("committing trauma %q on actor %q: %w", region, a.ID, err)
		}
	}
	return next, nil
}
