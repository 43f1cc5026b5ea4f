package conditions_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/conditions"
)

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	reg := conditions.DefaultRegistry()
	for _, id := range []string{"pain", "bleed", "blind", "deaf", "stress", "corruption", "prone", "exhaustion"} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "missing builtin condition %q", id)
	}
	stress, _ := reg.Get("stress")
	assert.Equal(t, 3, stress.Threshold)
	assert.Equal(t, "steel", stress.ThresholdSkill)
	assert.Equal(t, "madness", stress.Grants)
}

func TestCrossed(t *testing.T) {
	tests := []struct {
		old, new, step int
		want           bool
	}{
		{0, 1, 3, false},
		{2, 3, 3, true},  // 0 -> 1
		{3, 4, 3, false},
		{2, 4, 3, true},
		{5, 6, 3, true},
		{4, 2, 3, false}, // decrease never crosses
		{0, 6, 3, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, conditions.Crossed(tc.old, tc.new, tc.step),
			"old=%d new=%d step=%d", tc.old, tc.new, tc.step)
	}
}

func TestTracker_Adjust_FiresThresholdAfterCommit(t *testing.T) {
	reg := conditions.DefaultRegistry()
	var events []conditions.ThresholdEvent
	committed := false
	tracker := conditions.NewTracker(reg, zap.NewNop(), func(ev conditions.ThresholdEvent) {
		assert.True(t, committed, "threshold must fire after commit")
		events = append(events, ev)
	})

	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()
	a.Conditions["stress"] = &actor.ConditionValue{Value: 2}

	v, err := tracker.Adjust(a, "stress", 1, func() error {
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	require.Len(t, events, 1)
	assert.Equal(t, "stress", events[0].Condition)
	assert.Equal(t, 2, events[0].OldValue)
	assert.Equal(t, 3, events[0].NewValue)
	assert.Equal(t, "steel", events[0].Skill)
	assert.Equal(t, "madness", events[0].Grants)
}

func TestTracker_Adjust_NoEventWithoutCrossing(t *testing.T) {
	reg := conditions.DefaultRegistry()
	fired := 0
	tracker := conditions.NewTracker(reg, zap.NewNop(), func(conditions.ThresholdEvent) { fired++ })

	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()

	_, err := tracker.Adjust(a, "stress", 1, nil) // 0 -> 1, no crossing
	require.NoError(t, err)
	_, err = tracker.Adjust(a, "stress", 1, nil) // 1 -> 2, no crossing
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// Decrease past a boundary never fires.
	a.Conditions["corruption"] = &actor.ConditionValue{Value: 4}
	_, err = tracker.Adjust(a, "corruption", -2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestTracker_Adjust_CommitFailureSuppressesEvent(t *testing.T) {
	reg := conditions.DefaultRegistry()
	fired := 0
	tracker := conditions.NewTracker(reg, zap.NewNop(), func(conditions.ThresholdEvent) { fired++ })

	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()
	a.Conditions["corruption"] = &actor.ConditionValue{Value: 2}

	_, err := tracker.Adjust(a, "corruption", 1, func() error { return errors.New("store down") })
	assert.Error(t, err)
	assert.Equal(t, 0, fired)
}

func TestTracker_Adjust_FloorsAtZero(t *testing.T) {
	tracker := conditions.NewTracker(conditions.DefaultRegistry(), zap.NewNop(), nil)
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()

	v, err := tracker.Adjust(a, "pain", -5, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestTracker_RaiseLowerSet(t *testing.T) {
	tracker := conditions.NewTracker(conditions.DefaultRegistry(), zap.NewNop(), nil)
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()

	v, err := tracker.Raise(a, "pain", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = tracker.Lower(a, "pain", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = tracker.Set(a, "pain", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 4, a.ConditionRating("pain"))

	_, err = tracker.Raise(a, "pain", -1, nil)
	assert.Error(t, err)
	_, err = tracker.Lower(a, "pain", -1, nil)
	assert.Error(t, err)
}

func TestTracker_SetCrossesThreshold(t *testing.T) {
	var events []conditions.ThresholdEvent
	tracker := conditions.NewTracker(conditions.DefaultRegistry(), zap.NewNop(), func(ev conditions.ThresholdEvent) {
		events = append(events, ev)
	})
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()

	v, err := tracker.Set(a, "stress", 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].OldValue)
	assert.Equal(t, 4, events[0].NewValue)
}

func TestTracker_Property_RatingsNeverNegative(t *testing.T) {
	tracker := conditions.NewTracker(conditions.DefaultRegistry(), zap.NewNop(), nil)
	rapid.Check(t, func(rt *rapid.T) {
		a := &actor.Actor{ID: "a1"}
		a.PrepareDerivedData()
		deltas := rapid.SliceOfN(rapid.IntRange(-6, 6), 1, 30).Draw(rt, "deltas")
		for _, d := range deltas {
			v, err := tracker.Adjust(a, "pain", d, nil)
			require.NoError(rt, err)
			assert.GreaterOrEqual(rt, v, 0)
		}
	})
}

func TestCheckModifier(t *testing.T) {
	reg := conditions.DefaultRegistry()
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()
	a.Conditions["pain"] = &actor.ConditionValue{Value: 2}
	a.Conditions["blind"] = &actor.ConditionValue{Value: 1}
	a.Conditions["prone"] = &actor.ConditionValue{Value: 1}

	// pain -10*2, blind -10*1, prone self -20
	assert.Equal(t, -50, conditions.CheckModifier(reg, a, "pain", "blind", "prone"))
	// Conditions not asked about contribute nothing.
	assert.Equal(t, -20, conditions.CheckModifier(reg, a, "pain"))
	// Unknown condition names contribute nothing.
	assert.Equal(t, 0, conditions.CheckModifier(reg, a, "nonsense"))
}

func TestAttackerModifier_Prone(t *testing.T) {
	reg := conditions.DefaultRegistry()
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()
	assert.Equal(t, 0, conditions.AttackerModifier(reg, a))

	a.Conditions["prone"] = &actor.ConditionValue{Value: 1}
	assert.Equal(t, 20, conditions.AttackerModifier(reg, a))
}

func TestTraumaModifier(t *testing.T) {
	a := &actor.Actor{ID: "a1"}
	a.PrepareDerivedData()
	a.Trauma[actor.RegionLeftArm] = &actor.ConditionValue{Value: 2}
	assert.Equal(t, -40, conditions.TraumaModifier(a, actor.RegionLeftArm))
	assert.Equal(t, 0, conditions.TraumaModifier(a, actor.RegionHead))
}
