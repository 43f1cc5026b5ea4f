package injury_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/injury"
)

func TestParseEffect(t *testing.T) {
	tests := []struct {
		text string
		want injury.ParsedEffect
	}{
		{
			text: "Ruptured Eye, Blind 1|Pain 2‡",
			want: injury.ParsedEffect{
				Name: "Ruptured Eye",
				Conditions: []injury.ConditionDelta{
					{Type: "blind", Rating: 1},
					{Type: "pain", Rating: 2},
				},
				MedicalOption: injury.MedicalSurgery,
			},
		},
		{
			text: "Cracked Jaw, Pain 2*",
			want: injury.ParsedEffect{
				Name:          "Cracked Jaw",
				Conditions:    []injury.ConditionDelta{{Type: "pain", Rating: 2}},
				MedicalOption: injury.MedicalAid,
			},
		},
		{
			text: "Boxed Ear, Pain 1",
			want: injury.ParsedEffect{
				Name:          "Boxed Ear",
				Conditions:    []injury.ConditionDelta{{Type: "pain", Rating: 1}},
				MedicalOption: injury.MedicalNone,
			},
		},
		{
			text: "Winded",
			want: injury.ParsedEffect{
				Name:          "Winded",
				Conditions:    []injury.ConditionDelta{},
				MedicalOption: injury.MedicalNone,
			},
		},
		{
			// Malformed clause is skipped, not fatal.
			text: "Odd Wound, Pain|Bleed 2*",
			want: injury.ParsedEffect{
				Name:          "Odd Wound",
				Conditions:    []injury.ConditionDelta{{Type: "bleed", Rating: 2}},
				MedicalOption: injury.MedicalAid,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, injury.ParseEffect(tc.text))
		})
	}
}

func TestSynthesize_SelectsHighestThresholdAtOrBelowDamage(t *testing.T) {
	// Head roll 4 is the left eye ladder: 1/3/6/9.
	rec, err := injury.Synthesize(actor.RegionHead, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, "Ruptured Eye", rec.Effect)
	assert.Equal(t, "Left Eye", rec.Location)
	assert.Equal(t, injury.MedicalSurgery, rec.MedicalOption)
	assert.Equal(t, 6, rec.TreatmentDifficulty) // surgery difficulty = damage

	rec, err = injury.Synthesize(actor.RegionHead, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, "Gouged Eye", rec.Effect) // threshold 3 is highest <= 5
	assert.Equal(t, injury.MedicalAid, rec.MedicalOption)
	assert.Equal(t, 2, rec.TreatmentDifficulty) // aid difficulty = max(1, 5/2)
}

func TestSynthesize_AidDifficultyFloorsAtOne(t *testing.T) {
	// Leg roll 3 at damage 1: "Twisted Ankle, Pain 1*".
	rec, err := injury.Synthesize(actor.RegionLeftLeg, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, injury.MedicalAid, rec.MedicalOption)
	assert.Equal(t, 1, rec.TreatmentDifficulty)
}

func TestSynthesize_DeflectedSkipsTable(t *testing.T) {
	for _, dmg := range []int{0, -3} {
		rec, err := injury.Synthesize(actor.RegionTorso, dmg, 5)
		require.NoError(t, err)
		assert.True(t, rec.Deflected)
		assert.Equal(t, "Deflected", rec.Effect)
		assert.Empty(t, rec.Conditions)
		assert.Equal(t, injury.MedicalNone, rec.MedicalOption)
	}
}

func TestSynthesize_SideFromRegion(t *testing.T) {
	left, err := injury.Synthesize(actor.RegionLeftArm, 4, 1)
	require.NoError(t, err)
	right, err := injury.Synthesize(actor.RegionRightArm, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, "Left Hand", left.Location)
	assert.Equal(t, "Right Hand", right.Location)
}

func TestSynthesize_Idempotent(t *testing.T) {
	a, err := injury.Synthesize(actor.RegionHead, 7, 9)
	require.NoError(t, err)
	b, err := injury.Synthesize(actor.RegionHead, 7, 9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRoll_ReusesStoredSubRoll(t *testing.T) {
	stored := 4
	rec, err := injury.Roll(actor.RegionHead, 6, &stored, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.SubRoll)
	assert.Equal(t, "Left Eye", rec.Location)
}

func TestSynthesize_RejectsOutOfRangeSubRoll(t *testing.T) {
	_, err := injury.Synthesize(actor.RegionHead, 5, 0)
	assert.Error(t, err)
	_, err = injury.Synthesize(actor.RegionHead, 5, 11)
	assert.Error(t, err)
}

func TestTables_RoundTrip_NeverUnknown(t *testing.T) {
	// Every region and every d10 roll must resolve to a named location
	// and a usable effect ladder.
	regions := []actor.Region{
		actor.RegionHead, actor.RegionTorso,
		actor.RegionLeftArm, actor.RegionRightArm,
		actor.RegionLeftLeg, actor.RegionRightLeg,
	}
	for _, region := range regions {
		for roll := 1; roll <= 10; roll++ {
			for dmg := 1; dmg <= 12; dmg++ {
				rec, err := injury.Synthesize(region, dmg, roll)
				require.NoError(t, err, "region=%s roll=%d dmg=%d", region, roll, dmg)
				assert.NotEmpty(t, rec.Location)
				assert.NotEmpty(t, rec.Effect)
				assert.NotEqual(t, "Unknown", rec.FullName())
			}
		}
	}
}

func TestSynthesize_Property_SeverityBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dmg := rapid.IntRange(1, 40).Draw(rt, "dmg")
		roll := rapid.IntRange(1, 10).Draw(rt, "roll")
		rec, err := injury.Synthesize(actor.RegionTorso, dmg, roll)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, rec.Severity, 1)
		assert.LessOrEqual(rt, rec.Severity, 10)
	})
}

func TestSynthesize_Property_SeverityMonotoneInDamage(t *testing.T) {
	// Higher damage never produces a lighter injury.
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(1, 10).Draw(rt, "roll")
		d1 := rapid.IntRange(1, 20).Draw(rt, "d1")
		d2 := rapid.IntRange(d1, 20).Draw(rt, "d2")
		r1, err := injury.Synthesize(actor.RegionTorso, d1, roll)
		require.NoError(rt, err)
		r2, err := injury.Synthesize(actor.RegionTorso, d2, roll)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, r2.Severity, r1.Severity)
	})
}
