package hitloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/hitloc"
)

// fixedSource always yields the same die face.
type fixedSource struct{ face int }

func (f fixedSource) Intn(n int) int { return (f.face - 1) % n }

func TestAdjacency_TorsoIsHub(t *testing.T) {
	spokes := []actor.Region{
		actor.RegionHead,
		actor.RegionLeftArm, actor.RegionRightArm,
		actor.RegionLeftLeg, actor.RegionRightLeg,
	}
	for _, r := range spokes {
		assert.True(t, hitloc.Adjacent(actor.RegionTorso, r), "torso -> %s", r)
		assert.True(t, hitloc.Adjacent(r, actor.RegionTorso), "%s -> torso", r)
	}
	assert.False(t, hitloc.Adjacent(actor.RegionHead, actor.RegionLeftArm))
	assert.False(t, hitloc.Adjacent(actor.RegionLeftLeg, actor.RegionRightLeg))
}

func TestAdjacency_LimbsReachOnlyTorso(t *testing.T) {
	for _, r := range []actor.Region{
		actor.RegionHead,
		actor.RegionLeftArm, actor.RegionRightArm,
		actor.RegionLeftLeg, actor.RegionRightLeg,
	} {
		assert.Equal(t, []actor.Region{actor.RegionTorso}, hitloc.AdjacentTo(r))
	}
	assert.Len(t, hitloc.AdjacentTo(actor.RegionTorso), 5)
}

func TestPreview(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:      3,
		WeaponDamage: 8,
		Soak: map[actor.Region]int{
			actor.RegionTorso: 7,
			actor.RegionHead:  20,
		},
	})
	assert.Equal(t, 4, r.Preview(actor.RegionTorso)) // 8+3-7
	assert.Equal(t, 0, r.Preview(actor.RegionHead))  // floored at 0
	assert.Equal(t, 11, r.Preview(actor.RegionLeftArm))
}

func TestPreview_TracksRemainingHits(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:      4,
		WeaponDamage: 6,
		Soak: map[actor.Region]int{
			actor.RegionTorso:   5,
			actor.RegionLeftArm: 3,
		},
	})
	require.NoError(t, r.Select(actor.RegionTorso))
	assert.Equal(t, 5, r.Preview(actor.RegionTorso)) // 6+4-5

	// Moving spends 2 hits, so the preview drops with them.
	require.NoError(t, r.Move(actor.RegionLeftArm))
	assert.Equal(t, 5, r.Preview(actor.RegionLeftArm)) // 6+2-3
	assert.Equal(t, 3, r.Preview(actor.RegionTorso))   // 6+2-5

	// Undo refunds the hits and restores the preview.
	require.NoError(t, r.Move(actor.RegionTorso))
	assert.Equal(t, 5, r.Preview(actor.RegionTorso))
}

func TestSelectAndMove(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{NetHits: 5})
	require.NoError(t, r.Select(actor.RegionTorso))
	assert.Equal(t, 5, r.RemainingHits())

	require.NoError(t, r.Move(actor.RegionHead))
	assert.Equal(t, actor.RegionHead, r.Current())
	assert.Equal(t, 3, r.RemainingHits())

	// Head connects only to torso.
	assert.Error(t, r.Move(actor.RegionLeftArm))

	require.NoError(t, r.Move(actor.RegionTorso)) // undo, free
	assert.Equal(t, 5, r.RemainingHits())
}

func TestMove_InsufficientHits(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{NetHits: 1})
	require.NoError(t, r.Select(actor.RegionTorso))
	err := r.Move(actor.RegionHead)
	assert.Error(t, err)
	assert.Equal(t, actor.RegionTorso, r.Current())
}

func TestMove_UndoRefundCappedAtNetTotal(t *testing.T) {
	// Repeated undo/redo must never accumulate hits beyond the original
	// net total.
	r := hitloc.NewResolver(hitloc.Params{NetHits: 3})
	require.NoError(t, r.Select(actor.RegionTorso))

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Move(actor.RegionHead))
		assert.Equal(t, 1, r.RemainingHits())
		require.NoError(t, r.Move(actor.RegionTorso)) // undo
		assert.Equal(t, 3, r.RemainingHits(), "iteration %d", i)
	}
}

func TestMove_Property_RemainingHitsNeverExceedNet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		net := rapid.IntRange(1, 12).Draw(rt, "net")
		r := hitloc.NewResolver(hitloc.Params{NetHits: net})
		require.NoError(rt, r.Select(actor.RegionTorso))

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			target := rapid.SampledFrom(actor.Regions()).Draw(rt, "target")
			_ = r.Move(target) // invalid moves are rejected, state unchanged
			assert.GreaterOrEqual(rt, r.RemainingHits(), 0)
			assert.LessOrEqual(rt, r.RemainingHits(), net)
		}
	})
}

func TestWearPreview(t *testing.T) {
	min, avg, max := hitloc.WearPreview(2)
	assert.Equal(t, 2, min)
	assert.Equal(t, 7, avg) // floor(3.5 * 2)
	assert.Equal(t, 12, max)

	min, avg, max = hitloc.WearPreview(3)
	assert.Equal(t, 3, min)
	assert.Equal(t, 10, avg) // floor(10.5)
	assert.Equal(t, 18, max)

	min, avg, max = hitloc.WearPreview(0)
	assert.Zero(t, min)
	assert.Zero(t, avg)
	assert.Zero(t, max)
}

func TestClampWear(t *testing.T) {
	assert.Equal(t, 2, hitloc.ClampWear(2, 1, 6))  // headroom 5
	assert.Equal(t, 3, hitloc.ClampWear(9, 3, 6))  // cut to headroom
	assert.Equal(t, 0, hitloc.ClampWear(-4, 0, 6)) // negative request
	assert.Equal(t, 0, hitloc.ClampWear(2, 6, 6))  // already at max
}

func TestClampWear_Property_BoundsHold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bonusMax := rapid.IntRange(0, 10).Draw(rt, "max")
		current := rapid.IntRange(0, bonusMax).Draw(rt, "current")
		delta := rapid.IntRange(-20, 20).Draw(rt, "delta")
		applied := hitloc.ClampWear(delta, current, bonusMax)
		total := current + applied
		assert.GreaterOrEqual(rt, total, 0)
		assert.LessOrEqual(rt, total, bonusMax)
	})
}

func TestConfirm_DamageFormula(t *testing.T) {
	// (5 + 6 + 3) - (4 + 2) = 8, +2 weapon wear, -(2d6 all twos = 4) = 6.
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:              3,
		AttackerAbilityBonus: 5,
		WeaponBonusMax:       6,
		DefenderAbilityBonus: 4,
		ArmorBonusMax:        map[actor.Region]int{actor.RegionTorso: 2},
	})
	require.NoError(t, r.Select(actor.RegionTorso))

	out, err := r.Confirm(2, 2, fixedSource{face: 2})
	require.NoError(t, err)
	assert.Equal(t, actor.RegionTorso, out.Region)
	assert.Equal(t, 2, out.WeaponWearDelta)
	assert.Equal(t, 2, out.ArmorWearDelta)
	assert.Equal(t, []int{2, 2}, out.ArmorDice)
	assert.Equal(t, 4, out.ArmorReduction)
	assert.Equal(t, 6, out.Damage)
}

func TestConfirm_ExistingWearShiftsEffectiveBonuses(t *testing.T) {
	// Weapon wear 2 raises the effective weapon bonus; armor wear 1
	// lowers the effective armor bonus.
	// (5 + (6+2) + 1) - (4 + (2-1)) = 9.
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:              1,
		AttackerAbilityBonus: 5,
		WeaponBonusMax:       6,
		WeaponWear:           2,
		DefenderAbilityBonus: 4,
		ArmorBonusMax:        map[actor.Region]int{actor.RegionTorso: 2},
		ArmorWear:            map[actor.Region]int{actor.RegionTorso: 1},
	})
	require.NoError(t, r.Select(actor.RegionTorso))
	out, err := r.Confirm(0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, out.Damage)
	assert.Empty(t, out.ArmorDice)
	assert.Zero(t, out.ArmorReduction)
}

func TestConfirm_FlooredAtZero(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:              1,
		AttackerAbilityBonus: 0,
		WeaponBonusMax:       2,
		DefenderAbilityBonus: 9,
		ArmorBonusMax:        map[actor.Region]int{actor.RegionTorso: 8},
	})
	require.NoError(t, r.Select(actor.RegionTorso))
	out, err := r.Confirm(0, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, out.Damage)
}

func TestConfirm_SecondAttemptRejected(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{NetHits: 2})
	require.NoError(t, r.Select(actor.RegionTorso))
	_, err := r.Confirm(0, 0, nil)
	require.NoError(t, err)

	_, err = r.Confirm(0, 0, nil)
	assert.ErrorIs(t, err, hitloc.ErrResolved)
	assert.ErrorIs(t, r.Select(actor.RegionHead), hitloc.ErrResolved)
	assert.ErrorIs(t, r.Move(actor.RegionHead), hitloc.ErrResolved)
}

func TestConfirm_UsesRemainingHitsAfterMoves(t *testing.T) {
	r := hitloc.NewResolver(hitloc.Params{
		NetHits:              4,
		AttackerAbilityBonus: 5,
		WeaponBonusMax:       6,
	})
	require.NoError(t, r.Select(actor.RegionTorso))
	require.NoError(t, r.Move(actor.RegionHead)) // spends 2

	out, err := r.Confirm(0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.RemainingHits)
	// (5 + 6 + 2) - (0 + 0) = 13
	assert.Equal(t, 13, out.Damage)
}
