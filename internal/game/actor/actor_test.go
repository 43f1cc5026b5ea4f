package actor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
)

func TestPrepareDerivedData_MonsterScenario(t *testing.T) {
	// Medium weapon (damage 6), light armor (armor 2), medium size (mod 0),
	// ability score 50: abilityBonus 5, baseDamage max(1, 5+0)=5,
	// damageValue 5+6=11, soakValue 5+2=7 before wear.
	a := &actor.Actor{
		Kind: actor.KindMonster,
		Stats: actor.MonsterStats{
			HitDice:    7, // ability score 50
			WeaponType: actor.TierMedium,
			ArmorType:  actor.TierLight,
			Size:       actor.SizeMedium,
		},
	}
	a.PrepareDerivedData()

	assert.Equal(t, 50, a.Derived.AbilityScore)
	assert.Equal(t, 5, a.Derived.AbilityBonus)
	assert.Equal(t, 11, a.Derived.DamageValue)
	assert.Equal(t, 7, a.Derived.SoakValue)
	assert.Equal(t, 6, a.Derived.WeaponBonusMax)
	for _, r := range actor.Regions() {
		assert.Equal(t, 2, a.Derived.ArmorBonusMax[r], "region %s", r)
		assert.Equal(t, 2, a.Derived.ArmorBonusEffective[r], "region %s", r)
	}
}

func TestPrepareDerivedData_SelfHealsMalformedActor(t *testing.T) {
	// A completely empty actor must come out of preparation usable.
	a := &actor.Actor{}
	a.PrepareDerivedData()

	assert.Equal(t, actor.KindDescendant, a.Kind)
	for _, key := range actor.AttributeKeys {
		require.NotNil(t, a.Attributes[key], "attribute %s", key)
	}
	for _, r := range actor.Regions() {
		require.NotNil(t, a.BattleWear.Armor[r])
		require.NotNil(t, a.Anatomy[r])
	}
}

func TestPrepareDerivedData_RecomputesBonuses(t *testing.T) {
	a := &actor.Actor{
		Kind: actor.KindDescendant,
		Attributes: map[string]*actor.Attribute{
			"toughness": {Value: 47, Bonus: 99}, // stale bonus must be overwritten
		},
	}
	a.PrepareDerivedData()
	assert.Equal(t, 4, a.Attributes["toughness"].Bonus)
	assert.Equal(t, 4, a.Derived.AbilityBonus)
}

func TestPrepareDerivedData_ClampsBattleWear(t *testing.T) {
	a := &actor.Actor{
		Kind: actor.KindMonster,
		Stats: actor.MonsterStats{
			HitDice:    7,
			WeaponType: actor.TierMedium, // max 6
			ArmorType:  actor.TierLight,  // max 2
		},
		BattleWear: actor.BattleWear{
			Weapon: actor.WearSlot{Value: 40},
			Armor: map[actor.Region]*actor.WearSlot{
				actor.RegionTorso: {Value: -3},
			},
		},
	}
	a.PrepareDerivedData()

	assert.Equal(t, 6, a.BattleWear.Weapon.Value)
	assert.Equal(t, 12, a.Derived.WeaponBonusEffective) // max + wear
	assert.Equal(t, 0, a.BattleWear.Armor[actor.RegionTorso].Value)
	assert.Equal(t, 2, a.Derived.ArmorBonusEffective[actor.RegionTorso])
}

func TestPrepareDerivedData_Property_WearAlwaysBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		wear := rapid.IntRange(-50, 50).Draw(rt, "wear")
		tier := rapid.SampledFrom([]actor.Tier{
			actor.TierUnarmed, actor.TierLight, actor.TierMedium,
			actor.TierHeavy, actor.TierSuperheavy,
		}).Draw(rt, "tier")
		a := &actor.Actor{
			Kind:       actor.KindMonster,
			Stats:      actor.MonsterStats{HitDice: 5, WeaponType: tier, ArmorType: tier},
			BattleWear: actor.BattleWear{Weapon: actor.WearSlot{Value: wear}},
		}
		a.PrepareDerivedData()
		assert.GreaterOrEqual(rt, a.BattleWear.Weapon.Value, 0)
		assert.LessOrEqual(rt, a.BattleWear.Weapon.Value, a.Derived.WeaponBonusMax)
	})
}

func TestResetBattleWear(t *testing.T) {
	a := &actor.Actor{
		Kind:  actor.KindMonster,
		Stats: actor.MonsterStats{HitDice: 7, WeaponType: actor.TierHeavy, ArmorType: actor.TierHeavy},
	}
	a.PrepareDerivedData()
	a.BattleWear.Weapon.Value = 4
	a.BattleWear.Armor[actor.RegionHead].Value = 3

	a.ResetBattleWear()
	assert.Equal(t, 0, a.BattleWear.Weapon.Value)
	for _, r := range actor.Regions() {
		assert.Equal(t, 0, a.BattleWear.Armor[r].Value)
	}
}

func TestAbilityScoreFor_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 20, actor.AbilityScoreFor(0))
	assert.Equal(t, 20, actor.AbilityScoreFor(-7))
	assert.Equal(t, 75, actor.AbilityScoreFor(40))
}

func TestBehaviorFor_SelectsVariant(t *testing.T) {
	d := &actor.Actor{Kind: actor.KindDescendant}
	m := &actor.Actor{Kind: actor.KindMonster}
	d.PrepareDerivedData()
	m.PrepareDerivedData()

	_, isDesc := actor.BehaviorFor(d).(*actor.DescendantBehavior)
	_, isMon := actor.BehaviorFor(m).(*actor.MonsterBehavior)
	assert.True(t, isDesc)
	assert.True(t, isMon)
}

// fixedSource always returns the same die face.
type fixedSource struct{ face int }

func (f fixedSource) Intn(n int) int { return (f.face - 1) % n }

func TestDescendantBehavior_RollAttribute(t *testing.T) {
	a := &actor.Actor{
		Kind: actor.KindDescendant,
		Attributes: map[string]*actor.Attribute{
			"agility": {Value: 55},
		},
	}
	a.PrepareDerivedData()
	b := actor.BehaviorFor(a)

	r, err := b.RollAttribute("agility", -10, check.Options{}, fixedSource{face: 42})
	require.NoError(t, err)
	assert.Equal(t, 45, r.Target) // 55 - 10 condition modifier
	assert.True(t, r.Success)

	_, err = b.RollAttribute("nonsense", 0, check.Options{}, fixedSource{face: 42})
	assert.Error(t, err)
}

func TestMonsterBehavior_AddsPlusHits(t *testing.T) {
	a := &actor.Actor{
		Kind:  actor.KindMonster,
		Stats: actor.MonsterStats{HitDice: 10}, // ability 65, plusHits 2
	}
	a.PrepareDerivedData()
	b := actor.BehaviorFor(a)

	r := b.RollCheck(60, check.Options{}, fixedSource{face: 42})
	// hits = 6 - 4 + plusHits 2
	assert.Equal(t, 4, r.Hits)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := map[string]any{
		"name": "Gravel Jaw",
		"kind": "monster",
		"system": map[string]any{
			"stats": map[string]any{
				"hitDice":    float64(7), // JSON numbers arrive as float64
				"weaponType": "medium",
				"armorType":  "light",
				"size":       "medium",
			},
			"battleWear": map[string]any{
				"weapon": map[string]any{"value": float64(2)},
				"armor": map[string]any{
					"torso": map[string]any{"value": float64(1)},
				},
			},
			"mob": map[string]any{"isMob": true, "bodies": float64(22)},
		},
	}
	a := actor.FromDocument("m1", doc)

	assert.Equal(t, "Gravel Jaw", a.Name)
	assert.Equal(t, actor.KindMonster, a.Kind)
	assert.Equal(t, 50, a.Derived.AbilityScore)
	assert.Equal(t, 2, a.BattleWear.Weapon.Value)
	assert.Equal(t, 1, a.BattleWear.Armor[actor.RegionTorso].Value)
	assert.True(t, a.Mob.IsMob)
	assert.Equal(t, 22, a.Mob.Bodies)

	out := actor.ToDocument(a)
	back := actor.FromDocument("m1", out)
	assert.Equal(t, a.Derived, back.Derived)
	assert.Equal(t, a.Mob, back.Mob)
	assert.Equal(t, a.BattleWear.Weapon, back.BattleWear.Weapon)
}

func TestFromDocument_MalformedDataSelfHeals(t *testing.T) {
	doc := map[string]any{
		"kind": "monster",
		"system": map[string]any{
			"stats": map[string]any{
				"hitDice":    "not a number",
				"weaponType": "plasma", // unknown tier
			},
		},
	}
	a := actor.FromDocument("m2", doc)
	assert.Equal(t, 20, a.Derived.AbilityScore)                  // hit dice healed to 1
	assert.Equal(t, 2, actor.WeaponDamage(a.Stats.WeaponType))   // unknown tier -> unarmed
}
