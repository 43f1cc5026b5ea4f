package actor

// Tier classifies weapons and armor into the five equipment grades.
type Tier string

const (
	TierUnarmed    Tier = "unarmed"
	TierLight      Tier = "light"
	TierMedium     Tier = "medium"
	TierHeavy      Tier = "heavy"
	TierSuperheavy Tier = "superheavy"
)

// weaponDamage maps an equipment tier to its flat damage contribution.
var weaponDamage = map[Tier]int{
	TierUnarmed:    2,
	TierLight:      4,
	TierMedium:     6,
	TierHeavy:      8,
	TierSuperheavy: 10,
}

// armorValue maps an equipment tier to its flat protection contribution.
var armorValue = map[Tier]int{
	TierUnarmed:    0,
	TierLight:      2,
	TierMedium:     4,
	TierHeavy:      6,
	TierSuperheavy: 8,
}

// WeaponDamage returns the damage contribution for tier, self-healing an
// unknown tier to unarmed.
func WeaponDamage(t Tier) int {
	if v, ok := weaponDamage[t]; ok {
		return v
	}
	return weaponDamage[TierUnarmed]
}

// ArmorValue returns the protection contribution for tier, self-healing an
// unknown tier to unarmed.
func ArmorValue(t Tier) int {
	if v, ok := armorValue[t]; ok {
		return v
	}
	return armorValue[TierUnarmed]
}

// Size classifies monster bulk; it shifts base damage.
type Size string

const (
	SizeTiny   Size = "tiny"
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeHuge   Size = "huge"
)

var sizeModifier = map[Size]int{
	SizeTiny:   -4,
	SizeSmall:  -2,
	SizeMedium: 0,
	SizeLarge:  2,
	SizeHuge:   4,
}

// SizeModifier returns the damage modifier for size, self-healing an
// unknown size to medium.
func SizeModifier(s Size) int {
	if v, ok := sizeModifier[s]; ok {
		return v
	}
	return 0
}

// hitDiceScore maps a monster's hit dice to its ability score. Values
// outside the table floor/ceiling clamp to the nearest entry.
var hitDiceScore = map[int]int{
	1:  20,
	2:  25,
	3:  30,
	4:  35,
	5:  40,
	6:  45,
	7:  50,
	8:  55,
	9:  60,
	10: 65,
	11: 70,
	12: 75,
}

const (
	minHitDice = 1
	maxHitDice = 12
)

// AbilityScoreFor returns the ability score for the given hit dice.
// Non-positive input self-heals to the minimum; oversized input clamps to
// the maximum table entry.
func AbilityScoreFor(hitDice int) int {
	if hitDice < minHitDice {
		hitDice = minHitDice
	}
	if hitDice > maxHitDice {
		hitDice = maxHitDice
	}
	return hitDiceScore[hitDice]
}

// PlusHitsFor returns the automatic bonus hits a monster adds to checks:
// one for every full five hit dice.
func PlusHitsFor(hitDice int) int {
	if hitDice < 0 {
		return 0
	}
	return hitDice / 5
}
