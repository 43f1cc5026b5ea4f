// Package actor defines the actor domain model shared by descendants and
// monsters: attributes, skills, conditions, anatomy, battle wear, and the
// derived data recomputed on every preparation pass.
package actor

// Kind distinguishes the two actor variants.
type Kind string

const (
	KindDescendant Kind = "descendant"
	KindMonster    Kind = "monster"
)

// Region identifies one of the six body regions used by hit location,
// anatomy, trauma, and armor wear.
type Region string

const (
	RegionHead     Region = "head"
	RegionTorso    Region = "torso"
	RegionLeftArm  Region = "leftArm"
	RegionRightArm Region = "rightArm"
	RegionLeftLeg  Region = "leftLeg"
	RegionRightLeg Region = "rightLeg"
)

// Regions returns all six body regions in display order.
func Regions() []Region {
	return []Region{
		RegionHead, RegionTorso,
		RegionLeftArm, RegionRightArm,
		RegionLeftLeg, RegionRightLeg,
	}
}

// IsValidRegion reports whether r is one of the six body regions.
func IsValidRegion(r Region) bool {
	switch r {
	case RegionHead, RegionTorso, RegionLeftArm, RegionRightArm, RegionLeftLeg, RegionRightLeg:
		return true
	}
	return false
}

// AttributeKeys lists the nine attributes every actor carries.
var AttributeKeys = []string{
	"strength", "agility", "toughness",
	"perception", "intellect", "willpower",
	"fellowship", "finesse", "fortune",
}

// Attribute is a percentile stat.
//
// Invariant: Bonus is always recomputed as Value/10 during preparation,
// never stored authoritatively.
type Attribute struct {
	Value int
	Bonus int
}

// Specialization is a named focus under a skill granting bonus hits.
type Specialization struct {
	Name   string
	Rating int
}

// Skill is one learned skill under a category.
//
// Invariant: Specializations is never nil after preparation.
type Skill struct {
	Value           int
	Ability         string // linked attribute key
	Specializations []Specialization
}

// ConditionValue is a non-negative condition rating. Absence of an entry
// means rating 0.
type ConditionValue struct {
	Value int
}

// RegionStats is the derived per-region soak and armor.
type RegionStats struct {
	Soak  int
	Armor int
}

// WearSlot is one consumable battle-wear counter bounded by [0, bonusMax].
type WearSlot struct {
	Value int
}

// BattleWear tracks accumulated weapon and per-region armor wear. It
// persists across sessions until explicitly reset.
type BattleWear struct {
	Weapon WearSlot
	Armor  map[Region]*WearSlot
}

// MobTraits marks an aggregate multi-body actor.
type MobTraits struct {
	IsMob     bool
	Bodies    int
	Formation string
}

// MonsterStats holds the monster-variant inputs that derived data is
// computed from.
type MonsterStats struct {
	HitDice    int
	WeaponType Tier
	ArmorType  Tier
	Size       Size
}

// Derived holds values recomputed on every preparation pass. Nothing in
// here is authoritative; it is a pure function of stats plus battle wear.
type Derived struct {
	AbilityScore         int
	AbilityBonus         int
	DamageValue          int
	SoakValue            int
	PlusHits             int
	WeaponBonusMax       int
	WeaponBonusEffective int
	ArmorBonusMax        map[Region]int
	ArmorBonusEffective  map[Region]int
}

// Actor is the shared persistent state of a descendant or monster.
type Actor struct {
	ID   string
	Name string
	Kind Kind

	Attributes map[string]*Attribute
	Skills     map[string]map[string]*Skill
	Conditions map[string]*ConditionValue
	Trauma     map[Region]*ConditionValue
	Anatomy    map[Region]*RegionStats
	BattleWear BattleWear
	Mob        MobTraits
	Stats      MonsterStats

	Derived Derived
}

// ConditionRating returns the rating for the named condition, or 0 when
// the condition is absent.
func (a *Actor) ConditionRating(name string) int {
	if cv, ok := a.Conditions[name]; ok && cv != nil {
		return cv.Value
	}
	return 0
}

// TraumaRating returns the trauma rating for a body region, or 0.
func (a *Actor) TraumaRating(r Region) int {
	if cv, ok := a.Trauma[r]; ok && cv != nil {
		return cv.Value
	}
	return 0
}

// ArmorWear returns the current armor wear for a region, or 0.
func (a *Actor) ArmorWear(r Region) int {
	if ws, ok := a.BattleWear.Armor[r]; ok && ws != nil {
		return ws.Value
	}
	return 0
}

// AttributeValue returns the value of the named attribute, or 0 when the
// attribute is absent.
func (a *Actor) AttributeValue(key string) int {
	if attr, ok := a.Attributes[key]; ok && attr != nil {
		return attr.Value
	}
	return 0
}
