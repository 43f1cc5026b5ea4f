package actor

// PrepareDerivedData recomputes every derived field from authoritative
// state, self-healing malformed substructures to documented defaults.
// It is safe to call on any actor in any state and never fails: the
// pipeline depends on preparation being unable to abort a resolution.
//
// Postcondition: all maps are non-nil; attribute bonuses equal value/10;
// every skill has a non-nil specializations slice; battle-wear values are
// clamped to [0, bonusMax]; Derived is fully populated.
func (a *Actor) PrepareDerivedData() {
	a.healStructure()

	for _, attr := range a.Attributes {
		if attr.Value < 0 {
			attr.Value = 0
		}
		attr.Bonus = attr.Value / 10
	}

	for _, cat := range a.Skills {
		for _, sk := range cat {
			if sk.Specializations == nil {
				sk.Specializations = []Specialization{}
			}
		}
	}

	for _, cv := range a.Conditions {
		if cv.Value < 0 {
			cv.Value = 0
		}
	}
	for _, cv := range a.Trauma {
		if cv.Value < 0 {
			cv.Value = 0
		}
	}

	switch a.Kind {
	case KindMonster:
		a.prepareMonster()
	default:
		a.prepareDescendant()
	}

	a.clampBattleWear()
	a.prepareAnatomy()
}

// healStructure coerces missing substructures to their defaults so later
// passes can index freely.
func (a *Actor) healStructure() {
	if a.Kind != KindMonster && a.Kind != KindDescendant {
		a.Kind = KindDescendant
	}
	if a.Attributes == nil {
		a.Attributes = make(map[string]*Attribute, len(AttributeKeys))
	}
	for _, key := range AttributeKeys {
		if a.Attributes[key] == nil {
			a.Attributes[key] = &Attribute{}
		}
	}
	if a.Skills == nil {
		a.Skills = make(map[string]map[string]*Skill)
	}
	if a.Conditions == nil {
		a.Conditions = make(map[string]*ConditionValue)
	}
	if a.Trauma == nil {
		a.Trauma = make(map[Region]*ConditionValue)
	}
	if a.Anatomy == nil {
		a.Anatomy = make(map[Region]*RegionStats)
	}
	if a.BattleWear.Armor == nil {
		a.BattleWear.Armor = make(map[Region]*WearSlot)
	}
	for _, r := range Regions() {
		if a.BattleWear.Armor[r] == nil {
			a.BattleWear.Armor[r] = &WearSlot{}
		}
		if a.Anatomy[r] == nil {
			a.Anatomy[r] = &RegionStats{}
		}
	}
	if a.Mob.Bodies < 0 {
		a.Mob.Bodies = 0
	}
}

// prepareMonster recomputes the monster derived block. All outputs are
// pure functions of MonsterStats plus battle wear.
func (a *Actor) prepareMonster() {
	d := &a.Derived
	d.AbilityScore = AbilityScoreFor(a.Stats.HitDice)
	d.AbilityBonus = d.AbilityScore / 10
	d.PlusHits = PlusHitsFor(a.Stats.HitDice)

	baseDamage := d.AbilityBonus + SizeModifier(a.Stats.Size)
	if baseDamage < 1 {
		baseDamage = 1
	}
	d.DamageValue = baseDamage + WeaponDamage(a.Stats.WeaponType)
	d.SoakValue = d.AbilityBonus + ArmorValue(a.Stats.ArmorType)

	d.WeaponBonusMax = WeaponDamage(a.Stats.WeaponType)
	d.ArmorBonusMax = make(map[Region]int, len(Regions()))
	d.ArmorBonusEffective = make(map[Region]int, len(Regions()))
	for _, r := range Regions() {
		d.ArmorBonusMax[r] = ArmorValue(a.Stats.ArmorType)
	}
}

// prepareDescendant recomputes the descendant derived block. Descendants
// carry their soak on toughness and their armor per region.
func (a *Actor) prepareDescendant() {
	d := &a.Derived
	tough := a.Attributes["toughness"]
	d.AbilityScore = tough.Value
	d.AbilityBonus = tough.Value / 10
	d.PlusHits = 0
	d.DamageValue = d.AbilityBonus + WeaponDamage(a.Stats.WeaponType)
	d.SoakValue = d.AbilityBonus + ArmorValue(a.Stats.ArmorType)

	d.WeaponBonusMax = WeaponDamage(a.Stats.WeaponType)
	d.ArmorBonusMax = make(map[Region]int, len(Regions()))
	d.ArmorBonusEffective = make(map[Region]int, len(Regions()))
	for _, r := range Regions() {
		d.ArmorBonusMax[r] = ArmorValue(a.Stats.ArmorType)
	}
}

// clampBattleWear bounds every wear slot to [0, bonusMax] and fills in the
// effective bonuses. Weapon wear raises the effective weapon bonus (wear is
// accumulated exposed damage, not degradation); armor wear lowers the
// effective armor bonus.
func (a *Actor) clampBattleWear() {
	d := &a.Derived

	w := &a.BattleWear.Weapon
	w.Value = clamp(w.Value, 0, d.WeaponBonusMax)
	d.WeaponBonusEffective = d.WeaponBonusMax + w.Value

	for _, r := range Regions() {
		ws := a.BattleWear.Armor[r]
		ws.Value = clamp(ws.Value, 0, d.ArmorBonusMax[r])
		d.ArmorBonusEffective[r] = d.ArmorBonusMax[r] - ws.Value
	}
}

// prepareAnatomy fills the per-region soak/armor block from the derived
// values and trauma state.
func (a *Actor) prepareAnatomy() {
	for _, r := range Regions() {
		stats := a.Anatomy[r]
		stats.Soak = a.Derived.SoakValue
		stats.Armor = a.Derived.ArmorBonusEffective[r]
	}
}

// ResetBattleWear zeroes every wear slot.
//
// Postcondition: weapon wear and all armor wear values are 0.
func (a *Actor) ResetBattleWear() {
	a.BattleWear.Weapon.Value = 0
	for _, ws := range a.BattleWear.Armor {
		if ws != nil {
			ws.Value = 0
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
