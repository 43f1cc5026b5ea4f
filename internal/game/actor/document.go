package actor

// Document conversion between the typed Actor model and the host's
// loosely-typed document shape (nested map[string]any, as delivered by the
// actor store). Decoding is deliberately permissive: malformed or missing
// fields coerce to documented defaults rather than failing, so a corrupt
// stored actor can never abort a resolution. PrepareDerivedData is run on
// every decode.

// FromDocument builds a typed Actor from a host document.
//
// Postcondition: returns a non-nil, fully prepared Actor. Never fails;
// unusable fields decay to defaults.
func FromDocument(id string, doc map[string]any) *Actor {
	a := &Actor{
		ID:   id,
		Name: asString(doc["name"], ""),
		Kind: Kind(asString(doc["kind"], string(KindDescendant))),
	}

	system := asMap(doc["system"])

	a.Attributes = make(map[string]*Attribute, len(AttributeKeys))
	for key, raw := range asMap(system["attributes"]) {
		m := asMap(raw)
		a.Attributes[key] = &Attribute{Value: asInt(m["value"], 0)}
	}

	a.Skills = make(map[string]map[string]*Skill)
	for category, rawCat := range asMap(system["skills"]) {
		cat := make(map[string]*Skill)
		for name, rawSkill := range asMap(rawCat) {
			m := asMap(rawSkill)
			sk := &Skill{
				Value:           asInt(m["value"], 0),
				Ability:         asString(m["ability"], ""),
				Specializations: []Specialization{},
			}
			for _, rawSpec := range asSlice(m["specializations"]) {
				sm := asMap(rawSpec)
				sk.Specializations = append(sk.Specializations, Specialization{
					Name:   asString(sm["name"], ""),
					Rating: asInt(sm["rating"], 0),
				})
			}
			cat[name] = sk
		}
		a.Skills[category] = cat
	}

	a.Conditions = make(map[string]*ConditionValue)
	a.Trauma = make(map[Region]*ConditionValue)
	for name, raw := range asMap(system["conditions"]) {
		if name == "trauma" {
			for region, rawT := range asMap(raw) {
				a.Trauma[Region(region)] = &ConditionValue{Value: asInt(asMap(rawT)["value"], 0)}
			}
			continue
		}
		a.Conditions[name] = &ConditionValue{Value: asInt(asMap(raw)["value"], 0)}
	}

	bw := asMap(system["battleWear"])
	a.BattleWear.Weapon.Value = asInt(asMap(bw["weapon"])["value"], 0)
	a.BattleWear.Armor = make(map[Region]*WearSlot)
	for region, raw := range asMap(bw["armor"]) {
		a.BattleWear.Armor[Region(region)] = &WearSlot{Value: asInt(asMap(raw)["value"], 0)}
	}

	stats := asMap(system["stats"])
	a.Stats = MonsterStats{
		HitDice:    asInt(stats["hitDice"], 1),
		WeaponType: Tier(asString(stats["weaponType"], string(TierUnarmed))),
		ArmorType:  Tier(asString(stats["armorType"], string(TierUnarmed))),
		Size:       Size(asString(stats["size"], string(SizeMedium))),
	}

	mob := asMap(system["mob"])
	a.Mob = MobTraits{
		IsMob:     asBool(mob["isMob"]),
		Bodies:    asInt(mob["bodies"], 0),
		Formation: asString(mob["formation"], ""),
	}

	a.PrepareDerivedData()
	return a
}

// ToDocument renders the authoritative state of a as a host document.
// Derived fields are not written; they are recomputed on decode.
func ToDocument(a *Actor) map[string]any {
	attributes := make(map[string]any, len(a.Attributes))
	for key, attr := range a.Attributes {
		attributes[key] = map[string]any{"value": attr.Value}
	}

	skills := make(map[string]any, len(a.Skills))
	for category, cat := range a.Skills {
		catDoc := make(map[string]any, len(cat))
		for name, sk := range cat {
			specs := make([]any, 0, len(sk.Specializations))
			for _, sp := range sk.Specializations {
				specs = append(specs, map[string]any{"name": sp.Name, "rating": sp.Rating})
			}
			catDoc[name] = map[string]any{
				"value":           sk.Value,
				"ability":         sk.Ability,
				"specializations": specs,
			}
		}
		skills[category] = catDoc
	}

	conditions := make(map[string]any, len(a.Conditions)+1)
	for name, cv := range a.Conditions {
		conditions[name] = map[string]any{"value": cv.Value}
	}
	trauma := make(map[string]any, len(a.Trauma))
	for region, cv := range a.Trauma {
		trauma[string(region)] = map[string]any{"value": cv.Value}
	}
	conditions["trauma"] = trauma

	armor := make(map[string]any, len(a.BattleWear.Armor))
	for region, ws := range a.BattleWear.Armor {
		armor[string(region)] = map[string]any{"value": ws.Value}
	}

	return map[string]any{
		"name": a.Name,
		"kind": string(a.Kind),
		"system": map[string]any{
			"attributes": attributes,
			"skills":     skills,
			"conditions": conditions,
			"battleWear": map[string]any{
				"weapon": map[string]any{"value": a.BattleWear.Weapon.Value},
				"armor":  armor,
			},
			"stats": map[string]any{
				"hitDice":    a.Stats.HitDice,
				"weaponType": string(a.Stats.WeaponType),
				"armorType":  string(a.Stats.ArmorType),
				"size":       string(a.Stats.Size),
			},
			"mob": map[string]any{
				"isMob":     a.Mob.IsMob,
				"bodies":    a.Mob.Bodies,
				"formation": a.Mob.Formation,
			},
		},
	}
}

// asMap coerces v to a map, returning an empty map for anything else.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// asInt coerces numeric JSON shapes (int, int64, float64) to int,
// falling back to def for anything non-numeric.
func asInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
