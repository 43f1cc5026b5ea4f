// Package injury implements the injury table repository and the injury
// synthesis stage: mapping a final body region, a d10 specific-location
// sub-roll, and a damage total to a structured, persistable injury record.
package injury

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// MedicalOption classifies how an injury can be treated.
type MedicalOption string

const (
	MedicalNone    MedicalOption = "none"
	MedicalAid     MedicalOption = "aid"
	MedicalSurgery MedicalOption = "surgery"
)

// Treatment glyphs carried at the end of effect strings.
const (
	glyphAid     = "*"
	glyphSurgery = "‡"
)

// ConditionDelta is one condition inflicted by an injury.
type ConditionDelta struct {
	Type   string
	Rating int
}

// Record is the persisted result of injury synthesis, stored as an
// embedded item on the defender.
type Record struct {
	Region  actor.Region
	SubRoll int // the d10 specific-location roll, stored for idempotent re-display
	// Location is the resolved wound location with side, e.g. "Left Eye".
	Location string
	Severity int // 1..10
	// Effect is the display name of the selected effect with treatment
	// glyphs and condition clauses stripped, e.g. "Ruptured Eye".
	Effect              string
	Deflected           bool
	Conditions          []ConditionDelta
	MedicalOption       MedicalOption
	TreatmentDifficulty int
}

// FullName returns the display name of the wound location, including the
// side when one applies.
func (r Record) FullName() string {
	return r.Location
}

// Deflected is the record produced when damage fails to penetrate; the
// table is not consulted.
func deflectedRecord(region actor.Region, subRoll int) Record {
	return Record{
		Region:        region,
		SubRoll:       subRoll,
		Location:      "Deflected",
		Effect:        "Deflected",
		Deflected:     true,
		Conditions:    []ConditionDelta{},
		MedicalOption: MedicalNone,
	}
}

// Synthesize builds the injury record for a wound to region with the
// given damage, using the provided d10 sub-roll. Passing the same
// sub-roll twice yields the same record (idempotent re-display).
//
// Precondition: subRoll must be in [1, 10].
// Postcondition: returns a fully populated Record; damage <= 0 yields a
// deflected record without consulting the table.
func Synthesize(region actor.Region, damage, subRoll int) (Record, error) {
	if subRoll < 1 || subRoll > 10 {
		return Record{}, fmt.Errorf("injury sub-roll %d out of range [1,10]", subRoll)
	}
	if damage <= 0 {
		return deflectedRecord(region, subRoll), nil
	}

	key, side := TableKeyFor(region)
	entry, ok := Lookup(key, subRoll)
	if !ok {
		return Record{}, fmt.Errorf("no injury table entry for %s roll %d", key, subRoll)
	}
	if entry.Side != "" {
		side = entry.Side
	}

	effect := selectEffect(entry.Effects, damage)
	parsed := ParseEffect(effect.Text)

	severity := damage
	if severity > 10 {
		severity = 10
	}

	rec := Record{
		Region:        region,
		SubRoll:       subRoll,
		Location:      locationName(entry.Location, side),
		Severity:      severity,
		Effect:        parsed.Name,
		Conditions:    parsed.Conditions,
		MedicalOption: parsed.MedicalOption,
	}
	switch parsed.MedicalOption {
	case MedicalAid:
		rec.TreatmentDifficulty = max(1, damage/2)
	case MedicalSurgery:
		rec.TreatmentDifficulty = damage
	}
	return rec, nil
}

// Roll synthesizes an injury, rolling the d10 specific-location sub-roll
// when storedRoll is nil and reusing it otherwise. Callers persist the
// returned record's SubRoll so later re-displays do not re-roll.
//
// Precondition: src must be non-nil when storedRoll is nil.
func Roll(region actor.Region, damage int, storedRoll *int, src dice.Source) (Record, error) {
	sub := 0
	if storedRoll != nil {
		sub = *storedRoll
	} else {
		sub = dice.D10(src)
	}
	return Synthesize(region, damage, sub)
}

// selectEffect picks the highest-threshold entry with Threshold <= damage,
// scanning descending so the first match wins. Falls back to the lowest
// rung when damage is below every threshold.
//
// Precondition: effects is non-empty and sorted ascending by Threshold.
func selectEffect(effects []EffectEntry, damage int) EffectEntry {
	for i := len(effects) - 1; i >= 0; i-- {
		if effects[i].Threshold <= damage {
			return effects[i]
		}
	}
	return effects[0]
}

// ParsedEffect is the structured form of an encoded effect string.
type ParsedEffect struct {
	Name          string
	Conditions    []ConditionDelta
	MedicalOption MedicalOption
}

// ParseEffect decodes an effect string: "Name, Cond N|Cond2 M" with an
// optional trailing treatment glyph ('*' aid, '‡' surgery). The
// glyph and condition clauses are stripped from the display name.
// Malformed clauses are skipped rather than failing; a display name is
// always produced.
func ParseEffect(text string) ParsedEffect {
	p := ParsedEffect{MedicalOption: MedicalNone, Conditions: []ConditionDelta{}}

	text = strings.TrimSpace(text)
	switch {
	case strings.HasSuffix(text, glyphSurgery):
		p.MedicalOption = MedicalSurgery
		text = strings.TrimSuffix(text, glyphSurgery)
	case strings.HasSuffix(text, glyphAid):
		p.MedicalOption = MedicalAid
		text = strings.TrimSuffix(text, glyphAid)
	}

	name, clauses, found := strings.Cut(text, ",")
	p.Name = strings.TrimSpace(name)
	if !found {
		return p
	}

	for _, clause := range strings.Split(clauses, "|") {
		fields := strings.Fields(clause)
		if len(fields) != 2 {
			continue
		}
		rating, err := strconv.Atoi(fields[1])
		if err != nil || rating < 0 {
			continue
		}
		p.Conditions = append(p.Conditions, ConditionDelta{
			Type:   strings.ToLower(fields[0]),
			Rating: rating,
		})
	}
	return p
}

func locationName(location, side string) string {
	if side == "" {
		return location
	}
	return strings.ToUpper(side[:1]) + side[1:] + " " + location
}
