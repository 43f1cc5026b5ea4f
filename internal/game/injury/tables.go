package injury

import "github.com/rkellett/quarrel/internal/game/actor"

// Key selects one of the four injury tables. Left/right body regions
// share the arm and leg tables; the side is carried separately.
type Key string

const (
	KeyHead  Key = "head"
	KeyTorso Key = "torso"
	KeyArm   Key = "arm"
	KeyLeg   Key = "leg"
)

// EffectEntry is one rung of a damage-indexed effect ladder. Text uses
// the effect encoding parsed by ParseEffect: a display name, then
// comma-separated pipe-delimited condition clauses, with a trailing '*'
// for Medical Aid or '‡' for Surgery.
type EffectEntry struct {
	Threshold int
	Text      string
}

// TableEntry maps one d10 sub-roll to a specific wound location and its
// effect ladder.
//
// Invariant: Effects is sorted ascending by Threshold and never empty.
type TableEntry struct {
	Location string
	// Side overrides the side derived from the body region; used by head
	// entries like ears and eyes where the d10 decides the side.
	Side    string
	Effects []EffectEntry
}

// TableKeyFor maps a body region to its table key and inherent side.
func TableKeyFor(region actor.Region) (Key, string) {
	switch region {
	case actor.RegionHead:
		return KeyHead, ""
	case actor.RegionTorso:
		return KeyTorso, ""
	case actor.RegionLeftArm:
		return KeyArm, "left"
	case actor.RegionRightArm:
		return KeyArm, "right"
	case actor.RegionLeftLeg:
		return KeyLeg, "left"
	case actor.RegionRightLeg:
		return KeyLeg, "right"
	}
	return KeyTorso, ""
}

// tables holds the four injury tables, each keyed by d10 sub-roll 1..10.
var tables = map[Key]map[int]TableEntry{
	KeyHead: {
		1: {Location: "Jaw", Effects: []EffectEntry{
			{1, "Split Lip, Pain 1*"},
			{3, "Cracked Jaw, Pain 2*"},
			{6, "Shattered Jaw, Pain 3|Bleed 1‡"},
			{9, "Torn-off Jaw, Pain 4|Bleed 2|Trauma 2‡"},
		}},
		2: {Location: "Ear", Side: "left", Effects: []EffectEntry{
			{1, "Boxed Ear, Pain 1"},
			{3, "Burst Eardrum, Deaf 1|Pain 1*"},
			{6, "Severed Ear, Deaf 1|Bleed 1‡"},
			{9, "Crushed Ear, Deaf 2|Trauma 1‡"},
		}},
		3: {Location: "Ear", Side: "right", Effects: []EffectEntry{
			{1, "Boxed Ear, Pain 1"},
			{3, "Burst Eardrum, Deaf 1|Pain 1*"},
			{6, "Severed Ear, Deaf 1|Bleed 1‡"},
			{9, "Crushed Ear, Deaf 2|Trauma 1‡"},
		}},
		4: {Location: "Eye", Side: "left", Effects: []EffectEntry{
			{1, "Grazed Brow, Pain 1*"},
			{3, "Gouged Eye, Pain 2|Bleed 1*"},
			{6, "Ruptured Eye, Blind 1|Pain 2‡"},
			{9, "Lost Eye, Blind 1|Trauma 2‡"},
		}},
		5: {Location: "Eye", Side: "right", Effects: []EffectEntry{
			{1, "Grazed Brow, Pain 1*"},
			{3, "Gouged Eye, Pain 2|Bleed 1*"},
			{6, "Ruptured Eye, Blind 1|Pain 2‡"},
			{9, "Lost Eye, Blind 1|Trauma 2‡"},
		}},
		6: {Location: "Nose", Effects: []EffectEntry{
			{1, "Bloodied Nose, Pain 1"},
			{3, "Broken Nose, Pain 2|Bleed 1*"},
			{6, "Crushed Nose, Pain 3|Bleed 2‡"},
			{9, "Caved-in Face, Pain 4|Bleed 2|Trauma 2‡"},
		}},
		7: {Location: "Cheek", Effects: []EffectEntry{
			{1, "Grazed Cheek, Pain 1"},
			{3, "Gashed Cheek, Pain 1|Bleed 1*"},
			{6, "Flayed Cheek, Pain 2|Bleed 2‡"},
			{9, "Exposed Bone, Pain 3|Bleed 2|Trauma 1‡"},
		}},
		8: {Location: "Neck", Effects: []EffectEntry{
			{1, "Wrenched Neck, Pain 1*"},
			{3, "Gashed Throat, Bleed 2|Pain 1‡"},
			{6, "Severed Artery, Bleed 4‡"},
			{9, "Crushed Windpipe, Bleed 3|Trauma 3‡"},
		}},
		9: {Location: "Skull", Effects: []EffectEntry{
			{1, "Scalp Wound, Bleed 1|Pain 1*"},
			{3, "Concussion, Pain 2|Stress 1*"},
			{6, "Fractured Skull, Pain 3|Trauma 2‡"},
			{9, "Caved-in Skull, Trauma 4|Stress 2‡"},
		}},
		10: {Location: "Skull", Effects: []EffectEntry{
			{1, "Scalp Wound, Bleed 1|Pain 1*"},
			{3, "Concussion, Pain 2|Stress 1*"},
			{6, "Fractured Skull, Pain 3|Trauma 2‡"},
			{9, "Caved-in Skull, Trauma 4|Stress 2‡"},
		}},
	},
	KeyTorso: {
		1: {Location: "Shoulder", Side: "left", Effects: []EffectEntry{
			{1, "Bruised Shoulder, Pain 1"},
			{3, "Dislocated Shoulder, Pain 2*"},
			{6, "Shattered Shoulder, Pain 3|Trauma 1‡"},
			{9, "Ruined Shoulder, Pain 4|Trauma 2‡"},
		}},
		2: {Location: "Shoulder", Side: "right", Effects: []EffectEntry{
			{1, "Bruised Shoulder, Pain 1"},
			{3, "Dislocated Shoulder, Pain 2*"},
			{6, "Shattered Shoulder, Pain 3|Trauma 1‡"},
			{9, "Ruined Shoulder, Pain 4|Trauma 2‡"},
		}},
		3: {Location: "Ribs", Effects: []EffectEntry{
			{1, "Bruised Ribs, Pain 1"},
			{3, "Cracked Ribs, Pain 2*"},
			{6, "Broken Ribs, Pain 3|Bleed 1‡"},
			{9, "Staved-in Chest, Pain 4|Bleed 2|Trauma 2‡"},
		}},
		4: {Location: "Ribs", Effects: []EffectEntry{
			{1, "Bruised Ribs, Pain 1"},
			{3, "Cracked Ribs, Pain 2*"},
			{6, "Broken Ribs, Pain 3|Bleed 1‡"},
			{9, "Staved-in Chest, Pain 4|Bleed 2|Trauma 2‡"},
		}},
		5: {Location: "Guts", Effects: []EffectEntry{
			{1, "Winded, Pain 1"},
			{3, "Torn Muscle, Pain 2|Bleed 1*"},
			{6, "Gut Wound, Pain 3|Bleed 2‡"},
			{9, "Spilled Guts, Bleed 4|Trauma 3‡"},
		}},
		6: {Location: "Guts", Effects: []EffectEntry{
			{1, "Winded, Pain 1"},
			{3, "Torn Muscle, Pain 2|Bleed 1*"},
			{6, "Gut Wound, Pain 3|Bleed 2‡"},
			{9, "Spilled Guts, Bleed 4|Trauma 3‡"},
		}},
		7: {Location: "Back", Effects: []EffectEntry{
			{1, "Wrenched Back, Pain 1*"},
			{3, "Torn Back, Pain 2|Bleed 1*"},
			{6, "Cracked Spine, Pain 3|Trauma 2‡"},
			{9, "Severed Spine, Trauma 4‡"},
		}},
		8: {Location: "Hip", Side: "left", Effects: []EffectEntry{
			{1, "Bruised Hip, Pain 1"},
			{3, "Chipped Hip, Pain 2*"},
			{6, "Cracked Pelvis, Pain 3|Trauma 1‡"},
			{9, "Shattered Pelvis, Pain 4|Trauma 3‡"},
		}},
		9: {Location: "Hip", Side: "right", Effects: []EffectEntry{
			{1, "Bruised Hip, Pain 1"},
			{3, "Chipped Hip, Pain 2*"},
			{6, "Cracked Pelvis, Pain 3|Trauma 1‡"},
			{9, "Shattered Pelvis, Pain 4|Trauma 3‡"},
		}},
		10: {Location: "Heart", Effects: []EffectEntry{
			{1, "Hammered Chest, Pain 1"},
			{3, "Bruised Heart, Pain 2|Stress 1*"},
			{6, "Pierced Chest, Bleed 3|Pain 3‡"},
			{9, "Pierced Heart, Bleed 5|Trauma 4‡"},
		}},
	},
	KeyArm: {
		1: {Location: "Hand", Effects: []EffectEntry{
			{1, "Bruised Knuckles, Pain 1"},
			{3, "Broken Finger, Pain 2*"},
			{6, "Crushed Hand, Pain 3|Trauma 1‡"},
			{9, "Severed Hand, Bleed 3|Trauma 3‡"},
		}},
		2: {Location: "Hand", Effects: []EffectEntry{
			{1, "Bruised Knuckles, Pain 1"},
			{3, "Broken Finger, Pain 2*"},
			{6, "Crushed Hand, Pain 3|Trauma 1‡"},
			{9, "Severed Hand, Bleed 3|Trauma 3‡"},
		}},
		3: {Location: "Wrist", Effects: []EffectEntry{
			{1, "Sprained Wrist, Pain 1*"},
			{3, "Fractured Wrist, Pain 2*"},
			{6, "Shattered Wrist, Pain 3|Trauma 1‡"},
			{9, "Severed Hand, Bleed 3|Trauma 3‡"},
		}},
		4: {Location: "Forearm", Effects: []EffectEntry{
			{1, "Grazed Forearm, Pain 1"},
			{3, "Gashed Forearm, Pain 1|Bleed 1*"},
			{6, "Broken Forearm, Pain 3|Trauma 1‡"},
			{9, "Severed Forearm, Bleed 3|Trauma 3‡"},
		}},
		5: {Location: "Forearm", Effects: []EffectEntry{
			{1, "Grazed Forearm, Pain 1"},
			{3, "Gashed Forearm, Pain 1|Bleed 1*"},
			{6, "Broken Forearm, Pain 3|Trauma 1‡"},
			{9, "Severed Forearm, Bleed 3|Trauma 3‡"},
		}},
		6: {Location: "Elbow", Effects: []EffectEntry{
			{1, "Bruised Elbow, Pain 1"},
			{3, "Hyperextended Elbow, Pain 2*"},
			{6, "Shattered Elbow, Pain 3|Trauma 2‡"},
			{9, "Ruined Elbow, Pain 4|Trauma 3‡"},
		}},
		7: {Location: "Upper Arm", Effects: []EffectEntry{
			{1, "Bruised Arm, Pain 1"},
			{3, "Torn Bicep, Pain 2|Bleed 1*"},
			{6, "Broken Arm, Pain 3|Trauma 1‡"},
			{9, "Severed Arm, Bleed 4|Trauma 3‡"},
		}},
		8: {Location: "Upper Arm", Effects: []EffectEntry{
			{1, "Bruised Arm, Pain 1"},
			{3, "Torn Bicep, Pain 2|Bleed 1*"},
			{6, "Broken Arm, Pain 3|Trauma 1‡"},
			{9, "Severed Arm, Bleed 4|Trauma 3‡"},
		}},
		9: {Location: "Shoulder Joint", Effects: []EffectEntry{
			{1, "Jarred Shoulder, Pain 1"},
			{3, "Dislocated Shoulder, Pain 2*"},
			{6, "Shattered Joint, Pain 3|Trauma 2‡"},
			{9, "Arm Torn Off, Bleed 5|Trauma 4‡"},
		}},
		10: {Location: "Shoulder Joint", Effects: []EffectEntry{
			{1, "Jarred Shoulder, Pain 1"},
			{3, "Dislocated Shoulder, Pain 2*"},
			{6, "Shattered Joint, Pain 3|Trauma 2‡"},
			{9, "Arm Torn Off, Bleed 5|Trauma 4‡"},
		}},
	},
	KeyLeg: {
		1: {Location: "Foot", Effects: []EffectEntry{
			{1, "Stubbed Toes, Pain 1"},
			{3, "Broken Toes, Pain 2*"},
			{6, "Crushed Foot, Pain 3|Trauma 1‡"},
			{9, "Severed Foot, Bleed 3|Trauma 3‡"},
		}},
		2: {Location: "Foot", Effects: []EffectEntry{
			{1, "Stubbed Toes, Pain 1"},
			{3, "Broken Toes, Pain 2*"},
			{6, "Crushed Foot, Pain 3|Trauma 1‡"},
			{9, "Severed Foot, Bleed 3|Trauma 3‡"},
		}},
		3: {Location: "Ankle", Effects: []EffectEntry{
			{1, "Twisted Ankle, Pain 1*"},
			{3, "Sprained Ankle, Pain 2*"},
			{6, "Shattered Ankle, Pain 3|Trauma 1‡"},
			{9, "Severed Foot, Bleed 3|Trauma 3‡"},
		}},
		4: {Location: "Shin", Effects: []EffectEntry{
			{1, "Barked Shin, Pain 1"},
			{3, "Gashed Shin, Pain 1|Bleed 1*"},
			{6, "Broken Shin, Pain 3|Trauma 1‡"},
			{9, "Splintered Shin, Bleed 2|Trauma 3‡"},
		}},
		5: {Location: "Shin", Effects: []EffectEntry{
			{1, "Barked Shin, Pain 1"},
			{3, "Gashed Shin, Pain 1|Bleed 1*"},
			{6, "Broken Shin, Pain 3|Trauma 1‡"},
			{9, "Splintered Shin, Bleed 2|Trauma 3‡"},
		}},
		6: {Location: "Knee", Effects: []EffectEntry{
			{1, "Bruised Knee, Pain 1"},
			{3, "Twisted Knee, Pain 2*"},
			{6, "Shattered Kneecap, Pain 3|Trauma 2‡"},
			{9, "Ruined Knee, Pain 4|Trauma 3‡"},
		}},
		7: {Location: "Thigh", Effects: []EffectEntry{
			{1, "Bruised Thigh, Pain 1"},
			{3, "Torn Hamstring, Pain 2|Bleed 1*"},
			{6, "Broken Thigh, Pain 3|Bleed 2‡"},
			{9, "Severed Leg, Bleed 5|Trauma 4‡"},
		}},
		8: {Location: "Thigh", Effects: []EffectEntry{
			{1, "Bruised Thigh, Pain 1"},
			{3, "Torn Hamstring, Pain 2|Bleed 1*"},
			{6, "Broken Thigh, Pain 3|Bleed 2‡"},
			{9, "Severed Leg, Bleed 5|Trauma 4‡"},
		}},
		9: {Location: "Hip Joint", Effects: []EffectEntry{
			{1, "Jarred Hip, Pain 1"},
			{3, "Dislocated Hip, Pain 2*"},
			{6, "Cracked Hip Joint, Pain 3|Trauma 2‡"},
			{9, "Leg Torn Off, Bleed 5|Trauma 4‡"},
		}},
		10: {Location: "Hip Joint", Effects: []EffectEntry{
			{1, "Jarred Hip, Pain 1"},
			{3, "Dislocated Hip, Pain 2*"},
			{6, "Cracked Hip Joint, Pain 3|Trauma 2‡"},
			{9, "Leg Torn Off, Bleed 5|Trauma 4‡"},
		}},
	},
}

// Lookup returns the table entry for key at the given d10 sub-roll.
//
// Precondition: roll must be in [1, 10].
// Postcondition: (entry, true) for every valid key/roll combination.
func Lookup(key Key, roll int) (TableEntry, bool) {
	table, ok := tables[key]
	if !ok {
		return TableEntry{}, false
	}
	entry, ok := table[roll]
	return entry, ok
}
