// Package quarrel implements opposed-roll resolution: two checks are
// compared, the net hits feed the hit-location stage, and the applied
// outcome produces an injury record on the defender.
package quarrel

import (
	"fmt"
	"sync"
	"time"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/dice"
	"github.com/rkellett/quarrel/internal/game/hitloc"
	"github.com/rkellett/quarrel/internal/game/injury"
)

// Phase is a quarrel session lifecycle state. Transitions are strictly
// forward; a closed session never reopens.
type Phase string

const (
	PhaseInitiated           Phase = "initiated"
	PhaseAwaitingSecondRoll  Phase = "awaitingSecondRoll"
	PhaseNetResolved         Phase = "netResolved"
	PhaseHitLocationPending  Phase = "hitLocationPending"
	PhaseHitLocationResolved Phase = "hitLocationResolved"
	PhaseClosed              Phase = "closed"
)

// Party is one side of a quarrel. TokenName is the scene-token label when
// the roll came from a placed token; it takes display precedence over the
// actor's directory name.
type Party struct {
	Actor     *actor.Actor
	TokenName string
}

// DisplayName resolves the party's name for chat cards: token name first,
// then the actor's name, then the placeholder. It never fails.
func (p Party) DisplayName(placeholder string) string {
	if p.TokenName != "" {
		return p.TokenName
	}
	if p.Actor != nil && p.Actor.Name != "" {
		return p.Actor.Name
	}
	return placeholder
}

// Outcome bundles the applied hit with the injury it produced.
type Outcome struct {
	Hit    hitloc.Outcome
	Injury injury.Record
}

// Session is one in-flight quarrel. All exported methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	attacker Party
	defender Party

	attackerCheck check.Result
	defenderCheck check.Result

	phase     Phase
	netHits   int
	deflected bool
	resolver  *hitloc.Resolver
	outcome   *Outcome
	closedAt  time.Time
}

func newSession(id string, attacker, defender Party, attackerCheck check.Result) *Session {
	s := &Session{
		id:       id,
		attacker: attacker,
		defender: defender,
		phase:    PhaseInitiated,
	}
	s.attackerCheck = attackerCheck
	s.phase = PhaseAwaitingSecondRoll
	return s
}

// ID returns the combat id.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Attacker and Defender return the parties.
func (s *Session) Attacker() Party { return s.attacker }
func (s *Session) Defender() Party { return s.defender }

// AttackerName and DefenderName resolve display names with the
// token, actor, placeholder fallback chain.
func (s *Session) AttackerName() string { return s.attacker.DisplayName("Attacker") }
func (s *Session) DefenderName() string { return s.defender.DisplayName("Defender") }

// NetHits returns the resolved net hits. Zero before the defense roll.
func (s *Session) NetHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.netHits
}

// Deflected reports whether the defense roll already ended the quarrel.
func (s *Session) Deflected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deflected
}

// Checks returns both recorded check results.
func (s *Session) Checks() (attacker, defender check.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attackerCheck, s.defenderCheck
}

// Outcome returns the applied outcome, or nil before confirmation.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// resolveDefense records the defender's check and computes net hits.
// net <= 0 deflects and closes the session without a hit-location stage;
// net > 0 opens the hit-location resolver from both actors' derived data.
func (s *Session) resolveDefense(res check.Result, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}
	if s.phase != PhaseAwaitingSecondRoll {
		return fmt.Errorf("quarrel %s: defense roll in phase %q", s.id, s.phase)
	}

	s.defenderCheck = res
	s.netHits = s.attackerCheck.Hits - res.Hits
	s.phase = PhaseNetResolved

	if s.netHits <= 0 {
		s.deflected = true
		s.outcome = &Outcome{Injury: deflectedInjury()}
		s.close(now)
		return nil
	}

	s.resolver = hitloc.NewResolver(resolverParams(s.attacker.Actor, s.defender.Actor, s.netHits))
	s.phase = PhaseHitLocationPending
	return nil
}

func deflectedInjury() injury.Record {
	// Region is irrelevant on a deflection; no table lookup happens.
	rec, _ := injury.Synthesize(actor.RegionTorso, 0, 1)
	return rec
}

// resolverParams flattens both actors' prepared derived data into the
// inputs the hit-location stage needs. Either actor may be nil (a bare
// check with no sheet behind it); missing data previews as zero.
func resolverParams(attacker, defender *actor.Actor, netHits int) hitloc.Params {
	p := hitloc.Params{
		NetHits:       netHits,
		Soak:          map[actor.Region]int{},
		ArmorBonusMax: map[actor.Region]int{},
		ArmorWear:     map[actor.Region]int{},
	}
	if attacker != nil {
		p.WeaponDamage = attacker.Derived.DamageValue
		p.AttackerAbilityBonus = attacker.Derived.AbilityBonus
		p.WeaponBonusMax = attacker.Derived.WeaponBonusMax
		p.WeaponWear = attacker.BattleWear.Weapon.Value
	}
	if defender != nil {
		p.DefenderAbilityBonus = defender.Derived.AbilityBonus
		for _, r := range actor.Regions() {
			if st, ok := defender.Anatomy[r]; ok && st != nil {
				p.Soak[r] = st.Soak
			}
			p.ArmorBonusMax[r] = defender.Derived.ArmorBonusMax[r]
			p.ArmorWear[r] = defender.ArmorWear(r)
		}
	}
	return p
}

// Resolver exposes the hit-location stage for previews and region picks.
// It is nil outside the hit-location phases.
func (s *Session) Resolver() *hitloc.Resolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver
}

func (s *Session) selectRegion(r actor.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}
	if s.phase != PhaseHitLocationPending {
		return fmt.Errorf("quarrel %s: region select in phase %q", s.id, s.phase)
	}
	return s.resolver.Select(r)
}

func (s *Session) moveRegion(to actor.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseClosed {
		return ErrSessionClosed
	}
	if s.phase != PhaseHitLocationPending {
		return fmt.Errorf("quarrel %s: region move in phase %q", s.id, s.phase)
	}
	return s.resolver.Move(to)
}

// confirm applies the hit with the requested wear deltas, synthesizes the
// injury from the final damage, and closes the session.
func (s *Session) confirm(weaponWearDelta, armorWearDelta int, src dice.Source, now time.Time) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return Outcome{}, ErrSessionClosed
	}
	if s.phase != PhaseHitLocationPending {
		return Outcome{}, fmt.Errorf("quarrel %s: confirm in phase %q", s.id, s.phase)
	}

	hit, err := s.resolver.Confirm(weaponWearDelta, armorWearDelta, src)
	if err != nil {
		return Outcome{}, err
	}
	rec, err := injury.Roll(hit.Region, hit.Damage, nil, src)
	if err != nil {
		return Outcome{}, fmt.Errorf("quarrel %s: synthesizing injury: %w", s.id, err)
	}

	s.outcome = &Outcome{Hit: hit, Injury: rec}
	s.phase = PhaseHitLocationResolved
	s.close(now)
	return *s.outcome, nil
}

// close marks the session terminal. Callers hold s.mu.
func (s *Session) close(now time.Time) {
	s.phase = PhaseClosed
	s.closedAt = now
}

// Summary renders the one-line result used in chat cards.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	atk := s.attacker.DisplayName("Attacker")
	def := s.defender.DisplayName("Defender")
	switch {
	case s.phase == PhaseInitiated || s.phase == PhaseAwaitingSecondRoll:
		return fmt.Sprintf("%s quarrels with %s", atk, def)
	case s.deflected:
		return fmt.Sprintf("%s deflects the quarrel from %s", def, atk)
	case s.outcome != nil:
		return fmt.Sprintf("%s hits %s: %s for %d damage",
			atk, def, s.outcome.Injury.FullName(), s.outcome.Hit.Damage)
	default:
		return fmt.Sprintf("%s hits %s with %d net hits", atk, def, s.netHits)
	}
}
