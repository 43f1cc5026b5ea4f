package arbiter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/conditions"
	"github.com/rkellett/quarrel/internal/game/dice"
	"github.com/rkellett/quarrel/internal/game/injury"
	"github.com/rkellett/quarrel/internal/game/mob"
	"github.com/rkellett/quarrel/internal/game/quarrel"
	"github.com/rkellett/quarrel/internal/host"
)

// Service is the arbiter's orchestration layer: it loads actors, rolls
// checks with condition modifiers applied, drives quarrel sessions, and
// persists outcomes, posting a chat card at every stage.
type Service struct {
	sessions *quarrel.Manager
	actors   host.ActorStore
	registry *conditions.Registry
	tracker  *conditions.Tracker
	poster   *CardPoster
	src      dice.Source
	logger   *zap.Logger
}

// NewService wires the orchestration layer.
//
// Precondition: all arguments must be non-nil.
func NewService(
	sessions *quarrel.Manager,
	actors host.ActorStore,
	registry *conditions.Registry,
	tracker *conditions.Tracker,
	poster *CardPoster,
	src dice.Source,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		actors:   actors,
		registry: registry,
		tracker:  tracker,
		poster:   poster,
		src:      src,
		logger:   logger,
	}
}

// loadParty fetches and prepares an actor. A missing or empty id yields
// an empty party; name resolution then falls back to the placeholder.
func (s *Service) loadParty(ctx context.Context, actorID, tokenName string) quarrel.Party {
	p := quarrel.Party{TokenName: tokenName}
	if actorID == "" {
		return p
	}
	doc, err := s.actors.Get(ctx, actorID)
	if err != nil {
		s.logger.Warn("actor unavailable for quarrel", zap.String("actor", actorID), zap.Error(err))
		return p
	}
	p.Actor = actor.FromDocument(actorID, doc)
	return p
}

func (s *Service) conditionIDs() []string {
	defs := s.registry.All()
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	return ids
}

// rollFor rolls a check for the party with all bearer condition
// modifiers folded into the target. A nil actor rolls against the raw
// target.
func (s *Service) rollFor(p quarrel.Party, target, modifier int, opts check.Options) check.Result {
	effective := target + modifier
	if p.Actor != nil {
		effective += conditions.CheckModifier(s.registry, p.Actor, s.conditionIDs()...)
		return actor.BehaviorFor(p.Actor).RollCheck(effective, opts, s.src)
	}
	return check.Evaluate(effective, opts, s.src)
}

// OpenQuarrel rolls the attacker's check and opens a session. The
// defender's prone-style conditions raise the attacker's target.
func (s *Service) OpenQuarrel(ctx context.Context, attackerID, defenderID string, target, modifier int, opts check.Options, mode host.RollMode, userID string) (string, error) {
	attacker := s.loadParty(ctx, attackerID, "")
	defender := s.loadParty(ctx, defenderID, "")

	if defender.Actor != nil {
		modifier += conditions.AttackerModifier(s.registry, defender.Actor)
	}
	res := s.rollFor(attacker, target, modifier, opts)

	combatID := s.sessions.Open(attacker, defender, res)
	sess, err := s.sessions.Get(combatID)
	if err != nil {
		return "", err
	}
	if _, err := s.poster.Post(ctx, QuarrelCard(sess, mode, userID)); err != nil {
		s.logger.Error("posting quarrel card", zap.Error(err))
	}
	return combatID, nil
}

// DefendQuarrel rolls the defender's check and resolves net hits,
// posting either the deflection card or the hit-location card.
func (s *Service) DefendQuarrel(ctx context.Context, combatID string, target, modifier int, opts check.Options, mode host.RollMode, userID string) (*quarrel.Session, error) {
	sess, err := s.sessions.Get(combatID)
	if err != nil {
		return nil, err
	}
	res := s.rollFor(sess.Defender(), target, modifier, opts)

	sess, err = s.sessions.ResolveDefense(combatID, res)
	if err != nil {
		return nil, err
	}
	if _, err := s.poster.Post(ctx, QuarrelCard(sess, mode, userID)); err != nil {
		s.logger.Error("posting quarrel card", zap.Error(err))
	}
	return sess, nil
}

// SelectRegion and MoveRegion proxy the hit-location stage.
func (s *Service) SelectRegion(combatID string, r actor.Region) error {
	return s.sessions.SelectRegion(combatID, r)
}

func (s *Service) MoveRegion(combatID string, to actor.Region) error {
	return s.sessions.MoveRegion(combatID, to)
}

// ConfirmHit applies the hit, persists the injury and its condition
// deltas on the defender, and posts the injury card. defenderID may be
// empty for sheetless targets; persistence is then skipped.
func (s *Service) ConfirmHit(ctx context.Context, combatID, defenderID string, weaponWearDelta, armorWearDelta int, mode host.RollMode, userID string) (quarrel.Outcome, error) {
	out, err := s.sessions.Confirm(combatID, weaponWearDelta, armorWearDelta, s.src)
	if err != nil {
		return quarrel.Outcome{}, err
	}
	sess, err := s.sessions.Get(combatID)
	if err != nil {
		return quarrel.Outcome{}, err
	}

	if defenderID != "" && !out.Injury.Deflected {
		if err := s.persistInjury(ctx, defenderID, out); err != nil {
			s.logger.Error("persisting injury", zap.String("combatId", combatID), zap.Error(err))
		}
	}

	if _, err := s.poster.Post(ctx, InjuryCard(sess, out, mode, userID)); err != nil {
		s.logger.Error("posting injury card", zap.Error(err))
	}
	return out, nil
}

// persistInjury stores the injury record as an embedded document and
// applies its condition deltas through the tracker so threshold
// crossings fire.
func (s *Service) persistInjury(ctx context.Context, defenderID string, out quarrel.Outcome) error {
	rec := out.Injury
	conds := make([]map[string]any, 0, len(rec.Conditions))
	for _, delta := range rec.Conditions {
		conds = append(conds, map[string]any{
			"type":   delta.Type,
			"rating": delta.Rating,
		})
	}
	doc := map[string]any{
		"region":              string(rec.Region),
		"location":            rec.FullName(),
		"severity":            rec.Severity,
		"subRoll":             rec.SubRoll,
		"effect":              rec.Effect,
		"conditions":          conds,
		"medicalOption":       string(rec.MedicalOption),
		"treatmentDifficulty": rec.TreatmentDifficulty,
	}
	if _, err := s.actors.CreateEmbedded(ctx, defenderID, "injury", []map[string]any{doc}); err != nil {
		return err
	}

	adoc, err := s.actors.Get(ctx, defenderID)
	if err != nil {
		return err
	}
	a := actor.FromDocument(defenderID, adoc)
	for _, delta := range rec.Conditions {
		name := delta.Type
		// The tracker has already applied the delta when commit runs;
		// persist the post-mutation rating.
		if _, err := s.tracker.Adjust(a, name, delta.Rating, func() error {
			return s.actors.Update(ctx, defenderID, map[string]any{
				fmt.Sprintf("system.conditions.%s.value", name): a.ConditionRating(name),
			})
		}); err != nil {
			return err
		}
	}
	return nil
}

// AdjustCondition changes a condition rating through the tracker and
// persists the result. Threshold crossings fire after the commit.
func (s *Service) AdjustCondition(ctx context.Context, actorID, condition string, delta int) (int, error) {
	doc, err := s.actors.Get(ctx, actorID)
	if err != nil {
		return 0, err
	}
	a := actor.FromDocument(actorID, doc)
	return s.tracker.Adjust(a, condition, delta, func() error {
		return s.actors.Update(ctx, actorID, map[string]any{
			fmt.Sprintf("system.conditions.%s.value", condition): a.ConditionRating(condition),
		})
	})
}

// DamageMob applies damage to a mob actor, runs the rout check when the
// scale dropped, and persists the surviving body count. The rout check
// rolls the mob's own ability score unless leaderTarget is positive, in
// which case a designated leader rolls Leadership against that target
// instead.
func (s *Service) DamageMob(ctx context.Context, actorID string, damage, leaderTarget int) (mob.Attrition, error) {
	doc, err := s.actors.Get(ctx, actorID)
	if err != nil {
		return mob.Attrition{}, err
	}
	a := actor.FromDocument(actorID, doc)
	if !a.Mob.IsMob {
		return mob.Attrition{}, fmt.Errorf("actor %q is not a mob", actorID)
	}

	att := mob.ApplyDamage(a.Mob.Bodies, damage)
	remaining := att.RemainingBodies
	if att.RoutRequired {
		target := a.Derived.AbilityScore
		if leaderTarget > 0 {
			target = leaderTarget
		}
		rout := mob.RollRout(target, remaining, check.Options{}, s.src)
		remaining = rout.RemainingBodies
		s.logger.Info("mob rout check",
			zap.String("actor", actorID),
			zap.Int("target", target),
			zap.Bool("leader", leaderTarget > 0),
			zap.Bool("routed", rout.Routed),
			zap.Int("roll", rout.Check.Roll),
		)
	}

	if err := s.actors.Update(ctx, actorID, map[string]any{
		"system.mob.bodies": remaining,
	}); err != nil {
		return att, fmt.Errorf("persisting mob bodies: %w", err)
	}
	att.RemainingBodies = remaining
	return att, nil
}

// TreatInjury rolls a treatment check and deletes the embedded record
// on success. The injury's treatment difficulty penalizes the target by
// ten points per step, the same decade arithmetic that converts margin
// to hits.
func (s *Service) TreatInjury(ctx context.Context, actorID, itemID string, rec injury.Record, skillTarget int) (check.Result, error) {
	res := check.Evaluate(skillTarget-10*rec.TreatmentDifficulty, check.Options{}, s.src)
	if res.Success {
		if err := s.actors.DeleteEmbedded(ctx, actorID, "injury", []string{itemID}); err != nil {
			return res, fmt.Errorf("removing treated injury: %w", err)
		}
	}
	return res, nil
}
