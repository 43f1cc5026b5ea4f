package arbiter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/quarrel"
	"github.com/rkellett/quarrel/internal/host"
)

// FlagScope is the namespace all quarrel flags live under on chat
// messages.
const FlagScope = "quarrel"

// Card template names. The renderer decides what each one looks like;
// the arbiter only supplies data.
const (
	TemplateCheck       = "check-card"
	TemplateQuarrelOpen = "quarrel-open"
	TemplateDeflected   = "quarrel-deflected"
	TemplateHitLocation = "hit-location"
	TemplateInjury      = "injury-card"
	TemplateCondition   = "condition-quarrel"
)

// Card is one chat post: a template plus data, visibility, and the
// flags threading the resolution across messages.
type Card struct {
	Template string
	Data     any
	Speaker  string
	Mode     host.RollMode
	// UserID is the posting user, consulted for self/gm-self whispers.
	UserID string
	Flags  map[string]any
}

// CardPoster renders cards and posts them through the chat transport.
// Roll-mode visibility is applied identically regardless of what kind
// of check produced the card.
type CardPoster struct {
	chat     host.ChatTransport
	renderer host.TemplateRenderer
	gmIDs    []string
	logger   *zap.Logger
}

// NewCardPoster creates a CardPoster.
func NewCardPoster(chat host.ChatTransport, renderer host.TemplateRenderer, gmIDs []string, logger *zap.Logger) *CardPoster {
	return &CardPoster{chat: chat, renderer: renderer, gmIDs: gmIDs, logger: logger}
}

// Post renders and posts one card, returning the message id.
func (p *CardPoster) Post(ctx context.Context, card Card) (string, error) {
	content, err := p.renderer.Render(card.Template, card.Data)
	if err != nil {
		return "", fmt.Errorf("rendering %q card: %w", card.Template, err)
	}

	msg := host.Message{
		Content: content,
		Speaker: card.Speaker,
		Whisper: host.WhisperTargets(card.Mode, p.gmIDs, card.UserID),
	}
	if len(card.Flags) > 0 {
		msg.Flags = map[string]map[string]any{FlagScope: card.Flags}
	}

	id, err := p.chat.Create(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("posting %q card: %w", card.Template, err)
	}
	p.logger.Debug("chat card posted",
		zap.String("template", card.Template),
		zap.String("message", id),
		zap.String("mode", string(card.Mode)),
	)
	return id, nil
}

// CheckCard builds the card for a bare check result. combatID may be
// empty when the roll opened no quarrel.
func CheckCard(speaker string, res check.Result, mode host.RollMode, userID, combatID string) Card {
	flags := map[string]any{"check": checkFlags(res)}
	if combatID != "" {
		flags["combatId"] = combatID
	}
	return Card{
		Template: TemplateCheck,
		Data:     res,
		Speaker:  speaker,
		Mode:     mode,
		UserID:   userID,
		Flags:    flags,
	}
}

// QuarrelCard builds the stage card for a session: open, deflected, or
// hit-location, by phase. Flags carry the combat id so later messages
// can resume the session.
func QuarrelCard(s *quarrel.Session, mode host.RollMode, userID string) Card {
	template := TemplateQuarrelOpen
	flags := map[string]any{"combatId": s.ID()}
	switch {
	case s.Deflected():
		template = TemplateDeflected
	case s.Phase() == quarrel.PhaseHitLocationPending:
		template = TemplateHitLocation
		flags["netHits"] = s.NetHits()
	}
	return Card{
		Template: template,
		Data:     map[string]any{"summary": s.Summary(), "combatId": s.ID()},
		Speaker:  s.AttackerName(),
		Mode:     mode,
		UserID:   userID,
		Flags:    flags,
	}
}

// InjuryCard builds the final card for a confirmed outcome, threading
// both the combat id and the injury/wear data for replay.
func InjuryCard(s *quarrel.Session, out quarrel.Outcome, mode host.RollMode, userID string) Card {
	return Card{
		Template: TemplateInjury,
		Data: map[string]any{
			"summary": s.Summary(),
			"injury":  out.Injury,
			"damage":  out.Hit.Damage,
		},
		Speaker: s.AttackerName(),
		Mode:    mode,
		UserID:  userID,
		Flags: map[string]any{
			"combatId":        s.ID(),
			"region":          string(out.Hit.Region),
			"damage":          out.Hit.Damage,
			"severity":        out.Injury.Severity,
			"subRoll":         out.Injury.SubRoll,
			"weaponWearDelta": out.Hit.WeaponWearDelta,
			"armorWearDelta":  out.Hit.ArmorWearDelta,
			"armorDice":       out.Hit.ArmorDice,
		},
	}
}

// ConditionCard builds the card for a resolved condition-quarrel.
func ConditionCard(res quarrel.ConditionResult, speaker string, mode host.RollMode, userID string) Card {
	return Card{
		Template: TemplateCondition,
		Data:     map[string]any{"message": res.Message, "check": res.Check},
		Speaker:  speaker,
		Mode:     mode,
		UserID:   userID,
		Flags:    map[string]any{"check": checkFlags(res.Check), "grants": res.Grants},
	}
}

func checkFlags(res check.Result) map[string]any {
	return map[string]any{
		"roll":     res.Roll,
		"target":   res.Target,
		"success":  res.Success,
		"critical": res.Critical,
		"fumble":   res.Fumble,
		"hits":     res.Hits,
	}
}
