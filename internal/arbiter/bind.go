package arbiter

import (
	"context"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/host"
)

// Command event names accepted from clients over the broadcast channel.
const (
	EventQuarrelOpen     = "quarrel.open"
	EventQuarrelDefend   = "quarrel.defend"
	EventQuarrelSelect   = "quarrel.select"
	EventQuarrelMove     = "quarrel.move"
	EventQuarrelConfirm  = "quarrel.confirm"
	EventConditionAdjust = "condition.adjust"
	EventMobDamage       = "mob.damage"
)

// Bind subscribes the service's operations to their command events.
// Each handler runs on its own goroutine so the hub's read loop never
// blocks on store I/O.
func Bind(bus host.Broadcaster, svc *Service, logger *zap.Logger) {
	run := func(name string, fn func(context.Context) error) {
		go func() {
			if err := fn(context.Background()); err != nil {
				logger.Warn("command failed", zap.String("command", name), zap.Error(err))
			}
		}()
	}

	bus.On(EventQuarrelOpen, func(ev host.Event) {
		run(ev.Name, func(ctx context.Context) error {
			_, err := svc.OpenQuarrel(ctx,
				payloadString(ev.Payload, "attackerId"),
				payloadString(ev.Payload, "defenderId"),
				payloadInt(ev.Payload, "target"),
				payloadInt(ev.Payload, "modifier"),
				optsFrom(ev),
				rollModeFrom(ev),
				payloadString(ev.Payload, "userId"),
			)
			return err
		})
	})

	bus.On(EventQuarrelDefend, func(ev host.Event) {
		run(ev.Name, func(ctx context.Context) error {
			_, err := svc.DefendQuarrel(ctx,
				payloadString(ev.Payload, "combatId"),
				payloadInt(ev.Payload, "target"),
				payloadInt(ev.Payload, "modifier"),
				optsFrom(ev),
				rollModeFrom(ev),
				payloadString(ev.Payload, "userId"),
			)
			return err
		})
	})

	bus.On(EventQuarrelSelect, func(ev host.Event) {
		run(ev.Name, func(context.Context) error {
			return svc.SelectRegion(
				payloadString(ev.Payload, "combatId"),
				actor.Region(payloadString(ev.Payload, "region")),
			)
		})
	})

	bus.On(EventQuarrelMove, func(ev host.Event) {
		run(ev.Name, func(context.Context) error {
			return svc.MoveRegion(
				payloadString(ev.Payload, "combatId"),
				actor.Region(payloadString(ev.Payload, "region")),
			)
		})
	})

	bus.On(EventQuarrelConfirm, func(ev host.Event) {
		run(ev.Name, func(ctx context.Context) error {
			_, err := svc.ConfirmHit(ctx,
				payloadString(ev.Payload, "combatId"),
				payloadString(ev.Payload, "defenderId"),
				payloadInt(ev.Payload, "weaponWearDelta"),
				payloadInt(ev.Payload, "armorWearDelta"),
				rollModeFrom(ev),
				payloadString(ev.Payload, "userId"),
			)
			return err
		})
	})

	bus.On(EventConditionAdjust, func(ev host.Event) {
		run(ev.Name, func(ctx context.Context) error {
			_, err := svc.AdjustCondition(ctx,
				payloadString(ev.Payload, "actorId"),
				payloadString(ev.Payload, "condition"),
				payloadInt(ev.Payload, "delta"),
			)
			return err
		})
	})

	bus.On(EventMobDamage, func(ev host.Event) {
		run(ev.Name, func(ctx context.Context) error {
			_, err := svc.DamageMob(ctx,
				payloadString(ev.Payload, "actorId"),
				payloadInt(ev.Payload, "damage"),
				payloadInt(ev.Payload, "leaderTarget"),
			)
			return err
		})
	})
}

func optsFrom(ev host.Event) check.Options {
	luck, _ := ev.Payload["luckSpent"].(bool)
	return check.Options{
		LuckSpent:      luck,
		AdditionalHits: payloadInt(ev.Payload, "additionalHits"),
	}
}

func rollModeFrom(ev host.Event) host.RollMode {
	if mode := payloadString(ev.Payload, "mode"); mode != "" {
		return host.RollMode(mode)
	}
	return host.RollPublic
}
