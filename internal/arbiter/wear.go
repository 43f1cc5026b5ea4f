// Package arbiter coordinates quarrel resolution across connected
// clients: it applies battle wear GM-authoritatively over the broadcast
// channel, posts chat cards for every stage, and adapts the broadcast
// contract onto a websocket hub for the standalone binary.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/hitloc"
	"github.com/rkellett/quarrel/internal/host"
)

// Broadcast event names for the battle-wear protocol.
const (
	EventWearRequest = "wear.request"
	EventWearApplied = "wear.applied"
)

// DefaultWearTimeout bounds how long a requester waits for the GM-side
// application before giving up.
const DefaultWearTimeout = 10 * time.Second

// ErrWearTimeout is returned when no WearApplied arrives in time. The
// requester's local state is left untouched.
var ErrWearTimeout = errors.New("battle wear request timed out")

// WearRequest asks the GM-side handler to add battle wear to an actor.
// Deltas are requests; the handler clamps them against the actor's
// current wear and bonus maxima.
type WearRequest struct {
	CombatID    string
	ActorID     string
	WeaponDelta int
	ArmorDelta  int
	Region      actor.Region
}

// WearApplied reports the post-application totals after clamping.
type WearApplied struct {
	CombatID   string
	ActorID    string
	WeaponWear int
	ArmorWear  int
	Region     actor.Region
}

func (r WearRequest) event() host.Event {
	return host.Event{
		Name: EventWearRequest,
		Payload: map[string]any{
			"combatId":    r.CombatID,
			"actorId":     r.ActorID,
			"weaponDelta": r.WeaponDelta,
			"armorDelta":  r.ArmorDelta,
			"region":      string(r.Region),
		},
	}
}

func wearRequestFrom(ev host.Event) WearRequest {
	return WearRequest{
		CombatID:    payloadString(ev.Payload, "combatId"),
		ActorID:     payloadString(ev.Payload, "actorId"),
		WeaponDelta: payloadInt(ev.Payload, "weaponDelta"),
		ArmorDelta:  payloadInt(ev.Payload, "armorDelta"),
		Region:      actor.Region(payloadString(ev.Payload, "region")),
	}
}

func (a WearApplied) event() host.Event {
	return host.Event{
		Name: EventWearApplied,
		Payload: map[string]any{
			"combatId":   a.CombatID,
			"actorId":    a.ActorID,
			"weaponWear": a.WeaponWear,
			"armorWear":  a.ArmorWear,
			"region":     string(a.Region),
		},
	}
}

func wearAppliedFrom(ev host.Event) WearApplied {
	return WearApplied{
		CombatID:   payloadString(ev.Payload, "combatId"),
		ActorID:    payloadString(ev.Payload, "actorId"),
		WeaponWear: payloadInt(ev.Payload, "weaponWear"),
		ArmorWear:  payloadInt(ev.Payload, "armorWear"),
		Region:     actor.Region(payloadString(ev.Payload, "region")),
	}
}

func payloadString(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func payloadInt(p map[string]any, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// WearHandler is the GM-side authority: it is the only component that
// writes battle wear. Every client emits requests; exactly one handler
// runs, on the GM's session.
type WearHandler struct {
	store  host.ActorStore
	bus    host.Broadcaster
	logger *zap.Logger
}

// NewWearHandler creates a handler. Call Start to subscribe it.
func NewWearHandler(store host.ActorStore, bus host.Broadcaster, logger *zap.Logger) *WearHandler {
	return &WearHandler{store: store, bus: bus, logger: logger}
}

// Start subscribes the handler to WearRequest events.
func (h *WearHandler) Start() {
	h.bus.On(EventWearRequest, func(ev host.Event) {
		req := wearRequestFrom(ev)
		applied, err := h.Apply(context.Background(), req)
		if err != nil {
			h.logger.Error("battle wear application failed",
				zap.String("combatId", req.CombatID),
				zap.String("actor", req.ActorID),
				zap.Error(err),
			)
			return
		}
		h.bus.Emit(applied.event())
	})
}

// Apply performs the clamped read-modify-write for one request and
// returns the resulting totals. The read and write go through the actor
// store so the document stays authoritative.
func (h *WearHandler) Apply(ctx context.Context, req WearRequest) (WearApplied, error) {
	doc, err := h.store.Get(ctx, req.ActorID)
	if err != nil {
		return WearApplied{}, fmt.Errorf("loading actor for wear: %w", err)
	}
	a := actor.FromDocument(req.ActorID, doc)

	weaponDelta := hitloc.ClampWear(req.WeaponDelta, a.BattleWear.Weapon.Value, a.Derived.WeaponBonusMax)
	armorDelta := hitloc.ClampWear(req.ArmorDelta, a.ArmorWear(req.Region), a.Derived.ArmorBonusMax[req.Region])

	applied := WearApplied{
		CombatID:   req.CombatID,
		ActorID:    req.ActorID,
		WeaponWear: a.BattleWear.Weapon.Value + weaponDelta,
		ArmorWear:  a.ArmorWear(req.Region) + armorDelta,
		Region:     req.Region,
	}

	changes := map[string]any{}
	if weaponDelta > 0 {
		changes["system.battleWear.weapon.value"] = applied.WeaponWear
	}
	if armorDelta > 0 && actor.IsValidRegion(req.Region) {
		changes[fmt.Sprintf("system.battleWear.armor.%s.value", req.Region)] = applied.ArmorWear
	}
	if len(changes) > 0 {
		if err := h.store.Update(ctx, req.ActorID, changes); err != nil {
			return WearApplied{}, fmt.Errorf("persisting battle wear: %w", err)
		}
	}

	h.logger.Info("battle wear applied",
		zap.String("combatId", req.CombatID),
		zap.String("actor", req.ActorID),
		zap.Int("weaponWear", applied.WeaponWear),
		zap.Int("armorWear", applied.ArmorWear),
		zap.String("region", string(req.Region)),
	)
	return applied, nil
}

// WearClient emits wear requests and waits for the GM-side application.
// One client serves a whole session; replies are routed to waiters by
// combat id and actor id.
type WearClient struct {
	bus     host.Broadcaster
	timeout time.Duration

	mu      sync.Mutex
	waiters map[string]chan WearApplied
}

// NewWearClient creates a client and subscribes it to WearApplied
// events. timeout <= 0 selects DefaultWearTimeout.
func NewWearClient(bus host.Broadcaster, timeout time.Duration) *WearClient {
	if timeout <= 0 {
		timeout = DefaultWearTimeout
	}
	c := &WearClient{
		bus:     bus,
		timeout: timeout,
		waiters: make(map[string]chan WearApplied),
	}
	bus.On(EventWearApplied, c.dispatch)
	return c
}

func waiterKey(combatID, actorID string) string {
	return combatID + "/" + actorID
}

func (c *WearClient) dispatch(ev host.Event) {
	applied := wearAppliedFrom(ev)
	key := waiterKey(applied.CombatID, applied.ActorID)

	c.mu.Lock()
	ch, ok := c.waiters[key]
	if ok {
		delete(c.waiters, key)
	}
	c.mu.Unlock()
	if ok {
		ch <- applied
	}
}

// Apply emits the request and blocks until the GM-side handler reports
// the applied totals, the timeout elapses, or ctx is cancelled.
//
// Postcondition: on ErrWearTimeout no state anywhere has been assumed
// changed; the caller may retry with the same request.
func (c *WearClient) Apply(ctx context.Context, req WearRequest) (WearApplied, error) {
	key := waiterKey(req.CombatID, req.ActorID)
	ch := make(chan WearApplied, 1)

	c.mu.Lock()
	c.waiters[key] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.waiters, key)
		c.mu.Unlock()
	}

	c.bus.Emit(req.event())

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case applied := <-ch:
		return applied, nil
	case <-timer.C:
		cleanup()
		return WearApplied{}, fmt.Errorf("combat %q actor %q: %w", req.CombatID, req.ActorID, ErrWearTimeout)
	case <-ctx.Done():
		cleanup()
		return WearApplied{}, ctx.Err()
	}
}
