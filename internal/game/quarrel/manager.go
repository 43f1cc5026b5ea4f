package quarrel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/game/actor"
	"github.com/rkellett/quarrel/internal/game/check"
	"github.com/rkellett/quarrel/internal/game/dice"
)

// ErrSessionNotFound is returned for an unknown or already reaped combat id.
var ErrSessionNotFound = errors.New("quarrel session not found")

// ErrSessionClosed is returned when an operation arrives on a terminal
// session. Duplicate resolutions are expected with multiple clients and
// are logged then ignored by callers.
var ErrSessionClosed = errors.New("quarrel session closed")

// DefaultGracePeriod is how long a closed session stays addressable so
// late duplicate messages resolve to ErrSessionClosed instead of
// ErrSessionNotFound.
const DefaultGracePeriod = 2 * time.Minute

// Manager tracks in-flight quarrel sessions by combat id.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	grace  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates an empty Manager.
//
// Precondition: logger must be non-nil. grace <= 0 selects
// DefaultGracePeriod.
func NewManager(grace time.Duration, logger *zap.Logger) *Manager {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Manager{
		sessions: make(map[string]*Session),
		grace:    grace,
		logger:   logger,
		now:      time.Now,
	}
}

// Open starts a quarrel from the attacker's recorded check and returns
// the combat id threading the rest of the resolution.
func (m *Manager) Open(attacker, defender Party, attackerCheck check.Result) string {
	id := uuid.NewString()
	s := newSession(id, attacker, defender, attackerCheck)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("quarrel opened",
		zap.String("combatId", id),
		zap.String("attacker", s.AttackerName()),
		zap.String("defender", s.DefenderName()),
		zap.Int("attackerHits", attackerCheck.Hits),
	)
	return id
}

// Get returns the session for a combat id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("combat %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// ResolveDefense records the defender's check against an open quarrel.
// A duplicate resolution on a closed session is logged and reported as
// ErrSessionClosed; the stored outcome is untouched.
func (m *Manager) ResolveDefense(id string, defenderCheck check.Result) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveDefense(defenderCheck, m.now()); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			m.logger.Warn("duplicate quarrel resolution ignored", zap.String("combatId", id))
		}
		return nil, err
	}

	m.logger.Info("quarrel defense resolved",
		zap.String("combatId", id),
		zap.Int("defenderHits", defenderCheck.Hits),
		zap.Int("netHits", s.NetHits()),
		zap.Bool("deflected", s.Deflected()),
	)
	return s, nil
}

// SelectRegion records the defender's free initial region pick.
func (m *Manager) SelectRegion(id string, r actor.Region) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.selectRegion(r)
}

// MoveRegion spends attacker hits to shift the wound to an adjacent
// region, or refunds on undo.
func (m *Manager) MoveRegion(id string, to actor.Region) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.moveRegion(to)
}

// Confirm applies the hit with the requested wear deltas and closes the
// session. The realized armor dice stay on the outcome for replay.
func (m *Manager) Confirm(id string, weaponWearDelta, armorWearDelta int, src dice.Source) (Outcome, error) {
	s, err := m.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	out, err := s.confirm(weaponWearDelta, armorWearDelta, src, m.now())
	if err != nil {
		if errors.Is(err, ErrSessionClosed) {
			m.logger.Warn("duplicate quarrel confirmation ignored", zap.String("combatId", id))
		}
		return Outcome{}, err
	}

	m.logger.Info("quarrel confirmed",
		zap.String("combatId", id),
		zap.String("region", string(out.Hit.Region)),
		zap.Int("damage", out.Hit.Damage),
		zap.String("injury", out.Injury.FullName()),
	)
	return out, nil
}

// Reap removes closed sessions whose grace period has elapsed and
// returns how many were dropped.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.grace)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		dead := s.phase == PhaseClosed && s.closedAt.Before(cutoff)
		s.mu.Unlock()
		if dead {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.logger.Debug("reaped quarrel sessions", zap.Int("count", n))
	}
	return n
}

// Run reaps periodically until the context is cancelled. Intended to be
// started as a goroutine by the arbiter.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Len returns the number of tracked sessions, including closed ones
// inside their grace period.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
