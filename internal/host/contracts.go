// Package host defines the narrow contracts this engine consumes from
// the virtual-tabletop host — actor/item persistence, chat transport,
// broadcast channel, roll-mode visibility, and template rendering —
// together with in-memory reference implementations used by tests and
// the standalone arbiter.
package host

import (
	"context"
	"errors"
)

// ErrActorNotFound is returned by lookups against a missing actor.
var ErrActorNotFound = errors.New("actor not found")

// ErrMessageNotFound is returned by lookups against a missing chat message.
var ErrMessageNotFound = errors.New("chat message not found")

// ActorStore is the host's actor/item persistence. Actors are loosely
// typed documents; Update takes deep dot-path partial updates such as
// "system.battleWear.armor.torso.value".
type ActorStore interface {
	// Get returns the document for the actor, or ErrActorNotFound.
	Get(ctx context.Context, id string) (map[string]any, error)
	// Update applies dot-path partial updates to the actor's document.
	Update(ctx context.Context, id string, changes map[string]any) error
	// CreateEmbedded creates embedded documents (e.g. injury items) on
	// the actor and returns their generated ids.
	CreateEmbedded(ctx context.Context, actorID, docType string, docs []map[string]any) ([]string, error)
	// DeleteEmbedded removes embedded documents by id.
	DeleteEmbedded(ctx context.Context, actorID, docType string, ids []string) error
}

// Message is one chat entry. Flags is namespaced arbitrary storage used
// to thread combat ids, injury data, and battle wear across renders.
type Message struct {
	ID      string
	Content string
	Speaker string
	// Whisper restricts delivery to the listed user ids; empty means
	// public.
	Whisper []string
	Flags   map[string]map[string]any
}

// Flag returns the flag value under namespace/key, or (nil, false).
func (m Message) Flag(namespace, key string) (any, bool) {
	ns, ok := m.Flags[namespace]
	if !ok {
		return nil, false
	}
	v, ok := ns[key]
	return v, ok
}

// ChatTransport is the host's chat-message channel.
type ChatTransport interface {
	// Create posts a message and returns its id.
	Create(ctx context.Context, msg Message) (string, error)
	// Get returns a previously created message, or ErrMessageNotFound.
	Get(ctx context.Context, id string) (Message, error)
	// SetFlag stores a namespaced flag on an existing message.
	SetFlag(ctx context.Context, messageID, namespace, key string, value any) error
}

// Event is one broadcast-channel payload.
type Event struct {
	Name    string
	Payload map[string]any
}

// Broadcaster is the host's fire-and-forget event channel: emission
// reaches all connected clients including the local one.
type Broadcaster interface {
	Emit(ev Event)
	// On registers a handler for events with the given name. Handlers
	// must not block.
	On(name string, handler func(Event))
}

// TemplateRenderer turns a structured data object into markup for
// embedding in chat payloads. The engine never renders HTML itself.
type TemplateRenderer interface {
	Render(name string, data any) (string, error)
}

// RollMode controls message recipient restriction.
type RollMode string

const (
	RollPublic  RollMode = "public"
	RollPrivate RollMode = "private" // GM only
	RollSelf    RollMode = "self"
	RollGMSelf  RollMode = "gmself" // GM plus the roller
)

// WhisperTargets resolves a roll mode to the whisper list for a message:
// nil for public, the GM ids for private, the roller for self, and both
// for gmself. Applied identically for attribute, skill, and monster
// checks.
func WhisperTargets(mode RollMode, gmIDs []string, selfID string) []string {
	switch mode {
	case RollPrivate:
		return append([]string(nil), gmIDs...)
	case RollSelf:
		return []string{selfID}
	case RollGMSelf:
		return append(append([]string(nil), gmIDs...), selfID)
	default:
		return nil
	}
}
