package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryActorStore is an in-process ActorStore. All methods are safe for
// concurrent use.
type MemoryActorStore struct {
	mu    sync.RWMutex
	docs  map[string]map[string]any
	items map[string]map[string][]embeddedDoc // actorID -> docType -> docs
}

type embeddedDoc struct {
	id   string
	data map[string]any
}

// NewMemoryActorStore creates an empty store.
func NewMemoryActorStore() *MemoryActorStore {
	return &MemoryActorStore{
		docs:  make(map[string]map[string]any),
		items: make(map[string]map[string][]embeddedDoc),
	}
}

// Put inserts or replaces an actor document. Test/seed helper.
func (s *MemoryActorStore) Put(id string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc
}

// Get returns a deep copy of the actor's document.
func (s *MemoryActorStore) Get(_ context.Context, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("actor %q: %w", id, ErrActorNotFound)
	}
	return deepCopy(doc), nil
}

// Update applies dot-path partial updates to the actor's document.
func (s *MemoryActorStore) Update(_ context.Context, id string, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("actor %q: %w", id, ErrActorNotFound)
	}
	return ApplyChanges(doc, changes)
}

// CreateEmbedded stores embedded documents on the actor and returns
// their generated ids.
func (s *MemoryActorStore) CreateEmbedded(_ context.Context, actorID, docType string, docs []map[string]any) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[actorID]; !ok {
		return nil, fmt.Errorf("actor %q: %w", actorID, ErrActorNotFound)
	}
	if s.items[actorID] == nil {
		s.items[actorID] = make(map[string][]embeddedDoc)
	}
	ids := make([]string, 0, len(docs))
	for _, data := range docs {
		id := uuid.NewString()
		s.items[actorID][docType] = append(s.items[actorID][docType], embeddedDoc{id: id, data: deepCopy(data)})
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteEmbedded removes embedded documents by id. Unknown ids are
// ignored.
func (s *MemoryActorStore) DeleteEmbedded(_ context.Context, actorID, docType string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.items[actorID][docType][:0]
	for _, doc := range s.items[actorID][docType] {
		if !drop[doc.id] {
			kept = append(kept, doc)
		}
	}
	if s.items[actorID] != nil {
		s.items[actorID][docType] = kept
	}
	return nil
}

// Embedded returns copies of the embedded documents of docType on the
// actor, in creation order.
func (s *MemoryActorStore) Embedded(actorID, docType string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.items[actorID][docType]
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, deepCopy(d.data))
	}
	return out
}

func deepCopy(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case map[string]any:
			out[k] = deepCopy(t)
		case []any:
			cp := make([]any, len(t))
			for i, e := range t {
				if m, ok := e.(map[string]any); ok {
					cp[i] = deepCopy(m)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// MemoryChat is an in-process ChatTransport.
type MemoryChat struct {
	mu       sync.RWMutex
	messages map[string]Message
	order    []string
}

// NewMemoryChat creates an empty chat transport.
func NewMemoryChat() *MemoryChat {
	return &MemoryChat{messages: make(map[string]Message)}
}

// Create posts a message and returns its generated id.
func (c *MemoryChat) Create(_ context.Context, msg Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.ID = uuid.NewString()
	if msg.Flags == nil {
		msg.Flags = make(map[string]map[string]any)
	}
	c.messages[msg.ID] = msg
	c.order = append(c.order, msg.ID)
	return msg.ID, nil
}

// Get returns a previously created message.
func (c *MemoryChat) Get(_ context.Context, id string) (Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msg, ok := c.messages[id]
	if !ok {
		return Message{}, fmt.Errorf("message %q: %w", id, ErrMessageNotFound)
	}
	return msg, nil
}

// SetFlag stores a namespaced flag on an existing message.
func (c *MemoryChat) SetFlag(_ context.Context, messageID, namespace, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	if !ok {
		return fmt.Errorf("message %q: %w", messageID, ErrMessageNotFound)
	}
	if msg.Flags[namespace] == nil {
		msg.Flags[namespace] = make(map[string]any)
	}
	msg.Flags[namespace][key] = value
	c.messages[messageID] = msg
	return nil
}

// All returns every message in creation order.
func (c *MemoryChat) All() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.messages[id])
	}
	return out
}

// MemoryBus is an in-process Broadcaster that delivers events
// synchronously to every registered handler.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(Event)
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]func(Event))}
}

// Emit delivers ev to all handlers registered for its name.
func (b *MemoryBus) Emit(ev Event) {
	b.mu.RLock()
	handlers := append([]func(Event){}, b.handlers[ev.Name]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}

// On registers a handler for events with the given name.
func (b *MemoryBus) On(name string, handler func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// PassthroughRenderer is a TemplateRenderer that formats the data object
// verbatim; used by tests and the standalone arbiter, where no template
// host is attached.
type PassthroughRenderer struct{}

// Render returns a plain-text rendering of data.
func (PassthroughRenderer) Render(name string, data any) (string, error) {
	return fmt.Sprintf("[%s] %v", name, data), nil
}
