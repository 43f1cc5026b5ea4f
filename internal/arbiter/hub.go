package arbiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rkellett/quarrel/internal/host"
)

const (
	// clientBuffer is the per-client outbound queue. A client that
	// cannot drain it is dropped rather than stalling the hub.
	clientBuffer = 32

	writeWait = 10 * time.Second
)

// Hub fans broadcast events out to connected websocket clients and
// feeds inbound events to local handlers, implementing the
// broadcast-channel contract for the standalone arbiter.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[*hubClient]struct{}
	handlers map[string][]func(host.Event)
}

type hubClient struct {
	conn *websocket.Conn

	// mu orders sends against close so a queued send can never hit a
	// closed channel.
	mu     sync.Mutex
	closed bool
	send   chan host.Event
}

func (c *hubClient) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close()
}

// trySend queues ev without blocking. It reports false when the client
// is closed or its queue is full.
func (c *hubClient) trySend(ev host.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// NewHub creates an empty Hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*hubClient]struct{}),
		handlers: make(map[string][]func(host.Event)),
	}
}

// On registers a local handler. Handlers run synchronously on the
// emitting goroutine and must not block.
func (h *Hub) On(name string, handler func(host.Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[name] = append(h.handlers[name], handler)
}

// Emit delivers the event to local handlers and every connected client.
// Slow clients are dropped.
func (h *Hub) Emit(ev host.Event) {
	h.dispatch(ev)
	h.broadcast(ev, nil)
}

func (h *Hub) dispatch(ev host.Event) {
	h.mu.RLock()
	handlers := h.handlers[ev.Name]
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

// broadcast fans ev out to all clients except skip (the originator of
// an inbound event already has it).
func (h *Hub) broadcast(ev host.Event, skip *hubClient) {
	h.mu.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		if c != skip {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(ev) {
			h.logger.Warn("dropping unresponsive websocket client")
			h.unregister(c)
		}
	}
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// ServeHTTP upgrades the request and runs the client's pumps until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan host.Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("websocket client connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *hubClient) {
	for ev := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			h.unregister(c)
			return
		}
	}
}

// readPump decodes inbound events and routes them to local handlers and
// the other clients.
func (h *Hub) readPump(c *hubClient) {
	defer h.unregister(c)
	for {
		var ev host.Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			h.logger.Debug("websocket client disconnected", zap.Error(err))
			return
		}
		if ev.Name == "" {
			continue
		}
		h.dispatch(ev)
		h.broadcast(ev, c)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connected client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
