package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/pkg/events"
)

// Handler receives everything the hub reads from clients. All calls are
// made from the hub goroutine, one at a time.
type Handler interface {
	HandleMessage(connID string, msg messages.InboundMessage)
	Malformed(connID string, err error)
	Disconnect(connID string)
	Tick(now time.Time)
}

// InboundHubMessage are the messages that the hub receives
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // decoded envelope
	Err     error                   // set when the frame was not valid JSON
}

// Option configures a Hub
type Option func(*Hub)

// WithTickInterval sets how often the handler's Tick runs
func WithTickInterval(d time.Duration) Option {
	return func(h *Hub) { h.tickInterval = d }
}

// Hub should keep track of all active connection. Also be responsible of registering/unregistering connections
// Messages come from the inbound channel and are handed to the handler in arrival order
type Hub struct {
	mu          sync.RWMutex           // Mutex to protect direct access to the connections map.
	connections map[string]*Connection // Registered connections by id

	register   chan *Connection       // Incoming registration
	unregister chan *Connection       // Incoming unregistration
	inbound    chan InboundHubMessage // Channel of inbound messages routed to the handler
	done       chan struct{}

	tickInterval time.Duration

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHub creates a new hub
func NewHub(publisher *events.Publisher, logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		connections:  make(map[string]*Connection),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		inbound:      make(chan InboundHubMessage, 64),
		done:         make(chan struct{}),
		tickInterval: time.Second,
		publisher:    publisher,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run is the main execution of the hub. It returns when ctx is cancelled,
// after closing every connection.
func (h *Hub) Run(ctx context.Context, handler Handler) {
	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			if h.unregisterConnection(conn) {
				handler.Disconnect(conn.ID)
				h.publisher.Publish(events.Event{
					Type:    events.EventConnectionClosed,
					Payload: events.ConnectionPayload{ConnectionID: conn.ID},
				})
			}

		case msg := <-h.inbound:
			if !h.registered(msg.Conn) {
				h.logger.Debug("dropping message from unregistered connection",
					zap.String("connection_id", msg.Conn.ID))
				continue
			}
			if msg.Err != nil {
				handler.Malformed(msg.Conn.ID, msg.Err)
				continue
			}
			handler.HandleMessage(msg.Conn.ID, msg.Message)

		case now := <-ticker.C:
			handler.Tick(now)
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Inbound queues a client message for the handler
func (h *Hub) Inbound(msg InboundHubMessage) {
	select {
	case h.inbound <- msg:
	case <-h.done:
	}
}

// Send marshals msg and queues it for connID without blocking. A connection
// whose buffer is full is closed; its read pump then unregisters it.
func (h *Hub) Send(connID string, msg messages.OutboundMessage) bool {
	h.mu.RLock()
	conn, ok := h.connections[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling JSON", zap.String("event", msg.Event), zap.Error(err))
		return false
	}

	if !conn.enqueue(data) {
		h.logger.Warn("send buffer full, closing connection", zap.String("connection_id", connID))
		conn.ws.Close()
		return false
	}

	return true
}

// Count returns the number of registered connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections)
}

func (h *Hub) registered(conn *Connection) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	current, ok := h.connections[conn.ID]
	return ok && current == conn
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	count := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("connection registered", zap.String("connection_id", conn.ID), zap.Int("connections", count))
	h.publisher.Publish(events.Event{
		Type:    events.EventConnectionOpened,
		Payload: events.ConnectionPayload{ConnectionID: conn.ID},
	})

	h.Send(conn.ID, messages.OutboundMessage{
		Event:   messages.EventConnected,
		Payload: messages.ConnectedPayload{ConnectionID: conn.ID},
	})
}

func (h *Hub) unregisterConnection(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[conn.ID]; !ok || current != conn {
		return false
	}

	delete(h.connections, conn.ID)
	close(conn.send)
	h.logger.Info("connection unregistered", zap.String("connection_id", conn.ID), zap.Int("connections", len(h.connections)))

	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		close(conn.send)
		delete(h.connections, id)
	}
}
