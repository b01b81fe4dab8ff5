package events

import "sync"

// EventType represents the type of event
type EventType string

// Define event types
const (
	EventGameCreated      EventType = "GAME_CREATED"
	EventGameStarted      EventType = "GAME_STARTED"
	EventMoveAccepted     EventType = "MOVE_ACCEPTED"
	EventSpectatorJoined  EventType = "SPECTATOR_JOINED"
	EventGameOver         EventType = "GAME_OVER"
	EventSessionDeleted   EventType = "SESSION_DELETED"
	EventActionRejected   EventType = "ACTION_REJECTED"
	EventConnectionOpened EventType = "CONNECTION_OPENED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"
)

const allEvents EventType = "*"

// Event represents an event in the system
type Event struct {
	Type    EventType
	GameID  string // Optional, can be empty for non-game events
	Payload any
}

// MovePayload accompanies EventMoveAccepted
type MovePayload struct {
	Color string
	SAN   string
}

// GameOverPayload accompanies EventGameOver
type GameOverPayload struct {
	Reason string
	Winner string
}

// RejectedPayload accompanies EventActionRejected
type RejectedPayload struct {
	Action string
	Reason string
}

// ConnectionPayload accompanies the connection events
type ConnectionPayload struct {
	ConnectionID string
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
	inline      bool
}

// Option configures a Publisher
type Option func(*Publisher)

// Synchronous makes Publish call handlers inline, in subscription order
func Synchronous() Option {
	return func(p *Publisher) { p.inline = true }
}

// NewPublisher creates a new event publisher
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.Subscribe(allEvents, handler)
}

// Publish broadcasts an event to its subscribers and to "all events" handlers
func (p *Publisher) Publish(event Event) {
	p.mu.RLock()
	handlers := make([]Handler, 0, len(p.subscribers[event.Type])+len(p.subscribers[allEvents]))
	handlers = append(handlers, p.subscribers[event.Type]...)
	handlers = append(handlers, p.subscribers[allEvents]...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		if p.inline {
			handler(event)
			continue
		}
		go handler(event) // Run handlers concurrently
	}
}
