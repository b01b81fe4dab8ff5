// Package manager coordinates game sessions: seating, moves, clocks, draw
// and resign negotiation, disconnects and fanout to the room.
package manager

import (
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/config"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/game"
)

// Sender delivers one outbound message to one connection without blocking.
// It reports false when the connection is gone or cannot keep up.
type Sender interface {
	Send(connID string, msg messages.OutboundMessage) bool
}

// Registry is the session store the manager works against
type Registry interface {
	Create(creatorID string) (*game.Session, error)
	Get(id string) (*game.Session, error)
	Delete(id string)
	Retain(id string, d time.Duration)
	Track(connID, id string)
	Untrack(connID, id string)
	SessionsFor(connID string) []*game.Session
	ListActiveGames() []*game.Session
}

// Settings are the behavioural knobs taken from config
type Settings struct {
	ClockMode   config.ClockMode
	Retention   time.Duration
	TimeUpGrace int64
}

// SettingsFrom extracts the manager settings from the server config
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		ClockMode:   cfg.ClockMode,
		Retention:   cfg.Retention,
		TimeUpGrace: cfg.TimeUpGrace,
	}
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns every session operation. Each operation holds the session
// lock from validation through the last broadcast it causes.
type Manager struct {
	registry  Registry
	sender    Sender
	publisher *events.Publisher
	catalog   *msgcat.Catalog
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager creates a new manager
func NewManager(
	registry Registry,
	sender Sender,
	publisher *events.Publisher,
	catalog *msgcat.Catalog,
	settings Settings,
	logger *zap.Logger,
	opts ...Option,
) *Manager {
	if settings.ClockMode == "" {
		settings.ClockMode = config.ClockServer
	}

	m := &Manager{
		registry:  registry,
		sender:    sender,
		publisher: publisher,
		catalog:   catalog,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// serverClock reports whether the server drives the countdown
func (m *Manager) serverClock() bool {
	return m.settings.ClockMode == config.ClockServer
}

// lookup fetches a session or reports NotFound to the requester
func (m *Manager) lookup(connID, action, gameID string) (*game.Session, bool) {
	s, err := m.registry.Get(gameID)
	if err != nil {
		m.reject(connID, action, err)
		return nil, false
	}
	return s, true
}

func (m *Manager) publish(t events.EventType, gameID string, payload any) {
	m.publisher.Publish(events.Event{Type: t, GameID: gameID, Payload: payload})
}
