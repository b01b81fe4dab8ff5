package manager

import (
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/pkg/game"
)

// toRoom delivers to every player and spectator of s. Callers hold the session lock.
func (m *Manager) toRoom(s *game.Session, event string, payload any) {
	m.toRoomExcept(s, "", event, payload)
}

// toRoomExcept delivers to the room minus one connection
func (m *Manager) toRoomExcept(s *game.Session, except, event string, payload any) {
	msg := messages.OutboundMessage{Event: event, Payload: payload}

	for _, id := range s.Members() {
		if id == except {
			continue
		}
		m.deliver(id, msg)
	}
}

// toOne delivers to a single connection
func (m *Manager) toOne(connID, event string, payload any) {
	if connID == "" {
		return
	}
	m.deliver(connID, messages.OutboundMessage{Event: event, Payload: payload})
}

func (m *Manager) deliver(connID string, msg messages.OutboundMessage) {
	if !m.sender.Send(connID, msg) {
		m.logger.Debug("message not delivered",
			zap.String("connection_id", connID),
			zap.String("event", msg.Event),
		)
	}
}
