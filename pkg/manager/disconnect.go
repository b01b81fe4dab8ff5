package manager

import (
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/game"
)

// Disconnect reconciles every session the connection belonged to: a
// spectator leaves, a seat in a pending game is freed, and a player in an
// active game forfeits.
func (m *Manager) Disconnect(connID string) {
	for _, s := range m.registry.SessionsFor(connID) {
		m.leave(s, connID)
	}
}

func (m *Manager) leave(s *game.Session, connID string) {
	s.Lock()
	defer s.Unlock()

	defer m.registry.Untrack(connID, s.ID)

	if s.RemoveSpectator(connID) {
		m.logger.Debug("spectator left", zap.String("game_id", s.ID), zap.String("connection_id", connID))
		m.dropIfAbandoned(s)
		return
	}

	c := s.ColorOf(connID)
	if c == color.None {
		return
	}

	switch s.Status() {
	case game.StatusPending:
		s.ClearSeat(connID)
		m.dropIfAbandoned(s)

	case game.StatusActive:
		winner := c.Opp()
		m.finish(s, game.Result{
			Reason:  game.ReasonDisconnect,
			Winner:  winner,
			Message: m.catalog.Text(msgcat.KeyOverDisconnect, outcome(winner)),
		})
	}
}

// dropIfAbandoned deletes a game that never started once nobody is left in the room
func (m *Manager) dropIfAbandoned(s *game.Session) {
	if s.Status() != game.StatusPending || !s.Empty() {
		return
	}

	m.registry.Delete(s.ID)
	m.logger.Info("abandoned game removed", zap.String("game_id", s.ID))
}
