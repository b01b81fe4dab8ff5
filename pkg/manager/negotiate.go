package manager

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/game"
)

// seated resolves the requester's color in an active game. On failure the
// requester has already been told why.
func (m *Manager) seated(s *game.Session, connID, action string) (color.Color, bool) {
	c, err := m.player(s, connID)
	if err != nil {
		m.reject(connID, action, err)
		return color.None, false
	}

	if !s.Active() {
		m.reject(connID, action, game.ErrGameNotActive)
		return color.None, false
	}

	return c, true
}

// Resign ends the game in favour of the opponent. The seat decides the
// color, whatever the payload claims.
func (m *Manager) Resign(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeResignGame, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	loser, ok := m.seated(s, connID, messages.TypeResignGame)
	if !ok {
		return
	}

	winner := loser.Opp()
	m.finish(s, game.Result{
		Reason:  game.ReasonResignation,
		Winner:  winner,
		Message: m.catalog.Text(msgcat.KeyOverResignation, outcome(winner)),
	})
}

// OfferDraw records an offer and tells the opponent only. An offer made
// while the opponent's own offer is pending settles the game as a draw.
func (m *Manager) OfferDraw(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeOfferDraw, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	by, ok := m.seated(s, connID, messages.TypeOfferDraw)
	if !ok {
		return
	}

	if s.PendingDrawBy() == by.Opp() {
		m.agree(s)
		return
	}

	s.OfferDraw(by)
	m.toOne(s.Seat(by.Opp()), messages.EventDrawOffered, messages.DrawOfferedPayload{
		GameID:    s.ID,
		OfferedBy: by,
	})

	m.logger.Debug("draw offered", zap.String("game_id", s.ID), zap.String("by", string(by)))
}

// AcceptDraw ends the game as a draw. Only the player the offer was made
// to may accept it.
func (m *Manager) AcceptDraw(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeAcceptDraw, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	by, ok := m.seated(s, connID, messages.TypeAcceptDraw)
	if !ok {
		return
	}

	if offer := s.PendingDrawBy(); offer == color.None || offer == by {
		m.reject(connID, messages.TypeAcceptDraw, fmt.Errorf("%w: %s", game.ErrNoDrawOffer, s.ID))
		return
	}

	m.agree(s)
}

// DeclineDraw voids a pending offer and tells the player who made it
func (m *Manager) DeclineDraw(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeDeclineDraw, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	by, ok := m.seated(s, connID, messages.TypeDeclineDraw)
	if !ok {
		return
	}

	offer := s.PendingDrawBy()
	if offer == color.None || offer == by {
		m.reject(connID, messages.TypeDeclineDraw, fmt.Errorf("%w: %s", game.ErrNoDrawOffer, s.ID))
		return
	}

	s.ClearDraw()
	m.toOne(s.Seat(offer), messages.EventDrawDeclined, messages.DrawDeclinedPayload{
		GameID:     s.ID,
		DeclinedBy: by,
	})
}

func (m *Manager) agree(s *game.Session) {
	m.finish(s, game.Result{
		Reason:  game.ReasonAgreement,
		Message: m.catalog.Text(msgcat.KeyOverAgreement, nil),
	})
}
