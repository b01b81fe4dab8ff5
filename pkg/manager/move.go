package manager

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/game"
	"github.com/tecu23/chess-arena/pkg/rules"
)

// Move validates and applies a move submission, then broadcasts it and any
// game end it causes. The server position is authoritative.
func (m *Manager) Move(connID string, req messages.MoveRequest) {
	s, ok := m.lookup(connID, messages.TypeMove, req.GameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	mover, err := m.player(s, connID)
	if err != nil {
		m.reject(connID, messages.TypeMove, err)
		return
	}

	if !s.Active() {
		m.reject(connID, messages.TypeMove, game.ErrGameNotActive)
		return
	}

	if turn := s.Turn(); turn != mover {
		m.reject(connID, messages.TypeMove, fmt.Errorf("%w: %s to move", game.ErrNotYourTurn, turn))
		return
	}

	now := m.now()

	// the flag may have fallen between the last tick and this move
	if m.serverClock() && s.Clock().Advance(now) {
		m.finishOnTime(s, mover)
		return
	}

	mv := req.Move.Rules()

	if req.FEN != "" {
		expected, err := s.Preview(mv)
		if err != nil {
			m.reject(connID, messages.TypeMove, err)
			return
		}
		if !rules.SamePosition(expected, req.FEN) {
			m.reject(connID, messages.TypeMove, fmt.Errorf("%w: position mismatch", game.ErrInvalidMove))
			return
		}
	}

	rec, err := s.Play(mover, mv, now)
	if err != nil {
		m.reject(connID, messages.TypeMove, err)
		return
	}

	clock := s.Clock()
	if m.serverClock() {
		clock.Switch(s.Turn(), now)
	} else {
		if req.WhiteTime != nil || req.BlackTime != nil {
			tick := clock.GetRemainingTime()
			white, black := tick.White, tick.Black
			if req.WhiteTime != nil {
				white = *req.WhiteTime
			}
			if req.BlackTime != nil {
				black = *req.BlackTime
			}
			clock.Settle(white, black)
		}
		clock.Pass(s.Turn(), now)
	}

	tick := clock.GetRemainingTime()
	m.toRoom(s, messages.EventMove, messages.MovePayload{
		GameID:       s.ID,
		FEN:          s.FEN(),
		Move:         messages.NewMoveView(rec),
		IsWhiteTurn:  s.Turn() == color.White,
		WhiteTime:    tick.White,
		BlackTime:    tick.Black,
		FromSocketID: connID,
		PlayerColor:  mover,
	})

	m.logger.Debug("move accepted",
		zap.String("game_id", s.ID),
		zap.String("color", string(mover)),
		zap.String("san", rec.SAN),
	)
	m.publish(events.EventMoveAccepted, s.ID, events.MovePayload{Color: string(mover), SAN: rec.SAN})

	m.checkTerminal(s)
}

// checkTerminal ends the game when the board reached a final position
func (m *Manager) checkTerminal(s *game.Session) {
	board := s.Board()

	switch board.IsTerminal() {
	case rules.TerminalCheckmate:
		winner := board.Winner()
		m.finish(s, game.Result{
			Reason:  game.ReasonCheckmate,
			Winner:  winner,
			Message: m.catalog.Text(msgcat.KeyOverCheckmate, outcome(winner)),
		})
	case rules.TerminalStalemate:
		m.finish(s, game.Result{
			Reason:  game.ReasonStalemate,
			Message: m.catalog.Text(msgcat.KeyOverStalemate, nil),
		})
	case rules.TerminalDraw:
		m.finish(s, game.Result{
			Reason:  game.ReasonDraw,
			Message: m.catalog.Text(msgcat.KeyOverDraw, nil),
		})
	}
}

// player resolves the requester's seat, rejecting spectators and outsiders
func (m *Manager) player(s *game.Session, connID string) (color.Color, error) {
	if s.IsSpectator(connID) {
		return color.None, game.ErrSpectatorNotAllowed
	}

	c := s.ColorOf(connID)
	if c == color.None {
		return color.None, fmt.Errorf("%w: %s", game.ErrNotInGame, s.ID)
	}

	return c, nil
}
