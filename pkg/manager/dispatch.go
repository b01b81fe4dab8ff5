package manager

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/messages"
)

// HandleMessage decodes one client envelope and runs the matching operation
func (m *Manager) HandleMessage(connID string, msg messages.InboundMessage) {
	req, err := messages.Decode(msg)
	if err != nil {
		m.reject(connID, msg.Type, err)
		return
	}

	switch r := req.(type) {
	case messages.CreateGameRequest:
		m.CreateGame(connID)
	case *messages.GameRequest:
		switch msg.Type {
		case messages.TypeJoinGame:
			m.JoinGame(connID, r.GameID)
		case messages.TypeSpectateGame:
			m.SpectateGame(connID, r.GameID)
		case messages.TypeAcceptDraw:
			m.AcceptDraw(connID, r.GameID)
		case messages.TypeDeclineDraw:
			m.DeclineDraw(connID, r.GameID)
		}
	case *messages.MoveRequest:
		m.Move(connID, *r)
	case *messages.TimerUpdateRequest:
		m.ReportClock(connID, *r)
	case *messages.TimeUpRequest:
		m.TimeUp(connID, *r)
	case *messages.ResignRequest:
		m.Resign(connID, r.GameID)
	case *messages.OfferDrawRequest:
		m.OfferDraw(connID, r.GameID)
	default:
		m.logger.Warn("unhandled request", zap.String("type", msg.Type))
	}
}

// Malformed answers a frame that was not a JSON envelope
func (m *Manager) Malformed(connID string, err error) {
	m.reject(connID, "message", fmt.Errorf("%w: %v", messages.ErrInvalidPayload, err))
}
