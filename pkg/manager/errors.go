package manager

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/game"
)

type rejection struct {
	key    string
	reason string
}

var rejections = []struct {
	err error
	rejection
}{
	{game.ErrNotFound, rejection{msgcat.KeyNotFound, "not_found"}},
	{game.ErrSelfJoin, rejection{msgcat.KeySelfJoin, "self_join"}},
	{game.ErrNotYourTurn, rejection{msgcat.KeyNotYourTurn, "not_your_turn"}},
	{game.ErrSpectatorNotAllowed, rejection{msgcat.KeySpectatorNotAllowed, "spectator_not_allowed"}},
	{game.ErrInvalidMove, rejection{msgcat.KeyInvalidMove, "invalid_move"}},
	{game.ErrNotInGame, rejection{msgcat.KeyNotInGame, "not_in_game"}},
	{game.ErrGameNotActive, rejection{msgcat.KeyGameNotActive, "game_not_active"}},
	{game.ErrAlreadyPlaying, rejection{msgcat.KeyAlreadyPlaying, "already_playing"}},
	{game.ErrNoDrawOffer, rejection{msgcat.KeyNoDrawOffer, "no_draw_offer"}},
	{game.ErrClockRunning, rejection{msgcat.KeyClockRunning, "clock_running"}},
	{messages.ErrUnknownType, rejection{msgcat.KeyUnknownType, "unknown_type"}},
	{messages.ErrInvalidPayload, rejection{msgcat.KeyInvalidPayload, "invalid_payload"}},
}

func classify(err error) rejection {
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.rejection
		}
	}
	return rejection{msgcat.KeyInternal, "internal"}
}

// reject reports err to the requester only. Session state is never touched here.
func (m *Manager) reject(connID, action string, err error) {
	r := classify(err)

	text := m.catalog.Text(r.key, map[string]string{
		"Event":  action,
		"Action": verb(action),
	})

	m.logger.Debug("action rejected",
		zap.String("connection_id", connID),
		zap.String("action", action),
		zap.String("reason", r.reason),
		zap.Error(err),
	)

	m.toOne(connID, messages.EventError, messages.ErrorPayload{Message: text})
	m.publish(events.EventActionRejected, "", events.RejectedPayload{Action: action, Reason: r.reason})
}

// verb phrases an action for "Spectators cannot ..."
func verb(action string) string {
	switch action {
	case messages.TypeMove:
		return "make moves"
	case messages.TypeResignGame:
		return "resign"
	case messages.TypeOfferDraw:
		return "offer a draw"
	case messages.TypeAcceptDraw, messages.TypeDeclineDraw:
		return "answer a draw offer"
	case messages.TypeTimeUp:
		return "call time"
	}
	return "do that"
}
