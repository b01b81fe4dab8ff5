package manager

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/game"
)

// CreateGame opens a new session with the creator in the white seat
func (m *Manager) CreateGame(connID string) {
	s, err := m.registry.Create(connID)
	if err != nil {
		m.logger.Error("failed to create game", zap.Error(err))
		m.reject(connID, messages.TypeCreateGame, err)
		return
	}

	s.Lock()
	defer s.Unlock()

	assigned, _, err := s.Assign(connID, m.now())
	if err != nil {
		m.logger.Error("failed to seat creator", zap.String("game_id", s.ID), zap.Error(err))
		m.reject(connID, messages.TypeCreateGame, err)
		return
	}

	tick := s.Clock().GetRemainingTime()
	m.toOne(connID, messages.EventGameCreated, messages.GameCreatedPayload{
		GameID:    s.ID,
		Color:     assigned,
		WhiteTime: tick.White,
		BlackTime: tick.Black,
	})

	m.logger.Info("created new game session",
		zap.String("game_id", s.ID),
		zap.String("connection_id", connID),
	)
	m.publish(events.EventGameCreated, s.ID, nil)
}

// JoinGame seats the requester or, when both seats are taken, admits them
// as a spectator.
func (m *Manager) JoinGame(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeJoinGame, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	if s.CreatorID == connID {
		m.reject(connID, messages.TypeJoinGame, fmt.Errorf("%w: %s", game.ErrSelfJoin, s.ID))
		return
	}

	// a repeated join answers with the role already held
	if c := s.ColorOf(connID); c != color.None {
		m.toOne(connID, messages.EventGameJoined, messages.GameJoinedPayload{GameID: s.ID, Color: c})
		return
	}
	if s.IsSpectator(connID) {
		m.toOne(connID, messages.EventJoinedAsSpectator, m.spectatorView(s, msgcat.KeySpectatorFull))
		return
	}

	if s.Full() {
		m.admitSpectator(s, connID, msgcat.KeySpectatorFull)
		return
	}

	assigned, started, err := s.Assign(connID, m.now())
	if err != nil {
		m.reject(connID, messages.TypeJoinGame, err)
		return
	}
	m.registry.Track(connID, s.ID)

	m.toOne(connID, messages.EventGameJoined, messages.GameJoinedPayload{GameID: s.ID, Color: assigned})
	m.toRoomExcept(s, connID, messages.EventOpponentJoined, messages.OpponentJoinedPayload{Color: assigned})

	m.logger.Info("player joined",
		zap.String("game_id", s.ID),
		zap.String("connection_id", connID),
		zap.String("color", string(assigned)),
	)

	if started {
		m.startGame(s)
	}
}

// SpectateGame admits the requester as a spectator
func (m *Manager) SpectateGame(connID, gameID string) {
	s, ok := m.lookup(connID, messages.TypeSpectateGame, gameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	if c := s.ColorOf(connID); c != color.None {
		m.reject(connID, messages.TypeSpectateGame, fmt.Errorf("%w: seated as %s", game.ErrAlreadyPlaying, c))
		return
	}

	if s.IsSpectator(connID) {
		m.toOne(connID, messages.EventJoinedAsSpectator, m.spectatorView(s, msgcat.KeySpectator))
		return
	}

	m.admitSpectator(s, connID, msgcat.KeySpectator)
}

func (m *Manager) admitSpectator(s *game.Session, connID, key string) {
	count := s.AddSpectator(connID)
	m.registry.Track(connID, s.ID)

	m.toOne(connID, messages.EventJoinedAsSpectator, m.spectatorView(s, key))
	m.toRoom(s, messages.EventSpectatorCountUpdate, messages.SpectatorCountPayload{
		GameID:          s.ID,
		SpectatorsCount: count,
	})

	m.logger.Info("spectator joined",
		zap.String("game_id", s.ID),
		zap.String("connection_id", connID),
		zap.Int("spectators", count),
	)
	m.publish(events.EventSpectatorJoined, s.ID, nil)
}

// spectatorView is everything a late joiner needs to rebuild the game
func (m *Manager) spectatorView(s *game.Session, key string) messages.JoinedAsSpectatorPayload {
	tick := s.Clock().GetRemainingTime()

	view := messages.JoinedAsSpectatorPayload{
		GameID:          s.ID,
		Message:         m.catalog.Text(key, nil),
		CurrentFEN:      s.FEN(),
		MoveHistory:     messages.MoveHistory(s.Moves()),
		WhiteTime:       tick.White,
		BlackTime:       tick.Black,
		CurrentPlayer:   s.Turn(),
		SpectatorsCount: s.SpectatorCount(),
		Active:          s.Active(),
	}

	if res := s.Result(); res != nil {
		over := messages.NewGameOver(s.ID, *res)
		view.Result = &over
	}

	return view
}

func (m *Manager) startGame(s *game.Session) {
	tick := s.Clock().GetRemainingTime()

	m.toRoom(s, messages.EventStartGame, messages.StartGamePayload{
		GameID:        s.ID,
		WhiteTime:     tick.White,
		BlackTime:     tick.Black,
		CurrentPlayer: s.Turn(),
	})

	m.logger.Info("game started", zap.String("game_id", s.ID))
	m.publish(events.EventGameStarted, s.ID, nil)
}
