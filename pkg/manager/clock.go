package manager

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/game"
)

// Tick charges elapsed time in every active game and broadcasts the clocks.
// It does nothing when clients drive the countdown.
func (m *Manager) Tick(now time.Time) {
	if !m.serverClock() {
		return
	}

	for _, s := range m.registry.ListActiveGames() {
		m.tick(s, now)
	}
}

func (m *Manager) tick(s *game.Session, now time.Time) {
	s.Lock()
	defer s.Unlock()

	if !s.Active() {
		return
	}

	clock := s.Clock()
	timedOut := clock.Advance(now)
	tick := clock.GetRemainingTime()

	m.toRoom(s, messages.EventTimerUpdate, messages.TimerUpdatePayload{
		GameID:    s.ID,
		WhiteTime: tick.White,
		BlackTime: tick.Black,
	})

	if timedOut {
		m.finishOnTime(s, tick.ActiveColor)
	}
}

// ReportClock accepts a client countdown report. Only the running color is
// updated, values only go down, and the stored values are relayed to the
// rest of the room. Reports are ignored when the server drives the clock.
func (m *Manager) ReportClock(connID string, req messages.TimerUpdateRequest) {
	if m.serverClock() {
		return
	}

	s, err := m.registry.Get(req.GameID)
	if err != nil {
		m.logger.Debug("timer update for unknown game", zap.String("game_id", req.GameID))
		return
	}

	s.Lock()
	defer s.Unlock()

	if !s.Active() || s.ColorOf(connID) == color.None {
		return
	}

	clock := s.Clock()
	timedOut := clock.Report(req.WhiteTime, req.BlackTime)
	tick := clock.GetRemainingTime()

	m.toRoomExcept(s, connID, messages.EventTimerUpdate, messages.TimerUpdatePayload{
		GameID:    s.ID,
		WhiteTime: tick.White,
		BlackTime: tick.Black,
	})

	if timedOut {
		m.finishOnTime(s, tick.ActiveColor)
	}
}

// TimeUp handles a client claim that a color ran out of time. With the
// server clock the claim stands only against the running color and only
// within the configured grace.
func (m *Manager) TimeUp(connID string, req messages.TimeUpRequest) {
	s, ok := m.lookup(connID, messages.TypeTimeUp, req.GameID)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()

	if _, err := m.player(s, connID); err != nil {
		m.reject(connID, messages.TypeTimeUp, err)
		return
	}

	// both clients usually call time; the second claim finds the game over
	if !s.Active() {
		return
	}

	loser := req.LoserColor()
	clock := s.Clock()

	if m.serverClock() {
		clock.Advance(m.now())

		if state, running := clock.State(); state != chess.Running || running != loser {
			m.reject(connID, messages.TypeTimeUp, fmt.Errorf("%w: %s is not on move", game.ErrClockRunning, loser))
			return
		}
		if left := clock.Remaining(loser); left > m.settings.TimeUpGrace {
			m.reject(connID, messages.TypeTimeUp, fmt.Errorf("%w: %s has %ds", game.ErrClockRunning, loser, left))
			return
		}
	}

	m.finishOnTime(s, loser)
}

func (m *Manager) finishOnTime(s *game.Session, loser color.Color) {
	s.Clock().Expire(loser)

	winner := loser.Opp()
	m.finish(s, game.Result{
		Reason:  game.ReasonTimeout,
		Winner:  winner,
		Message: m.catalog.Text(msgcat.KeyOverTimeout, outcome(winner)),
	})
}
