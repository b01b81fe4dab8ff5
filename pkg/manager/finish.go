package manager

import (
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/game"
)

// finish completes an active session, announces the result to the room and
// schedules the session for removal. Later calls for the same session do nothing.
func (m *Manager) finish(s *game.Session, res game.Result) {
	now := m.now()

	// the final clocks include the thinking time of the side to move
	if m.serverClock() && s.Active() {
		s.Clock().Stop(now)
	}

	if !s.Finish(res, now) {
		return
	}

	m.toRoom(s, messages.EventGameOver, messages.NewGameOver(s.ID, res))

	tick := s.Clock().GetRemainingTime()
	m.logger.Info("game over",
		zap.String("game_id", s.ID),
		zap.String("reason", string(res.Reason)),
		zap.String("winner", string(res.Winner)),
		zap.Int("moves", s.MoveCount()),
		zap.String("white_clock", chess.FormatClockTime(tick.White)),
		zap.String("black_clock", chess.FormatClockTime(tick.Black)),
		zap.Duration("duration", s.EndedAt().Sub(s.CreatedAt)),
	)
	m.publish(events.EventGameOver, s.ID, events.GameOverPayload{
		Reason: string(res.Reason),
		Winner: string(res.Winner),
	})

	m.registry.Retain(s.ID, m.settings.Retention)
}

// outcome is the template data for result messages
func outcome(winner color.Color) map[string]string {
	return map[string]string{
		"Winner": winner.Title(),
		"Loser":  winner.Opp().Title(),
	}
}
