package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/rules"
)

// Session is one chess match: the board, two seats, spectators, clocks and
// the move log. Callers hold the session lock (Lock/Unlock) around every
// read-modify-broadcast sequence; the accessors below do not lock.
type Session struct {
	ID        string
	CreatorID string
	CreatedAt time.Time

	mu sync.Mutex

	white      string
	black      string
	spectators map[string]struct{}

	board rules.Board
	moves []MoveRecord
	clock *chess.Clock

	status        GameStatus
	pendingDrawBy color.Color
	result        *Result
	endedAt       time.Time
}

// NewSession creates a pending session on the standard starting position
func NewSession(id, creatorID string, tc chess.TimeControl, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatorID:  creatorID,
		CreatedAt:  now,
		spectators: make(map[string]struct{}),
		board:      rules.NewGame(),
		clock:      chess.NewClock(tc),
		status:     StatusPending,
	}
}

// Lock acquires exclusive access to the session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// Status returns the lifecycle state
func (s *Session) Status() GameStatus { return s.status }

// Active reports whether both players are seated and the game is not over
func (s *Session) Active() bool { return s.status == StatusActive }

// Seat returns the connection holding a color, or ""
func (s *Session) Seat(c color.Color) string {
	switch c {
	case color.White:
		return s.white
	case color.Black:
		return s.black
	}
	return ""
}

// ColorOf returns the seat held by connID, or None
func (s *Session) ColorOf(connID string) color.Color {
	switch {
	case connID == "":
		return color.None
	case s.white == connID:
		return color.White
	case s.black == connID:
		return color.Black
	}
	return color.None
}

// IsSpectator reports whether connID watches this session
func (s *Session) IsSpectator(connID string) bool {
	_, ok := s.spectators[connID]
	return ok
}

// IsMember reports whether connID is in the room
func (s *Session) IsMember(connID string) bool {
	return s.ColorOf(connID) != color.None || s.IsSpectator(connID)
}

// Assign seats connID in the open slot, white first. started is true when
// this seating filled the board and moved the session to active.
func (s *Session) Assign(connID string, now time.Time) (assigned color.Color, started bool, err error) {
	if s.IsMember(connID) {
		return color.None, false, fmt.Errorf("%w: %s", ErrAlreadyPlaying, connID)
	}

	switch {
	case s.white == "":
		s.white = connID
		assigned = color.White
	case s.black == "":
		s.black = connID
		assigned = color.Black
	default:
		return color.None, false, fmt.Errorf("both seats taken in %s", s.ID)
	}

	if s.white != "" && s.black != "" && s.status == StatusPending {
		s.status = StatusActive
		s.clock.Start(s.board.Turn(), now)
		started = true
	}

	return assigned, started, nil
}

// Full reports whether both seats are taken
func (s *Session) Full() bool { return s.white != "" && s.black != "" }

// ClearSeat empties the seat held by connID in a pending session
func (s *Session) ClearSeat(connID string) color.Color {
	c := s.ColorOf(connID)
	switch c {
	case color.White:
		s.white = ""
	case color.Black:
		s.black = ""
	}
	return c
}

// AddSpectator adds connID to the spectator set and returns the new count
func (s *Session) AddSpectator(connID string) int {
	s.spectators[connID] = struct{}{}
	return len(s.spectators)
}

// RemoveSpectator drops connID from the spectator set
func (s *Session) RemoveSpectator(connID string) bool {
	if _, ok := s.spectators[connID]; !ok {
		return false
	}
	delete(s.spectators, connID)
	return true
}

// SpectatorCount returns the number of spectators
func (s *Session) SpectatorCount() int { return len(s.spectators) }

// Empty reports whether nobody is left in the room
func (s *Session) Empty() bool {
	return s.white == "" && s.black == "" && len(s.spectators) == 0
}

// Members returns every connection in the room: players first, then
// spectators in a stable order.
func (s *Session) Members() []string {
	members := make([]string, 0, 2+len(s.spectators))
	if s.white != "" {
		members = append(members, s.white)
	}
	if s.black != "" {
		members = append(members, s.black)
	}

	watchers := make([]string, 0, len(s.spectators))
	for id := range s.spectators {
		watchers = append(watchers, id)
	}
	sort.Strings(watchers)

	return append(members, watchers...)
}

// Play applies a move for the given color. The color must be the side to move
// before the move is applied. Any pending draw offer is void afterwards.
func (s *Session) Play(by color.Color, m rules.Move, now time.Time) (MoveRecord, error) {
	if s.status != StatusActive {
		return MoveRecord{}, ErrGameNotActive
	}

	if turn := s.board.Turn(); by != turn {
		return MoveRecord{}, fmt.Errorf("%w: %s to move", ErrNotYourTurn, turn)
	}

	played, err := s.board.Apply(m)
	if err != nil {
		return MoveRecord{}, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	rec := newMoveRecord(len(s.moves)+1, played, now)
	s.moves = append(s.moves, rec)
	s.pendingDrawBy = color.None

	return rec, nil
}

// Preview returns the position m would produce without touching the session
func (s *Session) Preview(m rules.Move) (string, error) {
	scratch, err := rules.Deserialize(s.board.Serialize())
	if err != nil {
		return "", err
	}

	if _, err := scratch.Apply(m); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	return scratch.Serialize(), nil
}

// Board exposes the rules engine state for read access
func (s *Session) Board() rules.Board { return s.board }

// FEN returns the serialized board
func (s *Session) FEN() string { return s.board.Serialize() }

// Turn returns the side to move
func (s *Session) Turn() color.Color { return s.board.Turn() }

// Clock returns the session clock
func (s *Session) Clock() *chess.Clock { return s.clock }

// Moves returns a copy of the move log
func (s *Session) Moves() []MoveRecord {
	out := make([]MoveRecord, len(s.moves))
	copy(out, s.moves)
	return out
}

// MoveCount returns the number of moves played
func (s *Session) MoveCount() int { return len(s.moves) }

// PendingDrawBy returns the color with an outstanding draw offer, or None
func (s *Session) PendingDrawBy() color.Color { return s.pendingDrawBy }

// OfferDraw records an outstanding offer from c
func (s *Session) OfferDraw(c color.Color) { s.pendingDrawBy = c }

// ClearDraw drops any outstanding offer
func (s *Session) ClearDraw() { s.pendingDrawBy = color.None }

// Finish moves an active session to completed. It returns false when the
// session already ended.
func (s *Session) Finish(res Result, now time.Time) bool {
	if s.status != StatusActive {
		return false
	}

	s.status = StatusCompleted
	s.clock.Halt()
	s.result = &res
	s.endedAt = now
	s.pendingDrawBy = color.None

	return true
}

// Result returns the final result, nil while the game is undecided
func (s *Session) Result() *Result { return s.result }

// EndedAt returns when the game finished
func (s *Session) EndedAt() time.Time { return s.endedAt }
