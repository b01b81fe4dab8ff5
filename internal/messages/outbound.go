package messages

import (
	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/pkg/game"
)

// Server to client event names
const (
	EventConnected            = "connected"
	EventGameCreated          = "gameCreated"
	EventGameJoined           = "gameJoined"
	EventOpponentJoined       = "opponentJoined"
	EventJoinedAsSpectator    = "joinedAsSpectator"
	EventStartGame            = "startGame"
	EventMove                 = "move"
	EventTimerUpdate          = "timerUpdate"
	EventDrawOffered          = "drawOffered"
	EventDrawDeclined         = "drawDeclined"
	EventGameOver             = "gameOver"
	EventSpectatorCountUpdate = "spectatorCountUpdate"
	EventError                = "error"
)

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

// GameCreatedPayload is the creator's reply
type GameCreatedPayload struct {
	GameID    string      `json:"gameId"`
	Color     color.Color `json:"color"`
	WhiteTime int64       `json:"whiteTime"`
	BlackTime int64       `json:"blackTime"`
}

type GameJoinedPayload struct {
	GameID string      `json:"gameId"`
	Color  color.Color `json:"color"`
}

type OpponentJoinedPayload struct {
	Color color.Color `json:"color"`
}

// JoinedAsSpectatorPayload carries everything a late joiner needs to rebuild the board
type JoinedAsSpectatorPayload struct {
	GameID          string           `json:"gameId"`
	Message         string           `json:"message"`
	CurrentFEN      string           `json:"currentFen"`
	MoveHistory     []MoveView       `json:"moveHistory"`
	WhiteTime       int64            `json:"whiteTime"`
	BlackTime       int64            `json:"blackTime"`
	CurrentPlayer   color.Color      `json:"currentPlayer"`
	SpectatorsCount int              `json:"spectatorsCount"`
	Active          bool             `json:"active"`
	Result          *GameOverPayload `json:"result,omitempty"`
}

type StartGamePayload struct {
	GameID        string      `json:"gameId"`
	WhiteTime     int64       `json:"whiteTime"`
	BlackTime     int64       `json:"blackTime"`
	CurrentPlayer color.Color `json:"currentPlayer"`
}

// MovePayload is broadcast to the room after every accepted move
type MovePayload struct {
	GameID       string      `json:"gameId"`
	FEN          string      `json:"fen"`
	Move         MoveView    `json:"move"`
	IsWhiteTurn  bool        `json:"isWhiteTurn"`
	WhiteTime    int64       `json:"whiteTime"`
	BlackTime    int64       `json:"blackTime"`
	FromSocketID string      `json:"fromSocketId"`
	PlayerColor  color.Color `json:"playerColor"`
}

type TimerUpdatePayload struct {
	GameID    string `json:"gameId"`
	WhiteTime int64  `json:"whiteTime"`
	BlackTime int64  `json:"blackTime"`
}

type DrawOfferedPayload struct {
	GameID    string      `json:"gameId"`
	OfferedBy color.Color `json:"offeredBy"`
}

type DrawDeclinedPayload struct {
	GameID     string      `json:"gameId"`
	DeclinedBy color.Color `json:"declinedBy"`
}

// GameOverPayload ends a game. Winner is null for draws.
type GameOverPayload struct {
	GameID  string       `json:"gameId"`
	Message string       `json:"message"`
	Winner  *color.Color `json:"winner"`
	Reason  game.Reason  `json:"reason"`
}

type SpectatorCountPayload struct {
	GameID          string `json:"gameId"`
	SpectatorsCount int    `json:"spectatorsCount"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MoveView is a move as shown to clients. From and To are always set so
// boards can highlight the squares.
type MoveView struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Promotion string      `json:"promotion,omitempty"`
	SAN       string      `json:"san"`
	Color     color.Color `json:"color"`
}

// NewMoveView converts a log entry
func NewMoveView(rec game.MoveRecord) MoveView {
	return MoveView{
		From:      rec.From,
		To:        rec.To,
		Promotion: rec.Promotion,
		SAN:       rec.SAN,
		Color:     rec.Color,
	}
}

// MoveHistory converts the whole log
func MoveHistory(recs []game.MoveRecord) []MoveView {
	out := make([]MoveView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewMoveView(rec))
	}
	return out
}

// NewGameOver builds the terminal payload from a result
func NewGameOver(gameID string, res game.Result) GameOverPayload {
	p := GameOverPayload{
		GameID:  gameID,
		Message: res.Message,
		Reason:  res.Reason,
	}
	if res.Winner.Valid() {
		w := res.Winner
		p.Winner = &w
	}
	return p
}
