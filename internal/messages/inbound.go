package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tecu23/chess-arena/internal/color"
)

// Client to server event names
const (
	TypeCreateGame   = "createGame"
	TypeJoinGame     = "joinGame"
	TypeSpectateGame = "spectateGame"
	TypeMove         = "move"
	TypeTimerUpdate  = "timerUpdate"
	TypeTimeUp       = "timeUp"
	TypeResignGame   = "resignGame"
	TypeOfferDraw    = "offerDraw"
	TypeAcceptDraw   = "acceptDraw"
	TypeDeclineDraw  = "declineDraw"
)

var (
	// ErrUnknownType is returned for an envelope with an unrecognised type
	ErrUnknownType = errors.New("unknown message type")
	// ErrInvalidPayload is returned when a payload fails to decode or validate
	ErrInvalidPayload = errors.New("invalid payload")
)

// InboundMessage is the generic wrapper for messages coming from the client.
// The "type" field tells us the action; "payload" is the data we parse further.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Request is implemented by every decoded inbound payload
type Request interface {
	Validate() error
}

// CreateGameRequest carries no fields
type CreateGameRequest struct{}

// Validate always succeeds
func (CreateGameRequest) Validate() error { return nil }

// GameRequest addresses an existing game. Used by joinGame, spectateGame,
// acceptDraw and declineDraw.
type GameRequest struct {
	GameID string `json:"gameId"`
}

// Validate checks the game id
func (r GameRequest) Validate() error { return requireGameID(r.GameID) }

// MoveRequest is a move submission
type MoveRequest struct {
	GameID       string         `json:"gameId"`
	Move         MoveDescriptor `json:"move"`
	FEN          string         `json:"fen,omitempty"`
	IsWhiteTurn  *bool          `json:"isWhiteTurn,omitempty"`
	WhiteTime    *int64         `json:"whiteTime,omitempty"`
	BlackTime    *int64         `json:"blackTime,omitempty"`
	FromSocketID string         `json:"fromSocketId,omitempty"`
}

// Validate checks the game id and that the move names either squares or SAN.
// Negative clock values are clamped when applied.
func (r MoveRequest) Validate() error {
	if err := requireGameID(r.GameID); err != nil {
		return err
	}
	if r.Move.Empty() {
		return errors.New("move is required")
	}
	return nil
}

// TimerUpdateRequest is a client clock report in whole seconds
type TimerUpdateRequest struct {
	GameID    string `json:"gameId"`
	WhiteTime int64  `json:"whiteTime"`
	BlackTime int64  `json:"blackTime"`
}

// Validate checks the game id. Negative values are clamped later.
func (r TimerUpdateRequest) Validate() error { return requireGameID(r.GameID) }

// TimeUpRequest claims that loser ran out of time
type TimeUpRequest struct {
	GameID string `json:"gameId"`
	Loser  string `json:"loser"`
}

// Validate checks the game id and the loser color
func (r TimeUpRequest) Validate() error {
	if err := requireGameID(r.GameID); err != nil {
		return err
	}
	if _, ok := color.Parse(r.Loser); !ok {
		return fmt.Errorf("loser %q is not a color", r.Loser)
	}
	return nil
}

// LoserColor returns the parsed loser
func (r TimeUpRequest) LoserColor() color.Color {
	c, _ := color.Parse(r.Loser)
	return c
}

// ResignRequest resigns the game. Color is informational; the seat decides.
type ResignRequest struct {
	GameID string `json:"gameId"`
	Color  string `json:"color,omitempty"`
}

// Validate checks the game id
func (r ResignRequest) Validate() error { return requireGameID(r.GameID) }

// OfferDrawRequest offers a draw. OfferedBy is informational; the seat decides.
type OfferDrawRequest struct {
	GameID    string `json:"gameId"`
	OfferedBy string `json:"offeredBy,omitempty"`
}

// Validate checks the game id
func (r OfferDrawRequest) Validate() error { return requireGameID(r.GameID) }

func requireGameID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("gameId is required")
	}
	return nil
}

// Decode resolves the envelope into its typed request and validates it
func Decode(msg InboundMessage) (Request, error) {
	var req Request

	switch msg.Type {
	case TypeCreateGame:
		return CreateGameRequest{}, nil
	case TypeJoinGame, TypeSpectateGame, TypeAcceptDraw, TypeDeclineDraw:
		req = &GameRequest{}
	case TypeMove:
		req = &MoveRequest{}
	case TypeTimerUpdate:
		req = &TimerUpdateRequest{}
	case TypeTimeUp:
		req = &TimeUpRequest{}
	case TypeResignGame:
		req = &ResignRequest{}
	case TypeOfferDraw:
		req = &OfferDrawRequest{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil, fmt.Errorf("%w: %s: missing payload", ErrInvalidPayload, msg.Type)
	}

	if err := json.Unmarshal(msg.Payload, req); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, msg.Type, err)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, msg.Type, err)
	}

	return req, nil
}
