package game

import (
	"time"

	"github.com/tecu23/chess-arena/internal/color"
	"github.com/tecu23/chess-arena/pkg/rules"
)

// GameStatus is where a session is in its lifecycle
type GameStatus string

// pending -> active -> completed, each step taken once
const (
	StatusPending   GameStatus = "pending"
	StatusActive    GameStatus = "active"
	StatusCompleted GameStatus = "completed"
)

// Reason says why a game ended
type Reason string

// Ways a game can end
const (
	ReasonCheckmate   Reason = "checkmate"
	ReasonStalemate   Reason = "stalemate"
	ReasonDraw        Reason = "draw"
	ReasonAgreement   Reason = "agreement"
	ReasonResignation Reason = "resignation"
	ReasonTimeout     Reason = "timeout"
	ReasonDisconnect  Reason = "disconnect"
)

// Result is the outcome of a completed game. Winner is None for draws.
type Result struct {
	Reason  Reason
	Winner  color.Color
	Message string
}

// MoveRecord is one entry of the move log
type MoveRecord struct {
	Ply       int         `json:"ply"`
	Color     color.Color `json:"color"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	SAN       string      `json:"san"`
	UCI       string      `json:"uci"`
	Promotion string      `json:"promotion,omitempty"`
	PlayedAt  time.Time   `json:"-"`
}

func newMoveRecord(ply int, p rules.Played, at time.Time) MoveRecord {
	return MoveRecord{
		Ply:       ply,
		Color:     p.Color,
		From:      p.From,
		To:        p.To,
		SAN:       p.SAN,
		UCI:       p.UCI,
		Promotion: p.Promotion,
		PlayedAt:  at,
	}
}
