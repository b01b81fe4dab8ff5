// Package rules binds the chess rules engine used to validate moves and
// detect finished games.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/chess-arena/internal/color"
)

// ErrIllegalMove is returned when the engine refuses a move
var ErrIllegalMove = errors.New("illegal move")

// Terminal describes how a position ended, if it did
type Terminal string

// Terminal kinds reported by IsTerminal
const (
	TerminalNone      Terminal = "none"
	TerminalCheckmate Terminal = "checkmate"
	TerminalStalemate Terminal = "stalemate"
	TerminalDraw      Terminal = "draw"
)

// Move is the client's description of a move. Either From/To or SAN must be set.
type Move struct {
	From      string
	To        string
	Promotion string
	SAN       string
}

// Played is a move the engine accepted
type Played struct {
	Color     color.Color
	From      string
	To        string
	Promotion string
	SAN       string
	UCI       string
}

// Board is the contract the session layer needs from a rules engine
type Board interface {
	Apply(m Move) (Played, error)
	IsTerminal() Terminal
	Winner() color.Color
	Turn() color.Color
	Serialize() string
}

// Game implements Board on top of corentings/chess
type Game struct {
	game *chess.Game
}

// NewGame returns a board set to the standard starting position
func NewGame() *Game {
	return &Game{game: chess.NewGame()}
}

// Deserialize builds a board from a FEN string
func Deserialize(fen string) (*Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}

	return &Game{game: chess.NewGame(opt)}, nil
}

// Apply validates m against the current position and plays it
func (g *Game) Apply(m Move) (Played, error) {
	pos := g.game.Position()
	mover := g.Turn()

	var (
		mv  *chess.Move
		err error
	)

	switch {
	case m.From != "" && m.To != "":
		uci := strings.ToLower(strings.TrimSpace(m.From + m.To + m.Promotion))
		mv, err = chess.UCINotation{}.Decode(pos, uci)
	case m.SAN != "":
		mv, err = chess.AlgebraicNotation{}.Decode(pos, strings.TrimSpace(m.SAN))
	default:
		return Played{}, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	if err != nil {
		return Played{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	uci := mv.String()
	if !g.isValid(uci) {
		return Played{}, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}

	san := chess.AlgebraicNotation{}.Encode(pos, mv)
	if err := g.game.Move(mv, nil); err != nil {
		return Played{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	played := Played{
		Color: mover,
		From:  uci[0:2],
		To:    uci[2:4],
		SAN:   san,
		UCI:   uci,
	}
	if len(uci) > 4 {
		played.Promotion = uci[4:]
	}

	return played, nil
}

func (g *Game) isValid(uci string) bool {
	for _, v := range g.game.ValidMoves() {
		if v.String() == uci {
			return true
		}
	}

	return false
}

// IsTerminal reports whether the game is over and why. Threefold repetition
// and the fifty-move rule end the game without a claim.
func (g *Game) IsTerminal() Terminal {
	if g.game.Outcome() == chess.NoOutcome && !g.claimDraw() {
		return TerminalNone
	}

	switch g.game.Method() {
	case chess.Checkmate:
		return TerminalCheckmate
	case chess.Stalemate:
		return TerminalStalemate
	}

	return TerminalDraw
}

func (g *Game) claimDraw() bool {
	for _, method := range g.game.EligibleDraws() {
		if method != chess.ThreefoldRepetition && method != chess.FiftyMoveRule {
			continue
		}
		if err := g.game.Draw(method); err == nil {
			return true
		}
	}

	return false
}

// Winner returns the winning color, or None for draws and unfinished games
func (g *Game) Winner() color.Color {
	switch g.game.Outcome() {
	case chess.WhiteWon:
		return color.White
	case chess.BlackWon:
		return color.Black
	}

	return color.None
}

// Turn returns the side to move
func (g *Game) Turn() color.Color {
	if g.game.Position().Turn() == chess.White {
		return color.White
	}

	return color.Black
}

// Serialize returns the FEN of the current position
func (g *Game) Serialize() string {
	return g.game.FEN()
}

// SamePosition compares piece placement and side to move of two FEN strings.
// Castling, en passant and move counters are ignored since clients disagree on them.
func SamePosition(a, b string) bool {
	fa, fb := strings.Fields(a), strings.Fields(b)
	if len(fa) < 2 || len(fb) < 2 {
		return false
	}

	return fa[0] == fb[0] && fa[1] == fb[1]
}
