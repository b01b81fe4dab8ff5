package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/chess-arena/internal/color"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestApplyCoordinateMove(t *testing.T) {
	g := NewGame()
	require.Equal(t, color.White, g.Turn())

	played, err := g.Apply(Move{From: "e2", To: "e4"})
	require.NoError(t, err)

	assert.Equal(t, color.White, played.Color)
	assert.Equal(t, "e2", played.From)
	assert.Equal(t, "e4", played.To)
	assert.Equal(t, "e4", played.SAN)
	assert.Equal(t, "e2e4", played.UCI)
	assert.Equal(t, color.Black, g.Turn())
	assert.Equal(t, TerminalNone, g.IsTerminal())
}

func TestApplySANMove(t *testing.T) {
	g := NewGame()

	played, err := g.Apply(Move{SAN: "Nf3"})
	require.NoError(t, err)

	assert.Equal(t, "g1", played.From)
	assert.Equal(t, "f3", played.To)
	assert.Equal(t, "Nf3", played.SAN)
}

func TestApplyRejectsIllegalMove(t *testing.T) {
	g := NewGame()

	_, err := g.Apply(Move{From: "e2", To: "e5"})
	require.ErrorIs(t, err, ErrIllegalMove)

	_, err = g.Apply(Move{})
	require.ErrorIs(t, err, ErrIllegalMove)

	assert.True(t, SamePosition(startFEN, g.Serialize()), "board must be unchanged")
}

func TestFoolsMateIsCheckmate(t *testing.T) {
	g := NewGame()

	for _, m := range []Move{
		{From: "f2", To: "f3"},
		{From: "e7", To: "e5"},
		{From: "g2", To: "g4"},
		{From: "d8", To: "h4"},
	} {
		_, err := g.Apply(m)
		require.NoError(t, err)
	}

	assert.Equal(t, TerminalCheckmate, g.IsTerminal())
	assert.Equal(t, color.Black, g.Winner())
}

func TestStalemateDetected(t *testing.T) {
	g, err := Deserialize("k7/8/8/2Q5/8/8/8/7K w - - 0 1")
	require.NoError(t, err)

	_, err = g.Apply(Move{From: "c5", To: "b6"})
	require.NoError(t, err)

	assert.Equal(t, TerminalStalemate, g.IsTerminal())
	assert.Equal(t, color.None, g.Winner())
}

func TestFiftyMoveRuleEndsGame(t *testing.T) {
	g, err := Deserialize("7k/8/8/8/8/8/8/R3K3 w Q - 99 80")
	require.NoError(t, err)
	require.Equal(t, TerminalNone, g.IsTerminal())

	_, err = g.Apply(Move{From: "a1", To: "a2"})
	require.NoError(t, err)

	assert.Equal(t, TerminalDraw, g.IsTerminal())
	assert.Equal(t, color.None, g.Winner())
}

func TestThreefoldRepetitionEndsGame(t *testing.T) {
	g := NewGame()

	shuffle := []Move{
		{SAN: "Nf3"}, {SAN: "Nf6"}, {SAN: "Ng1"}, {SAN: "Ng8"},
		{SAN: "Nf3"}, {SAN: "Nf6"}, {SAN: "Ng1"}, {SAN: "Ng8"},
	}
	for i, m := range shuffle {
		require.Equal(t, TerminalNone, g.IsTerminal(), "ply %d", i)
		_, err := g.Apply(m)
		require.NoError(t, err)
	}

	assert.Equal(t, TerminalDraw, g.IsTerminal())
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	_, err := Deserialize("not a fen")
	assert.Error(t, err)
}

func TestSamePosition(t *testing.T) {
	after := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	afterNoEP := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

	assert.True(t, SamePosition(after, afterNoEP))
	assert.False(t, SamePosition(startFEN, after))
	assert.False(t, SamePosition("", after))
}
