package msgcat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMessages(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)

	got, err := c.Render(KeySelfJoin, nil)
	require.NoError(t, err)
	assert.Equal(t, "You cannot join your own game!", got)

	got, err = c.Render(KeyOverCheckmate, map[string]string{"Winner": "White"})
	require.NoError(t, err)
	assert.Equal(t, "Checkmate! White wins.", got)

	got, err = c.Render(KeyOverDisconnect, map[string]string{"Winner": "Black", "Loser": "White"})
	require.NoError(t, err)
	assert.Equal(t, "White disconnected. Black wins!", got)
}

func TestEveryKeyConstantExists(t *testing.T) {
	c := Default()
	keys := c.Keys()

	for _, k := range []string{
		KeyNotFound, KeySelfJoin, KeyNotYourTurn, KeySpectatorNotAllowed,
		KeyInvalidMove, KeyNotInGame, KeyGameNotActive, KeyAlreadyPlaying,
		KeyNoDrawOffer, KeyClockRunning, KeyInvalidPayload, KeyUnknownType,
		KeyInternal, KeySpectatorFull, KeySpectator, KeyOverCheckmate,
		KeyOverStalemate, KeyOverDraw, KeyOverAgreement, KeyOverResignation,
		KeyOverTimeout, KeyOverDisconnect,
	} {
		assert.Contains(t, keys, k)
	}
}

func TestMissingFieldIsError(t *testing.T) {
	c := Default()

	_, err := c.Render(KeyOverTimeout, map[string]string{})
	assert.Error(t, err)
	assert.Equal(t, KeyOverTimeout, c.Text(KeyOverTimeout, map[string]string{}))
}

func TestUnknownKey(t *testing.T) {
	c := Default()

	_, err := c.Render("error.nope", nil)
	assert.Error(t, err)
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("error:\n  self_join: \"Nope.\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))

	c, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, "Nope.", c.Text(KeySelfJoin, nil))
	assert.Equal(t, "Game ended in a draw.", c.Text(KeyOverDraw, nil))
}

func TestDuplicateOverrideKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("over:\n  draw: \"A\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("over:\n  draw: \"B\"\n"), 0o600))

	_, err := New(dir)
	assert.Error(t, err)
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("over:\n  draw: 3\n"), 0o600))

	_, err := New(dir)
	assert.Error(t, err)
}
