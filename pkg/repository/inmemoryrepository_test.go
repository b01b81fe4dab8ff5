package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/game"
)

func newTestRegistry(opts ...Option) *InMemoryRegistry {
	return NewInMemoryRegistry(chess.NewTimeControl(600), zap.NewNop(), opts...)
}

func sequence(ids ...string) IDGenerator {
	i := 0
	return func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRegistry()

	s, err := r.Create("p1")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), s.ID)
	assert.Equal(t, "p1", s.CreatorID)

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())
}

func TestGetUnknownIsNotFound(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Get("NOPE00")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestCreateRegeneratesOnCollision(t *testing.T) {
	r := newTestRegistry(WithIDGenerator(sequence("AAAAAA", "AAAAAA", "BBBBBB")))

	first, err := r.Create("p1")
	require.NoError(t, err)
	second, err := r.Create("p2")
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", first.ID)
	assert.Equal(t, "BBBBBB", second.ID)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	r := newTestRegistry(WithIDGenerator(sequence("AAAAAA")))

	_, err := r.Create("p1")
	require.NoError(t, err)

	_, err = r.Create("p2")
	assert.ErrorIs(t, err, game.ErrSessionsExhausted)
}

func TestCreatePropagatesGeneratorError(t *testing.T) {
	r := newTestRegistry(WithIDGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))

	_, err := r.Create("p1")
	assert.Error(t, err)
}

func TestDeleteIsIdempotentAndDropsIndex(t *testing.T) {
	r := newTestRegistry()
	s, err := r.Create("p1")
	require.NoError(t, err)

	require.Len(t, r.SessionsFor("p1"), 1)

	r.Delete(s.ID)
	r.Delete(s.ID)

	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.Empty(t, r.SessionsFor("p1"))
}

func TestDeleteRunsHookOnce(t *testing.T) {
	var deleted []string
	r := newTestRegistry(WithOnDelete(func(id string) { deleted = append(deleted, id) }))
	s, err := r.Create("p1")
	require.NoError(t, err)

	r.Delete(s.ID)
	r.Delete(s.ID)

	assert.Equal(t, []string{s.ID}, deleted)
}

func TestTrackAndUntrack(t *testing.T) {
	r := newTestRegistry(WithIDGenerator(sequence("AAAAAA", "BBBBBB")))
	a, _ := r.Create("p1")
	b, _ := r.Create("p2")

	r.Track("viewer", a.ID)
	r.Track("viewer", b.ID)
	r.Track("viewer", "GONE00")

	got := r.SessionsFor("viewer")
	require.Len(t, got, 2)
	assert.Equal(t, "AAAAAA", got[0].ID)

	r.Untrack("viewer", a.ID)
	assert.Len(t, r.SessionsFor("viewer"), 1)
}

func TestRetainDeletesAfterWindow(t *testing.T) {
	r := newTestRegistry()
	s, err := r.Create("p1")
	require.NoError(t, err)

	r.Retain(s.ID, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, err := r.Get(s.ID)
		return errors.Is(err, game.ErrNotFound)
	}, time.Second, 5*time.Millisecond)
}

func TestRetainRacingDeleteIsSafe(t *testing.T) {
	r := newTestRegistry()
	s, err := r.Create("p1")
	require.NoError(t, err)

	r.Retain(s.ID, time.Millisecond)
	r.Delete(s.ID)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, 0, r.Len())
}

func TestListOrdersByCreation(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	r := newTestRegistry(WithClock(clock), WithIDGenerator(sequence("ZZZZZZ", "AAAAAA")))

	_, _ = r.Create("p1")
	_, _ = r.Create("p2")

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "ZZZZZZ", list[0].ID)
	assert.Empty(t, r.ListActiveGames())
}

func TestShutdownClearsEverything(t *testing.T) {
	r := newTestRegistry()
	s, _ := r.Create("p1")
	r.Retain(s.ID, time.Hour)

	r.Shutdown()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.SessionsFor("p1"))
}
