package game

import "errors"

// Errors returned by session operations. None of them change session state.
var (
	ErrNotFound            = errors.New("game not found")
	ErrSelfJoin            = errors.New("cannot join own game")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrSpectatorNotAllowed = errors.New("spectators cannot do that")
	ErrInvalidMove         = errors.New("invalid move")
	ErrNotInGame           = errors.New("not a player in this game")
	ErrGameNotActive       = errors.New("game is not in progress")
	ErrAlreadyPlaying      = errors.New("already playing in this game")
	ErrNoDrawOffer         = errors.New("no draw offer to answer")
	ErrClockRunning        = errors.New("clock has not run out")
	ErrSessionsExhausted   = errors.New("could not allocate a game id")
)
