package game

import "github.com/pkg/errors"

// Operation errors are local to the caller and never change match state.
var (
	ErrMatchNotFound       = errors.New("Game not found")
	ErrMatchAlreadyStarted = errors.New("Game started")
	ErrMatchNotStarted     = errors.New("Game has not started yet")
	ErrMatchFinished       = errors.New("Game is over")
	ErrMatchFull           = errors.New("Game is full")
	ErrAlreadyJoined       = errors.New("Player already joined this game")
	ErrPlayerNotInMatch    = errors.New("Player is not in this game")
	ErrNotHost             = errors.New("Only the host can start the game")
	ErrNotYourTurn         = errors.New("Not your turn")
	ErrCardNotInHand       = errors.New("Card is not in your hand")
	ErrInvalidColor        = errors.New("A color must be chosen for a wild card")
	ErrIllegalPlay         = errors.New("Card does not match the active color or value")
	ErrDeckExhausted       = errors.New("No cards left to draw")
)
