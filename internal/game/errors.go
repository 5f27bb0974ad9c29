package game

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the coordinator wraps exactly one of
// these, so callers classify with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("invalid state")
	ErrTimeExpired        = errors.New("time expired")
	ErrDuplicateResource  = errors.New("duplicate resource")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNoEligiblePlayers  = errors.New("no eligible players")
	ErrForbidden          = errors.New("forbidden")
)

// Rejection is a typed refusal with a message safe to show to players.
type Rejection struct {
	kind    error
	message string
}

func reject(kind error, message string) *Rejection {
	return &Rejection{kind: kind, message: message}
}

func (r *Rejection) Error() string { return r.message }

func (r *Rejection) Unwrap() error { return r.kind }

var (
	ErrGameNotFound        = reject(ErrNotFound, "Game not found")
	ErrPlayerNotFound      = reject(ErrNotFound, "Player not found")
	ErrRoundNotFound       = reject(ErrNotFound, "No active round")
	ErrGameAlreadyStarted  = reject(ErrInvalidState, "Game has already started")
	ErrGameNotStarted      = reject(ErrInvalidState, "Game has not started")
	ErrGameOver            = reject(ErrInvalidState, "Game is finished")
	ErrSpinUnavailable     = reject(ErrInvalidState, "Wheel can only spin between rounds")
	ErrNotPreparing        = reject(ErrInvalidState, "Player is not preparing")
	ErrNotPlaying          = reject(ErrInvalidState, "Game not in playing state")
	ErrTimerRunning        = reject(ErrInvalidState, "Time has not run out")
	ErrNotAdmin            = reject(ErrUnauthorized, "Only the game admin can do that")
	ErrNotCurrentPlayer    = reject(ErrUnauthorized, "Not the current player")
	ErrPlayTimeExpired     = reject(ErrTimeExpired, "Time expired")
	ErrDuplicatePlayerName = reject(ErrDuplicateResource, "Player name already in use")
	ErrDuplicateGameCode   = reject(ErrDuplicateResource, "Game code already in use")
	ErrCodeSpaceExhausted  = reject(ErrDuplicateResource, "Could not allocate a game code")
	ErrNoPlayersLeft       = reject(ErrNoEligiblePlayers, "No eligible players")
	ErrWordHidden          = reject(ErrForbidden, "Word not available")
)

// StorageError wraps a persistence failure. It matches ErrStorageUnavailable
// and keeps the driver error for operators.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

// Unavailable wraps err as a storage failure unless it already carries a kind.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var rejection *Rejection
	if errors.As(err, &rejection) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Message is the player-facing text for err. Internal details never leak.
func Message(err error) string {
	var rejection *Rejection
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rejection):
		return rejection.message
	case errors.Is(err, ErrStorageUnavailable):
		return "Service temporarily unavailable"
	default:
		return "Something went wrong"
	}
}
