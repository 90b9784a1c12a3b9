package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Matchmaking errors
	ErrAlreadyQueued = errors.New("player is already in the matchmaking queue")
	ErrAlreadyInGame = errors.New("player is already in an active duel")

	// Session errors
	ErrSessionNotFound        = errors.New("duel session not found")
	ErrNotParticipant         = errors.New("player is not a participant in this duel")
	ErrInvalidSubmission      = errors.New("submission payload is invalid")
	ErrIllegalStateTransition = errors.New("operation not valid in current session state")

	// Duel history errors
	ErrSummaryNotFound = errors.New("duel summary not found")

	// Puzzle generation errors
	ErrPuzzleGeneration = errors.New("could not generate a solvable puzzle")
)
