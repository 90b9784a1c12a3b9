package model

// EventType identifies the type of outbound event delivered to a player
type EventType string

const (
	// Matchmaking events
	EventMatchmakingStatus  EventType = "matchmaking_status"
	EventMatchmakingTimeout EventType = "matchmaking_timeout"

	// Duel events
	EventGameCreated  EventType = "game_created"
	EventGameStarted  EventType = "game_started"
	EventGameUpdate   EventType = "game_update"
	EventGameSolution EventType = "game_solution"
	EventGameEnd      EventType = "game_end"

	// Error events
	EventError EventType = "error"
)

// MatchmakingStatusPayload is sent periodically while a player waits in
// the matchmaking pool
type MatchmakingStatusPayload struct {
	TimeInQueueMS int64 `json:"time_in_queue_ms"`
	Ranked        bool  `json:"ranked"`
}

// MatchmakingTimeoutPayload is sent when an entry is evicted from the
// pool after waiting longer than the configured ceiling
type MatchmakingTimeoutPayload struct {
	WaitedMS int64 `json:"waited_ms"`
}

// OpponentSummary describes the opposing player in a newly created duel
type OpponentSummary struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	Rating      int      `json:"rating"`
}

// GameCreatedPayload is sent to each participant when a duel is created
type GameCreatedPayload struct {
	SessionID   SessionID       `json:"session_id"`
	Puzzle      string          `json:"puzzle_sequence"`
	Target      int             `json:"target"`
	Opponent    OpponentSummary `json:"opponent_summary"`
	Ranked      bool            `json:"ranked"`
	StartsInMS  int64           `json:"starts_in_ms"`
	TimeLimitMS int64           `json:"time_limit_ms"`
}

// GameStartedPayload is sent when the pre-start countdown elapses and
// the duel clock begins running
type GameStartedPayload struct {
	SessionID   SessionID `json:"session_id"`
	TimeLimitMS int64     `json:"time_limit_ms"`
}

// GameUpdatePayload carries the opponent's display-only progress estimate
type GameUpdatePayload struct {
	SessionID        SessionID `json:"session_id"`
	OpponentProgress int       `json:"opponent_progress_estimate"`
}

// GameSolutionPayload reports the verdict on a single submission.
// Incorrect verdicts go only to the submitting player.
type GameSolutionPayload struct {
	SessionID   SessionID `json:"session_id"`
	PlayerID    PlayerID  `json:"player_id"`
	Correct     bool      `json:"correct"`
	Reason      string    `json:"reason,omitempty"`
	SolveTimeMS int64     `json:"solve_time_ms"`
}

// PlayerResult is one player's line in the terminal broadcast
type PlayerResult struct {
	PlayerID    PlayerID `json:"player_id"`
	Correct     bool     `json:"correct"`
	SolveTimeMS int64    `json:"solve_time_ms"`
	RatingDelta int      `json:"rating_delta"`
}

// GameEndPayload is the terminal broadcast sent to both participants
type GameEndPayload struct {
	SessionID       SessionID      `json:"session_id"`
	WinnerID        *PlayerID      `json:"winner_id"`
	Cause           TerminalCause  `json:"cause"`
	Players         []PlayerResult `json:"per_player"`
	OptimalSolution string         `json:"optimal_solution"`
}

// ErrorPayload is a structured error delivered over the event stream
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
