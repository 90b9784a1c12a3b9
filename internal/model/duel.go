package model

import "time"

// SessionID uniquely identifies a duel session
type SessionID string

// DuelStatus represents the lifecycle phase of a duel session.
// Status only moves forward: Waiting -> Active -> Completed.
type DuelStatus string

const (
	DuelStatusWaiting   DuelStatus = "waiting"   // Puzzle generated, countdown to start
	DuelStatusActive    DuelStatus = "active"    // Clock running, submissions accepted
	DuelStatusCompleted DuelStatus = "completed" // Terminal
)

// TerminalCause is the single reason a duel completed.
// Exactly one cause applies per completed session.
type TerminalCause string

const (
	CauseSolved  TerminalCause = "solved"  // A participant submitted a correct solution
	CauseTimeout TerminalCause = "timeout" // The time limit expired with no solve
	CauseForfeit TerminalCause = "forfeit" // A participant's disconnect grace expired
)

// Outcome is the closed terminal variant for a duel: solved with a winner,
// timeout with no winner, or forfeit with the remaining participant as
// winner (nil when both disconnected). Consumed exhaustively by the
// session resolution path so every terminal route shares one code path.
type Outcome struct {
	Cause  TerminalCause
	Winner *PlayerID // nil means draw
}

// ParticipantState tracks one player's side of a duel session
type ParticipantState struct {
	PlayerID    PlayerID
	DisplayName string
	Rating      int // snapshot at pairing time

	// Progress is a client-reported estimate used only for display;
	// it never influences the outcome.
	Progress int

	Solution  string         // last submitted expression, empty if none
	Attempts  int            // total submissions, correct or not
	Correct   bool           // true once a winning solution is recorded
	SolveTime *time.Duration // set on resolution for both participants

	Connected     bool
	GraceDeadline *time.Time // set while disconnected during an active duel

	RatingDelta int // applied on resolution of a ranked duel
}

// DuelSession is one head-to-head duel. Created by the matchmaking
// coordinator, mutated exclusively by the session state machine, and
// evicted from the active table after the terminal broadcast.
type DuelSession struct {
	ID     SessionID
	Status DuelStatus
	Puzzle Puzzle
	Ranked bool

	Participants [2]ParticipantState

	// OptimalSolution is a known-correct expression for the puzzle,
	// revealed in the terminal broadcast.
	OptimalSolution string

	TimeLimit time.Duration
	StartsAt  time.Time // end of the pre-start countdown
	StartedAt time.Time // zero until Active
	Deadline  time.Time // zero until Active

	Outcome     *Outcome // nil until Completed
	CompletedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant returns the participant state for the given player, or nil
// if the player is not part of this session.
func (s *DuelSession) Participant(id PlayerID) *ParticipantState {
	for i := range s.Participants {
		if s.Participants[i].PlayerID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

// Opponent returns the other participant's state, or nil if the player
// is not part of this session.
func (s *DuelSession) Opponent(id PlayerID) *ParticipantState {
	for i := range s.Participants {
		if s.Participants[i].PlayerID != id {
			return &s.Participants[i]
		}
	}
	return nil
}

// PlayerIDs returns both participant IDs
func (s *DuelSession) PlayerIDs() [2]PlayerID {
	return [2]PlayerID{s.Participants[0].PlayerID, s.Participants[1].PlayerID}
}

// ParticipantResult is one player's final line in a duel summary
type ParticipantResult struct {
	PlayerID    PlayerID
	Correct     bool
	SolveTime   time.Duration
	RatingDelta int
}

// DuelSummary is the compact persistent record of a completed duel.
// Storage applies its rating deltas idempotently, keyed by SessionID.
type DuelSummary struct {
	SessionID       SessionID
	Ranked          bool
	Cause           TerminalCause
	WinnerID        *PlayerID
	Puzzle          Puzzle
	OptimalSolution string
	Participants    [2]ParticipantResult
	CompletedAt     time.Time
}
