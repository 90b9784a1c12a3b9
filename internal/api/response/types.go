package response

import (
	"time"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	WinStreak   int    `json:"win_streak"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		WinStreak:   p.WinStreak,
	}
}

// QueueStatus is the response for queue operations
type QueueStatus struct {
	Status string `json:"status"`
	Ranked bool   `json:"ranked"`
}

// SubmitVerdict is the response for a solution submission
type SubmitVerdict struct {
	Correct     bool   `json:"correct"`
	Reason      string `json:"reason,omitempty"`
	SolveTimeMS int64  `json:"solve_time_ms"`
}

// Participant is one player's side of a duel session in API responses.
// The opponent's solution text is withheld while the duel is live.
type Participant struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	Progress    int    `json:"progress"`
	Attempts    int    `json:"attempts"`
	Correct     bool   `json:"correct"`
	Connected   bool   `json:"connected"`
	Solution    string `json:"solution,omitempty"`
}

// DuelSession represents a live duel session from one participant's view
type DuelSession struct {
	SessionID      string        `json:"session_id"`
	Status         string        `json:"status"`
	PuzzleSequence string        `json:"puzzle_sequence"`
	Target         int           `json:"target"`
	Ranked         bool          `json:"ranked"`
	TimeLimitMS    int64         `json:"time_limit_ms"`
	StartsAt       time.Time     `json:"starts_at"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	Deadline       *time.Time    `json:"deadline,omitempty"`
	Participants   []Participant `json:"participants"`
}

// DuelSessionFromModel converts a session snapshot into the viewer's
// response shape. Only the viewer's own submitted text is exposed.
func DuelSessionFromModel(s *model.DuelSession, viewer model.PlayerID) DuelSession {
	out := DuelSession{
		SessionID:      string(s.ID),
		Status:         string(s.Status),
		PuzzleSequence: s.Puzzle.DigitString(),
		Target:         s.Puzzle.Target,
		Ranked:         s.Ranked,
		TimeLimitMS:    s.TimeLimit.Milliseconds(),
		StartsAt:       s.StartsAt,
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		out.StartedAt = &t
	}
	if !s.Deadline.IsZero() {
		t := s.Deadline
		out.Deadline = &t
	}
	for _, p := range s.Participants {
		rp := Participant{
			PlayerID:    string(p.PlayerID),
			DisplayName: p.DisplayName,
			Rating:      p.Rating,
			Progress:    p.Progress,
			Attempts:    p.Attempts,
			Correct:     p.Correct,
			Connected:   p.Connected,
		}
		if p.PlayerID == viewer {
			rp.Solution = p.Solution
		}
		out.Participants = append(out.Participants, rp)
	}
	return out
}

// SummaryParticipant is one player's line in a completed duel summary
type SummaryParticipant struct {
	PlayerID    string `json:"player_id"`
	Correct     bool   `json:"correct"`
	SolveTimeMS int64  `json:"solve_time_ms"`
	RatingDelta int    `json:"rating_delta"`
}

// DuelSummary represents a completed duel in API responses
type DuelSummary struct {
	SessionID       string               `json:"session_id"`
	Ranked          bool                 `json:"ranked"`
	Cause           string               `json:"cause"`
	WinnerID        *string              `json:"winner_id"`
	PuzzleSequence  string               `json:"puzzle_sequence"`
	Target          int                  `json:"target"`
	OptimalSolution string               `json:"optimal_solution"`
	Participants    []SummaryParticipant `json:"participants"`
	CompletedAt     time.Time            `json:"completed_at"`
}

// DuelSummaryFromModel converts model.DuelSummary
func DuelSummaryFromModel(s *model.DuelSummary) DuelSummary {
	out := DuelSummary{
		SessionID:       string(s.SessionID),
		Ranked:          s.Ranked,
		Cause:           string(s.Cause),
		PuzzleSequence:  s.Puzzle.DigitString(),
		Target:          s.Puzzle.Target,
		OptimalSolution: s.OptimalSolution,
		CompletedAt:     s.CompletedAt,
	}
	if s.WinnerID != nil {
		w := string(*s.WinnerID)
		out.WinnerID = &w
	}
	for _, p := range s.Participants {
		out.Participants = append(out.Participants, SummaryParticipant{
			PlayerID:    string(p.PlayerID),
			Correct:     p.Correct,
			SolveTimeMS: p.SolveTime.Milliseconds(),
			RatingDelta: p.RatingDelta,
		})
	}
	return out
}
