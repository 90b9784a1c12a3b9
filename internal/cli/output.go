package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case QueueStatus:
		o.printQueueStatus(v)
	case SubmitVerdict:
		o.printSubmitVerdict(v)
	case DuelSession:
		o.printDuelSession(v)
	case []DuelSummary:
		o.printDuelSummaries(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	WinStreak   int    `json:"win_streak"`
}

// QueueStatus response type
type QueueStatus struct {
	Status string `json:"status"`
	Ranked bool   `json:"ranked"`
}

// SubmitVerdict response type
type SubmitVerdict struct {
	Correct     bool   `json:"correct"`
	Reason      string `json:"reason,omitempty"`
	SolveTimeMS int64  `json:"solve_time_ms"`
}

// Participant response type
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

// DuelSession response type
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

// SummaryParticipant response type
type SummaryParticipant struct {
	PlayerID    string `json:"player_id"`
	Correct     bool   `json:"correct"`
	SolveTimeMS int64  `json:"solve_time_ms"`
	RatingDelta int    `json:"rating_delta"`
}

// DuelSummary response type
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

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Rating: %d\n", p.Rating)
	fmt.Printf("Win Streak: %d\n", p.WinStreak)
}

func (o *Output) printQueueStatus(q QueueStatus) {
	mode := "ranked"
	if !q.Ranked {
		mode = "casual"
	}
	fmt.Printf("Status: %s (%s)\n", q.Status, mode)
}

func (o *Output) printSubmitVerdict(v SubmitVerdict) {
	if v.Correct {
		fmt.Printf("Correct! Solved in %s\n", formatMS(v.SolveTimeMS))
		return
	}
	fmt.Println("Incorrect")
	if v.Reason != "" {
		fmt.Printf("Reason: %s\n", v.Reason)
	}
}

func (o *Output) printDuelSession(s DuelSession) {
	fmt.Printf("Duel: %s\n", s.SessionID)
	fmt.Printf("Status: %s\n", s.Status)
	fmt.Printf("Puzzle: %s -> %d\n", s.PuzzleSequence, s.Target)
	if s.Ranked {
		fmt.Println("Mode: ranked")
	} else {
		fmt.Println("Mode: casual")
	}
	fmt.Printf("Time Limit: %s\n", formatMS(s.TimeLimitMS))
	if s.Deadline != nil {
		fmt.Printf("Deadline: %s\n", s.Deadline.Format(time.RFC3339))
	}
	fmt.Printf("Participants (%d):\n", len(s.Participants))
	for _, p := range s.Participants {
		connStr := ""
		if !p.Connected {
			connStr = " [disconnected]"
		}
		fmt.Printf("  - %s (%s) rating %d, progress %d%%, attempts %d%s\n",
			p.DisplayName, p.PlayerID, p.Rating, p.Progress, p.Attempts, connStr)
	}
}

func (o *Output) printDuelSummaries(summaries []DuelSummary) {
	if len(summaries) == 0 {
		fmt.Println("No completed duels")
		return
	}
	fmt.Printf("Completed duels (%d):\n", len(summaries))
	for _, s := range summaries {
		winner := "draw"
		if s.WinnerID != nil {
			winner = *s.WinnerID
		}
		fmt.Printf("  %s  %s  %s -> %d  cause=%s  winner=%s\n",
			s.CompletedAt.Format("2006-01-02 15:04"), s.SessionID,
			s.PuzzleSequence, s.Target, s.Cause, winner)
		for _, p := range s.Participants {
			mark := " "
			if p.Correct {
				mark = "*"
			}
			fmt.Printf("    %s %s  %s  delta %+d\n",
				mark, p.PlayerID, formatMS(p.SolveTimeMS), p.RatingDelta)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func formatMS(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
