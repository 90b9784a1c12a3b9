package rating

import "math"

// DefaultK is the Elo K-factor used for all ranked duels
const DefaultK = 32

// Outcome is the resolved result of a duel from player A's perspective
type Outcome int

const (
	OutcomeAWins Outcome = iota
	OutcomeBWins
	OutcomeDraw
)

// Service computes Elo rating deltas for resolved duels.
// Pure and deterministic; performs no I/O.
type Service struct {
	k float64
}

// New creates a rating service with the default K-factor
func New() *Service {
	return &Service{k: DefaultK}
}

// NewWithK creates a rating service with a custom K-factor
func NewWithK(k int) *Service {
	return &Service{k: float64(k)}
}

// Deltas returns the symmetric rating deltas for both players.
// deltaB is always the exact negation of deltaA, so the total amount of
// rating in the system is conserved.
func (s *Service) Deltas(ratingA, ratingB int, outcome Outcome) (deltaA, deltaB int) {
	expectedA := 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))

	var scoreA float64
	switch outcome {
	case OutcomeAWins:
		scoreA = 1.0
	case OutcomeBWins:
		scoreA = 0.0
	case OutcomeDraw:
		scoreA = 0.5
	}

	deltaA = int(math.Round(s.k * (scoreA - expectedA)))
	return deltaA, -deltaA
}
