package puzzle

import (
	"log/slog"

	"github.com/hectoduel/hectoduel/internal/dependencies/random"
	"github.com/hectoduel/hectoduel/internal/model"
)

// maxDigitAttempts bounds how many digit sequences are tried before
// generation gives up. In practice almost every sequence is solvable so
// the bound is never approached.
const maxDigitAttempts = 200

// Generator produces puzzles for new duels along with a known solution
type Generator interface {
	Generate() (model.Puzzle, string, error)
}

// Service generates solvable puzzles by drawing random digit sequences
// and searching for an expression that reaches the target
type Service struct {
	random random.Random
	logger *slog.Logger
}

// New creates a puzzle generation service
func New(rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: rnd,
		logger: logger.With(slog.String("component", "puzzle")),
	}
}

var _ Generator = (*Service)(nil)

// Generate returns a solvable puzzle and one expression that solves it.
// The returned solution is exposed to players only in the terminal
// broadcast of a duel.
func (s *Service) Generate() (model.Puzzle, string, error) {
	for attempt := 0; attempt < maxDigitAttempts; attempt++ {
		var p model.Puzzle
		for i := range p.Digits {
			p.Digits[i] = s.random.Digit()
		}
		p.Target = model.DefaultTarget

		solution, ok := Solve(p)
		if !ok {
			continue
		}

		s.logger.Debug("puzzle generated",
			slog.String("digits", p.DigitString()),
			slog.Int("attempts", attempt+1))
		return p, solution, nil
	}

	return model.Puzzle{}, "", model.ErrPuzzleGeneration
}

// Static is a Generator that always returns the same puzzle.
// Useful for tests and deterministic demos.
type Static struct {
	Puzzle   model.Puzzle
	Solution string
}

var _ Generator = (*Static)(nil)

// Generate returns the fixed puzzle and solution
func (g *Static) Generate() (model.Puzzle, string, error) {
	return g.Puzzle, g.Solution, nil
}
