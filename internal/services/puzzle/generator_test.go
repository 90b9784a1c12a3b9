package puzzle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hectoduel/hectoduel/internal/dependencies/mocks"
	"github.com/hectoduel/hectoduel/internal/dependencies/random"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/evaluator"
	"github.com/hectoduel/hectoduel/internal/testutil"
)

func TestSolveFindsKnownSolution(t *testing.T) {
	p := model.Puzzle{Digits: [6]int{1, 2, 3, 4, 5, 6}, Target: 100}

	expr, ok := Solve(p)
	require.True(t, ok)

	// Whatever the solver found must verify through the evaluator
	v := evaluator.Evaluate(p, expr)
	require.True(t, v.Correct, "solver produced %q which did not verify: %s", expr, v.Reason)
}

func TestSolveSolutionUsesDigitsInOrder(t *testing.T) {
	p := model.Puzzle{Digits: [6]int{9, 9, 9, 9, 9, 9}, Target: 100}

	expr, ok := Solve(p)
	if !ok {
		t.Skip("sequence unsolvable")
	}
	v := evaluator.Evaluate(p, expr)
	require.True(t, v.Correct)
}

func TestSolveVariousSequences(t *testing.T) {
	sequences := [][6]int{
		{1, 2, 3, 4, 5, 6},
		{6, 5, 4, 3, 2, 1},
		{1, 1, 1, 1, 1, 1}, // 111-11 = 100
		{5, 5, 5, 5, 5, 5},
		{2, 4, 6, 8, 1, 3},
	}
	for _, digits := range sequences {
		p := model.Puzzle{Digits: digits, Target: 100}
		expr, ok := Solve(p)
		if !ok {
			continue
		}
		require.True(t, evaluator.Evaluate(p, expr).Correct,
			"sequence %v solution %q failed verification", digits, expr)
	}
}

func TestGenerateProducesSolvablePuzzle(t *testing.T) {
	svc := New(random.New(), testutil.NopLogger())

	p, solution, err := svc.Generate()
	require.NoError(t, err)
	require.Equal(t, model.DefaultTarget, p.Target)
	for _, d := range p.Digits {
		require.GreaterOrEqual(t, d, 1)
		require.LessOrEqual(t, d, 9)
	}
	require.True(t, evaluator.Evaluate(p, solution).Correct)
}

func TestGenerateWithMockedDigits(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueDigits(1, 2, 3, 4, 5, 6)
	svc := New(rnd, testutil.NopLogger())

	p, solution, err := svc.Generate()
	require.NoError(t, err)
	require.Equal(t, "123456", p.DigitString())
	require.True(t, evaluator.Evaluate(p, solution).Correct)
}

func TestStaticGenerator(t *testing.T) {
	fixed := &Static{
		Puzzle:   model.Puzzle{Digits: [6]int{1, 2, 3, 4, 5, 6}, Target: 100},
		Solution: "1+(2+3+4)*(5+6)",
	}

	p, solution, err := fixed.Generate()
	require.NoError(t, err)
	require.Equal(t, "123456", p.DigitString())
	require.Equal(t, "1+(2+3+4)*(5+6)", solution)
}
