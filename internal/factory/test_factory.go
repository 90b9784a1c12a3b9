package factory

import (
	"time"

	"github.com/hectoduel/hectoduel/internal/dependencies/mocks"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/duel"
	"github.com/hectoduel/hectoduel/internal/services/matchmaking"
	"github.com/hectoduel/hectoduel/internal/services/puzzle"
	"github.com/hectoduel/hectoduel/internal/storage/memory"
	"github.com/hectoduel/hectoduel/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestPuzzleSolution solves the fixed puzzle served by NewTestApp
const TestPuzzleSolution = "1+(2+3+4)*(5+6)"

// NewTestApp creates an App configured for testing: mocked clock and
// random, a fixed puzzle, and huge tick intervals so tests drive tick
// passes explicitly via TickNow.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	generator := &puzzle.Static{
		Puzzle:   model.Puzzle{Digits: [6]int{1, 2, 3, 4, 5, 6}, Target: model.DefaultTarget},
		Solution: TestPuzzleSolution,
	}

	duelCfg := duel.DefaultConfig()
	duelCfg.TickInterval = time.Hour
	mmCfg := matchmaking.DefaultConfig()
	mmCfg.TickInterval = time.Hour

	app := newWithDependencies(store, mockClock, mockRandom, generator, duelCfg, mmCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
