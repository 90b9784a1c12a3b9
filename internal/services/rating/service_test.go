package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualRatingsWinnerGainsLoserLoses(t *testing.T) {
	svc := New()

	deltaA, deltaB := svc.Deltas(1000, 1000, OutcomeAWins)
	assert.Positive(t, deltaA)
	assert.Equal(t, -deltaA, deltaB)
	assert.Equal(t, 16, deltaA) // K/2 at equal ratings
}

func TestEqualRatingsDrawIsZero(t *testing.T) {
	svc := New()

	deltaA, deltaB := svc.Deltas(1000, 1000, OutcomeDraw)
	assert.Zero(t, deltaA)
	assert.Zero(t, deltaB)
}

func TestUnderdogGainsMoreThanFavorite(t *testing.T) {
	svc := New()

	underdogWin, _ := svc.Deltas(1000, 1400, OutcomeAWins)
	favoriteWin, _ := svc.Deltas(1400, 1000, OutcomeAWins)
	assert.Greater(t, underdogWin, favoriteWin)
}

func TestFavoriteLosesRatingOnDraw(t *testing.T) {
	svc := New()

	deltaA, deltaB := svc.Deltas(1400, 1000, OutcomeDraw)
	assert.Negative(t, deltaA)
	assert.Equal(t, -deltaA, deltaB)
}

func TestZeroSumInvariantAcrossRatingPairs(t *testing.T) {
	svc := New()

	ratings := []int{100, 800, 1000, 1180, 1200, 1400, 2400, 3000}
	outcomes := []Outcome{OutcomeAWins, OutcomeBWins, OutcomeDraw}

	for _, ra := range ratings {
		for _, rb := range ratings {
			for _, outcome := range outcomes {
				deltaA, deltaB := svc.Deltas(ra, rb, outcome)
				assert.Zero(t, deltaA+deltaB,
					"deltas must sum to zero for (%d, %d, %v)", ra, rb, outcome)
			}
		}
	}
}

func TestCloseRatingUpset(t *testing.T) {
	// A at 1200 beats B at 1180
	svc := New()

	deltaA, deltaB := svc.Deltas(1200, 1180, OutcomeAWins)
	assert.Positive(t, deltaA)
	assert.Equal(t, -deltaA, deltaB)
}

func TestCustomKFactor(t *testing.T) {
	svc := NewWithK(16)

	deltaA, _ := svc.Deltas(1000, 1000, OutcomeAWins)
	assert.Equal(t, 8, deltaA)
}
