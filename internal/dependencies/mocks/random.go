package mocks

import (
	"github.com/hectoduel/hectoduel/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// DigitResults is a queue of results to return from Digit
	DigitResults []int
	digitIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Digit returns the next queued digit, or 1 if none remaining
func (r *MockRandom) Digit() int {
	if r.digitIndex >= len(r.DigitResults) {
		return 1
	}
	result := r.DigitResults[r.digitIndex]
	r.digitIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueDigits adds values to the Digit result queue
func (r *MockRandom) QueueDigits(values ...int) {
	r.DigitResults = append(r.DigitResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
	r.DigitResults = nil
	r.digitIndex = 0
}
