package model

// PuzzleSize is the number of digits in every puzzle
const PuzzleSize = 6

// DefaultTarget is the value every puzzle expression must reach
const DefaultTarget = 100

// Puzzle is an ordered sequence of digits plus a target value.
// A valid solution uses every digit exactly once, in order, joined by
// arithmetic operators. Immutable once generated.
type Puzzle struct {
	Digits [PuzzleSize]int
	Target int
}

// DigitString returns the digit sequence as a string, e.g. "123456"
func (p Puzzle) DigitString() string {
	b := make([]byte, PuzzleSize)
	for i, d := range p.Digits {
		b[i] = byte('0' + d)
	}
	return string(b)
}

// ParsePuzzleDigits builds a Puzzle from a digit string like "123456".
// Returns false if the string is not exactly PuzzleSize digits in 1-9.
func ParsePuzzleDigits(s string, target int) (Puzzle, bool) {
	if len(s) != PuzzleSize {
		return Puzzle{}, false
	}
	var p Puzzle
	for i := 0; i < PuzzleSize; i++ {
		c := s[i]
		if c < '1' || c > '9' {
			return Puzzle{}, false
		}
		p.Digits[i] = int(c - '0')
	}
	p.Target = target
	return p, true
}
