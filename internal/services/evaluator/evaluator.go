package evaluator

import (
	"errors"
	"math/big"
	"strings"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Reason explains why a candidate was rejected. Empty for correct solutions.
type Reason string

const (
	ReasonEmptyInput          Reason = "empty_input"
	ReasonDigitMismatch       Reason = "digit_mismatch"
	ReasonInvalidCharacter    Reason = "invalid_character"
	ReasonMalformedExpression Reason = "malformed_expression"
	ReasonDivisionByZero      Reason = "division_by_zero"
	ReasonWrongResult         Reason = "wrong_result"
)

// Verdict is the outcome of evaluating a candidate solution
type Verdict struct {
	Correct bool
	Reason  Reason
}

// maxExponent bounds exponentiation so evaluation stays total.
// Six digits admit no useful exponent anywhere near this.
const maxExponent = 64

var (
	errDivisionByZero = errors.New("division by zero")
	errMalformed      = errors.New("malformed expression")
)

// Evaluate validates and evaluates a candidate solution against a puzzle.
// The candidate must contain the puzzle's digits in order, each exactly
// once, combined with operators from +-*/^() and optional whitespace, and
// must evaluate to exactly the puzzle's target. Pure and deterministic;
// arithmetic is exact rational so no floating point error is possible.
func Evaluate(p model.Puzzle, candidate string) Verdict {
	stripped := stripWhitespace(candidate)
	if stripped == "" {
		return Verdict{Reason: ReasonEmptyInput}
	}

	// Non-digit characters must come from the operator set
	for _, c := range stripped {
		if !isDigit(byte(c)) && !strings.ContainsRune("+-*/^()", c) {
			return Verdict{Reason: ReasonInvalidCharacter}
		}
	}

	// The digit characters, taken in order, must reproduce the puzzle's
	// sequence exactly: no rearrangement, omission, or repetition
	var digits strings.Builder
	for i := 0; i < len(stripped); i++ {
		if isDigit(stripped[i]) {
			digits.WriteByte(stripped[i])
		}
	}
	if digits.String() != p.DigitString() {
		return Verdict{Reason: ReasonDigitMismatch}
	}

	value, err := parse(stripped)
	if err != nil {
		if errors.Is(err, errDivisionByZero) {
			return Verdict{Reason: ReasonDivisionByZero}
		}
		return Verdict{Reason: ReasonMalformedExpression}
	}

	target := new(big.Rat).SetInt64(int64(p.Target))
	if value.Cmp(target) != 0 {
		return Verdict{Reason: ReasonWrongResult}
	}
	return Verdict{Correct: true}
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case ' ', '\t', '\r', '\n':
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parser is a recursive descent parser over the stripped candidate.
// Grammar (no unary operators):
//
//	expr   := term  { (+|-) term }
//	term   := power { (*|/) power }
//	power  := primary [ ^ power ]          (right associative)
//	primary:= number | ( expr )
type parser struct {
	input string
	pos   int
}

func parse(input string) (*big.Rat, error) {
	p := &parser{input: input}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, errMalformed
	}
	return value, nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) expr() (*big.Rat, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == '+' {
			left = left.Add(left, right)
		} else {
			left = left.Sub(left, right)
		}
	}
}

func (p *parser) term() (*big.Rat, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		if op == '*' {
			left = left.Mul(left, right)
		} else {
			if right.Sign() == 0 {
				return nil, errDivisionByZero
			}
			left = left.Quo(left, right)
		}
	}
}

func (p *parser) power() (*big.Rat, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	return pow(base, exp)
}

func (p *parser) primary() (*big.Rat, error) {
	if p.peek() == '(' {
		p.pos++
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, errMalformed
		}
		p.pos++
		return value, nil
	}
	return p.number()
}

func (p *parser) number() (*big.Rat, error) {
	start := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, errMalformed
	}
	value, ok := new(big.Rat).SetString(p.input[start:p.pos])
	if !ok {
		return nil, errMalformed
	}
	return value, nil
}

// pow raises base to an exact rational power. Only integer exponents with
// magnitude at most maxExponent are representable; anything else is
// rejected as malformed so evaluation never does unbounded work.
func pow(base, exp *big.Rat) (*big.Rat, error) {
	if !exp.IsInt() {
		return nil, errMalformed
	}
	n := exp.Num()
	if n.CmpAbs(big.NewInt(maxExponent)) > 0 {
		return nil, errMalformed
	}
	e := n.Int64()

	if base.Sign() == 0 {
		if e < 0 {
			return nil, errDivisionByZero
		}
		if e == 0 {
			return big.NewRat(1, 1), nil
		}
		return new(big.Rat), nil
	}

	result := big.NewRat(1, 1)
	abs := e
	if abs < 0 {
		abs = -abs
	}
	for i := int64(0); i < abs; i++ {
		result.Mul(result, base)
	}
	if e < 0 {
		result.Inv(result)
	}
	return result, nil
}
