package puzzle

import (
	"math/big"
	"strconv"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Solve searches for an expression over the puzzle's digits, in order,
// that evaluates exactly to the target. It returns the expression and
// true, or "" and false if the sequence is unsolvable.
//
// The search covers every way of concatenating adjacent digits into
// multi-digit numbers, and every parenthesization of those numbers under
// the binary operators + - * /. Exponentiation is omitted from the search
// deliberately: it is legal in submissions, but rarely needed and it
// blows up the search space.
func Solve(p model.Puzzle) (string, bool) {
	digits := p.Digits[:]
	target := new(big.Rat).SetInt64(int64(p.Target))

	// Enumerate compositions: each bit decides whether to split between
	// adjacent digits or concatenate them into one number.
	n := len(digits)
	for mask := 0; mask < 1<<(n-1); mask++ {
		operands := splitOperands(digits, mask)
		if expr, ok := combine(operands, target); ok {
			return stripOuterParens(expr), true
		}
	}
	return "", false
}

// stripOuterParens removes a redundant outermost paren pair, if present
func stripOuterParens(expr string) string {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return expr
	}
	depth := 0
	for i := 0; i < len(expr)-1; i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			// The opening paren closed before the end, so the outer
			// pair is not redundant
			return expr
		}
	}
	return expr[1 : len(expr)-1]
}

// operand pairs an exact value with the expression that produced it
type operand struct {
	value *big.Rat
	expr  string
}

func splitOperands(digits []int, mask int) []operand {
	var operands []operand
	value := digits[0]
	for i := 1; i < len(digits); i++ {
		if mask&(1<<(i-1)) != 0 {
			operands = append(operands, numberOperand(value))
			value = digits[i]
		} else {
			value = value*10 + digits[i]
		}
	}
	operands = append(operands, numberOperand(value))
	return operands
}

func numberOperand(v int) operand {
	return operand{
		value: new(big.Rat).SetInt64(int64(v)),
		expr:  strconv.Itoa(v),
	}
}

// combine recursively merges adjacent operands with each binary operator.
// Merging adjacent pairs, in every order, covers every parenthesization
// of the ordered operand list.
func combine(operands []operand, target *big.Rat) (string, bool) {
	if len(operands) == 1 {
		if operands[0].value.Cmp(target) == 0 {
			return operands[0].expr, true
		}
		return "", false
	}

	for i := 0; i < len(operands)-1; i++ {
		a, b := operands[i], operands[i+1]
		for _, op := range []byte{'+', '-', '*', '/'} {
			merged, ok := apply(a, b, op)
			if !ok {
				continue
			}

			next := make([]operand, 0, len(operands)-1)
			next = append(next, operands[:i]...)
			next = append(next, merged)
			next = append(next, operands[i+2:]...)

			if expr, ok := combine(next, target); ok {
				return expr, true
			}
		}
	}
	return "", false
}

func apply(a, b operand, op byte) (operand, bool) {
	result := new(big.Rat)
	switch op {
	case '+':
		result.Add(a.value, b.value)
	case '-':
		result.Sub(a.value, b.value)
	case '*':
		result.Mul(a.value, b.value)
	case '/':
		if b.value.Sign() == 0 {
			return operand{}, false
		}
		result.Quo(a.value, b.value)
	}

	return operand{
		value: result,
		expr:  "(" + a.expr + string(op) + b.expr + ")",
	}, true
}
