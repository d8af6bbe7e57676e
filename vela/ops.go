package vela

import (
	"math"
	"slices"
	"strings"
)

// matcher compiles regular expressions for =~.
type matcher interface {
	match(pattern, s string) (bool, error)
}

func mismatch(n *AST, types ...Type) *EvalError {
	e := evalError(ErrTypeMismatch, n)
	e.Op = n.Op.Symbol()
	e.Types = types

	return e
}

// binary applies an arithmetic, comparison, matching or membership
// operation. AND and OR are evaluated by the caller for short-circuiting.
func binary(n *AST, a, b Operand, re matcher) (Operand, error) {
	switch n.Op {
	case OpAdd:
		switch {
		case a.typ != b.typ:
		case a.typ == TypeReal:
			return Real(a.num + b.num), nil
		case a.typ == TypeString:
			return String(a.str + b.str), nil
		case a.typ == TypeList:
			return Operand{typ: TypeList, list: slices.Concat(a.list, b.list)}, nil
		}
	case OpSub, OpMul, OpDiv, OpPow:
		if a.typ == TypeReal && b.typ == TypeReal {
			return arithmetic(n, a.num, b.num)
		}
	case OpEqual:
		if a.typ == b.typ {
			return Boolean(a.Equal(b)), nil
		}
	case OpNotEqual:
		if a.typ == b.typ {
			return Boolean(!a.Equal(b)), nil
		}
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual:
		switch {
		case a.typ != b.typ:
		case a.typ == TypeReal:
			if math.IsNaN(a.num) || math.IsNaN(b.num) {
				return Boolean(false), nil
			}

			return Boolean(ordered(n.Op, compare(a.num, b.num))), nil
		case a.typ == TypeString:
			return Boolean(ordered(n.Op, strings.Compare(a.str, b.str))), nil
		}
	case OpMatch:
		if a.typ == TypeString && b.typ == TypeString {
			ok, err := re.match(b.str, a.str)
			if err != nil {
				e := evalError(ErrInvalidPattern, n)
				e.Op = n.Op.Symbol()
				e.Err = err

				return Operand{}, e
			}

			return Boolean(ok), nil
		}
	case OpIn:
		switch {
		case b.typ == TypeList:
			return Boolean(slices.ContainsFunc(b.list, a.Equal)), nil
		case a.typ == TypeString && b.typ == TypeString:
			return Boolean(strings.Contains(b.str, a.str)), nil
		}
	}

	return Operand{}, mismatch(n, a.typ, b.typ)
}

func arithmetic(n *AST, x, y float64) (Operand, error) {
	switch n.Op {
	case OpSub:
		return Real(x - y), nil
	case OpMul:
		return Real(x * y), nil
	case OpDiv:
		if y == 0 {
			e := evalError(ErrDivisionByZero, n)
			e.Op = n.Op.Symbol()

			return Operand{}, e
		}

		return Real(x / y), nil
	default:
		return Real(math.Pow(x, y)), nil
	}
}

func compare(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func ordered(op Op, c int) bool {
	switch op {
	case OpLess:
		return c < 0
	case OpGreater:
		return c > 0
	case OpLessEqual:
		return c <= 0
	default:
		return c >= 0
	}
}

func unary(n *AST, a Operand) (Operand, error) {
	switch {
	case n.Op == OpNeg && a.typ == TypeReal:
		return Real(-a.num), nil
	case n.Op == OpNot && a.typ == TypeBoolean:
		return Boolean(!a.flag), nil
	}

	return Operand{}, mismatch(n, a.typ)
}
