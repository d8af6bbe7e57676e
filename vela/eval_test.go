package vela

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter(opts ...Option) *Interpreter {
	return NewInterpreter(append([]Option{WithOutput(io.Discard)}, opts...)...)
}

func TestEvaluateExpression_Values(t *testing.T) {
	tests := []struct {
		src  string
		want Operand
	}{
		{"1 + 2 * 3", Real(7)},
		{"(1 + 2) * 3", Real(9)},
		{"2 ^ 3 ^ 2", Real(512)},
		{"-2 ^ 2", Real(-4)},
		{"7 / 2", Real(3.5)},
		{`"ab" + "cd"`, String("abcd")},
		{"[1, 2] + [3]", List(Real(1), Real(2), Real(3))},
		{"[]", List()},
		{"3 in [1 2 3]", Boolean(true)},
		{`"ell" in "hello"`, Boolean(true)},
		{`"hello" =~ "^h.*o$"`, Boolean(true)},
		{`"hello" =~ "^x"`, Boolean(false)},
		{"1 < 2 and 2 < 3", Boolean(true)},
		{"not true or false", Boolean(false)},
		{"false and undefinedName", Boolean(false)},
		{"true or undefinedName", Boolean(true)},
		{`if 1 > 2 then "a" else "b"`, String("b")},
		{`"abc" < "abd"`, Boolean(true)},
		{"2 >= 2", Boolean(true)},
		{"[1, [2, 3]] = [1, [2, 3]]", Boolean(true)},
		{"1 <> 1", Boolean(false)},
		{"{ a is 2; a * a }", Real(4)},
		{`length("héllo")`, Real(5)},
		{"length([1, 2, 3])", Real(3)},
		{`uppercase("abc")`, String("ABC")},
		{"nth([1, 2, 3], 1)", Real(2)},
		{"head([4, 5])", Real(4)},
		{"tail([4, 5])", List(Real(5))},
		{"append([1], \"x\")", List(Real(1), String("x"))},
		{"reverse([1, 2])", List(Real(2), Real(1))},
		{`substring("variable", 0, 3)`, String("var")},
		{`split("a,b", ",")`, List(String("a"), String("b"))},
		{`join([1, "b"], "-")`, String("1-b")},
		{`matches("RR Lyr", "^RR")`, Boolean(true)},
		{"str(1.5)", String("1.5")},
		{`real(" 2.5 ")`, Real(2.5)},
		{"typeof([])", String("LIST")},
		{"sqrt(16)", Real(4)},
		{"max(1, 2) + min(1, 2)", Real(3)},
		{"round(PI * 100) / 100", Real(3.14)},
		{"cos(0) * e / E", Real(1)},
		{"{ double is fun(x: real): real { x * 2 }; double(4) }", Real(8)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in := newTestInterpreter()

			got, err := in.EvaluateExpression(t.Context(), tt.src)
			require.NoError(t, err)
			assert.Truef(t, tt.want.Equal(got), "want %s, got %s", tt.want.Quote(), got.Quote())
		})
	}
}

func TestEvaluateExpression_TypeErrors(t *testing.T) {
	tests := []struct {
		src   string
		op    string
		types []Type
	}{
		{`1 + "a"`, "+", []Type{TypeReal, TypeString}},
		{`"a" - "b"`, "-", []Type{TypeString, TypeString}},
		{"[1] * 2", "*", []Type{TypeList, TypeReal}},
		{"not 1", "not", []Type{TypeReal}},
		{`-"x"`, "-", []Type{TypeString}},
		{"if 1 then 2", "if", []Type{TypeReal}},
		{"true and 1", "and", []Type{TypeBoolean, TypeReal}},
		{"1 or true", "or", []Type{TypeReal}},
		{`1 < "a"`, "<", []Type{TypeReal, TypeString}},
		{`true < false`, "<", []Type{TypeBoolean, TypeBoolean}},
		{`1 = "1"`, "=", []Type{TypeReal, TypeString}},
		{`[1] =~ "x"`, "=~", []Type{TypeList, TypeString}},
		{`1 in 2`, "in", []Type{TypeReal, TypeReal}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in := newTestInterpreter()

			_, err := in.EvaluateExpression(t.Context(), tt.src)
			require.ErrorIs(t, err, ErrTypeMismatch)

			var ee *EvalError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.op, ee.Op)
			assert.Equal(t, tt.types, ee.Types)
		})
	}
}

func TestEvaluateExpression_Errors(t *testing.T) {
	tests := []struct {
		src  string
		want error
	}{
		{"1 / 0", ErrDivisionByZero},
		{"nosuch + 1", ErrUnboundIdentifier},
		{"nosuch(1)", ErrUndefinedFunction},
		{"sin(\"x\")", ErrNoMatchingOverload},
		{"sin(1, 2)", ErrNoMatchingOverload},
		{`"a" =~ "("`, ErrInvalidPattern},
		{"nth([1], 5)", ErrIndexRange},
		{"nth([1], 0.5)", ErrIndexRange},
		{"head([])", ErrNative},
		{`real("x")`, ErrNative},
		{"[println(1)]", ErrNoValue},
		{"x is println(1)", ErrNoValue},
		{"1 2", ErrMultipleResults},
		{"", ErrNoResult},
		{"x is 3", ErrNoResult},
		{"f(x: real): string { x }\nf(1)", ErrReturnType},
		{"f(x: real): real { }\nf(1)", ErrReturnType},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in := newTestInterpreter()

			_, err := in.EvaluateExpression(t.Context(), tt.src)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, in.ScopeDepth())
		})
	}
}

func TestEvaluateExpression_NaNComparisons(t *testing.T) {
	in := newTestInterpreter()
	in.Bind("nan", Real(math.NaN()))

	for _, src := range []string{"nan < 1", "nan >= 1", "nan = nan"} {
		got, err := in.EvaluateExpression(t.Context(), src)
		require.NoError(t, err)
		assert.Truef(t, Boolean(false).Equal(got), "%s", src)
	}
}

func TestEvalError_Message(t *testing.T) {
	in := newTestInterpreter()

	_, err := in.EvaluateExpression(t.Context(), `1 + "a"`)
	require.Error(t, err)
	assert.Equal(t, "type mismatch in + (REAL, STRING) at 1:3", err.Error())

	_, err = in.EvaluateExpression(t.Context(), "F(true)")
	require.Error(t, err)
	assert.Equal(t, `undefined function "F" in call (BOOLEAN) at 1:1`, err.Error())
}
