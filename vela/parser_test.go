package vela

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * x", "(PROGRAM (+ 1 (* 2 x)))"},
		{"(1 + 2) * 3", "(PROGRAM (* (+ 1 2) 3))"},
		{"2 ^ 3 ^ 2", "(PROGRAM (^ 2 (^ 3 2)))"},
		{"-2 ^ 2", "(PROGRAM (- (^ 2 2)))"},
		{"2 ^ -1", "(PROGRAM (^ 2 (- 1)))"},
		{"not a or b and c", "(PROGRAM (or (not a) (and b c)))"},
		{"a - b - c", "(PROGRAM (- (- a b) c))"},
		{`s =~ "^a"`, `(PROGRAM (=~ s "^a"))`},
		{"x in [1 2, 3]", "(PROGRAM (in x (LIST 1 2 3)))"},
		{"x is 5\nx + 2", "(PROGRAM (is x 5) (+ x 2))"},
		{"y <- 1; y", "(PROGRAM (is y 1) y)"},
		{"if a then 1 else 2", "(PROGRAM (if a 1 2))"},
		{"if a then 1", "(PROGRAM (if a 1))"},
		{"f(1, g(2))", "(PROGRAM (call f 1 (call g 2)))"},
		{"f()", "(PROGRAM (call f))"},
		{"{ 1; 2 }", "(PROGRAM (BLOCK 1 2))"},
		{
			"f(t: real): real { t * 2 }",
			"(PROGRAM (FUNDEF f (PARAMS (PARAM t real)) real (BLOCK (* t 2))))",
		},
		{
			"g() { 1 }",
			"(PROGRAM (FUNDEF g (PARAMS) none (BLOCK 1)))",
		},
		{
			"fun(a: list, b: any): boolean { true }",
			"(PROGRAM (fun (PARAMS (PARAM a list) (PARAM b any)) boolean (BLOCK true)))",
		},
		{"# only a comment", "(PROGRAM)"},
		{"", "(PROGRAM)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ast, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.String())
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 + 2", true},
		{"sin(1) * PI", true},
		{"[1, length(\"a\")]", true},
		{"random() + 1", false},
		{"[1, NOW()]", false},
		{"println(1)", false},
		{"x is 1", false},
		{"f(t: real): real { t }", false},
		{"{ y is 2; y }", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ast, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.Deterministic())
		})
	}
}

func TestParse_Twice_StructurallyEqual(t *testing.T) {
	src := "zeroPoint is 2457504.93\n" +
		"f(t: real): real { 0.09 * cos(2*PI*(t-zeroPoint)) }\n" +
		"f(2457505) > 0 and \"x\" in [\"x\"]"

	a, err := Parse(src)
	require.NoError(t, err)

	b, err := Parse(src)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.True(t, a.Equal(b))

	if diff := cmp.Diff(a, b, cmp.AllowUnexported(AST{}, Operand{})); diff != "" {
		t.Errorf("ASTs differ (-first +second):\n%s", diff)
	}
}

func TestParse_TailCallMarking(t *testing.T) {
	src := `
countdown(n: real): real {
    if n <= 0 then 0 else { countdown(n - 1) }
}
fact(n: real): real {
    if n <= 1 then 1 else n * fact(n - 1)
}
`

	ast, err := Parse(src)
	require.NoError(t, err)

	tails := map[string]int{}
	calls := map[string]int{}

	ast.Walk(func(n *AST) bool {
		if n.Op == OpFuncall {
			calls[n.Name()]++

			if n.TailCall() {
				tails[n.Name()]++
			}
		}

		return true
	})

	assert.Equal(t, map[string]int{"countdown": 1, "fact": 1}, calls)
	assert.Equal(t, map[string]int{"countdown": 1}, tails)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src    string
		line   int
		column int
		msg    string
	}{
		{"f(3", 1, 4, `expected ")", found end of input`},
		{"1 +", 1, 4, "unexpected end of input"},
		{"x is", 1, 5, "unexpected end of input"},
		{"[1, 2", 1, 6, `expected "]", found end of input`},
		{"{ 1", 1, 4, `expected "}", found end of input`},
		{"if 1 then", 1, 10, "unexpected end of input"},
		{"if 1 2", 1, 6, `expected "then", found number "2"`},
		{"f(x: widget) { x }", 1, 6, `unknown type "widget"`},
		{"f(x: real): { x }", 1, 13, `expected type name, found "{"`},
		{"1 $ 2", 1, 3, "unexpected character '$'"},
		{"x is 1\ny is (2", 2, 8, `expected ")", found end of input`},
		{")", 1, 1, `unexpected ")"`},
		{"h(a: real, A: real): real { a }", 1, 12, `duplicate parameter "A"`},
		{"fun(x: real, x: string) { x }", 1, 14, `duplicate parameter "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ast, err := Parse(tt.src)
			require.Error(t, err)
			assert.Nil(t, ast)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.line, pe.Line())
			assert.Equal(t, tt.column, pe.Column())
			assert.Equal(t, tt.msg, pe.Errors[0].Msg)
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Parse("x is 1\ny is (2")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)

	want := "  2 | y is (2\n" + strings.Repeat(" ", 6+7) + "^"
	assert.Equal(t, want, pe.Snippet())
	assert.True(t, strings.HasPrefix(pe.Error(), "parse error at line 2, column 8: "))
	assert.True(t, strings.HasSuffix(pe.Error(), want))
}

func TestParse_ErrorListener(t *testing.T) {
	var got []string

	listener := ErrorListenerFunc(func(pos Pos, msg string) {
		got = append(got, pos.String()+" "+msg)
	})

	_, err := Parse("1 +\n", listener)
	require.Error(t, err)
	assert.Equal(t, []string{"2:1 unexpected end of input"}, got)
}
