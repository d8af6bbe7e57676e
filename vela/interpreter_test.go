package vela

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireReal(t *testing.T, want float64, got Operand) {
	t.Helper()

	v, ok := got.AsReal()
	require.Truef(t, ok, "want REAL, got %s", got.Type())
	assert.InDelta(t, want, v, 1e-12)
}

func TestInterpreter_Scenarios(t *testing.T) {
	ctx := t.Context()
	in := newTestInterpreter()

	// binding, then an expression over it
	require.NoError(t, in.EvaluateProgram(ctx, "x is 5\nx + 2"))

	got, err := in.EvaluateExpression(ctx, "x+2")
	require.NoError(t, err)
	assert.True(t, Real(7).Equal(got))

	// a typed function definition
	require.NoError(t, in.EvaluateProgram(ctx, "f(t: real): real { t * 2 }"))

	set := in.LookupFunctions("f")
	require.Len(t, set, 1)
	assert.Equal(t, []Type{TypeReal}, set[0].Signature().Params)
	assert.Equal(t, TypeReal, set[0].Signature().Return)

	got, err = in.EvaluateExpression(ctx, "f(3)")
	require.NoError(t, err)
	assert.True(t, Real(6).Equal(got))

	// a type error leaves state alone
	_, err = in.EvaluateExpression(ctx, `1 + "a"`)
	require.ErrorIs(t, err, ErrTypeMismatch)

	got, err = in.EvaluateExpression(ctx, "x")
	require.NoError(t, err)
	assert.True(t, Real(5).Equal(got))

	// redefinition replaces the executor and invalidates memoized results
	require.NoError(t, in.EvaluateProgram(ctx, "f(t: real): real { t }"))
	assert.Len(t, in.LookupFunctions("F"), 1)

	got, err = in.EvaluateExpression(ctx, "f(3)")
	require.NoError(t, err)
	assert.True(t, Real(3).Equal(got))

	// malformed text is reported and not cached
	_, err = in.EvaluateExpression(ctx, "f(3")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line())
	assert.Equal(t, 4, pe.Column())

	_, cached := in.Cache().Get("f(3")
	assert.False(t, cached)
}

func TestInterpreter_Parse_CacheReturnsSameAST(t *testing.T) {
	in := newTestInterpreter()

	a, err := in.Parse(t.Context(), "sin(PI / 2)")
	require.NoError(t, err)

	b, err := in.Parse(t.Context(), "sin(PI / 2)")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, in.Cache().Len())
}

func TestInterpreter_Memoization_SkipsNativeCalls(t *testing.T) {
	calls := 0
	count := NewNative("count", []Type{TypeReal}, TypeReal,
		func(_ context.Context, args []Operand) (Operand, error) {
			calls++

			return Real(args[0].num + 1), nil
		})

	in := newTestInterpreter(WithNative(count))

	for range 3 {
		got, err := in.EvaluateExpression(t.Context(), "count(1) * 2")
		require.NoError(t, err)
		assert.True(t, Real(4).Equal(got))
	}

	assert.Equal(t, 1, calls)
	assert.InDelta(t, 2, testutil.ToFloat64(in.metrics.hits.WithLabelValues(cacheResult)), 0)

	// a root binding invalidates memoized results
	in.Bind("unrelated", Real(0))

	_, err := in.EvaluateExpression(t.Context(), "count(1) * 2")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestInterpreter_Memoization_ImpureNotCached(t *testing.T) {
	calls := 0
	tick := NewImpureNative("tick", nil, TypeReal,
		func(context.Context, []Operand) (Operand, error) {
			calls++

			return Real(float64(calls)), nil
		})

	in := newTestInterpreter(WithNative(tick))
	require.NoError(t, in.EvaluateProgram(t.Context(), "g() { tick() }"))

	// g looks deterministic when parsed
	for _, src := range []string{"tick() + 0", "g()"} {
		first, err := in.EvaluateExpression(t.Context(), src)
		require.NoError(t, err)

		second, err := in.EvaluateExpression(t.Context(), src)
		require.NoError(t, err)

		assert.Falsef(t, first.Equal(second), "%s memoized", src)
	}

	assert.Equal(t, 4, calls)
}

func TestInterpreter_Parse_HostImpureNative(t *testing.T) {
	clock := NewImpureNative("clock", nil, TypeReal,
		func(context.Context, []Operand) (Operand, error) { return Real(0), nil })

	cache := NewCache(0)
	in := newTestInterpreter(WithCache(cache), WithNative(clock))
	plain := newTestInterpreter(WithCache(cache))

	tests := []struct {
		src  string
		want bool
	}{
		{"clock() + 1", false},
		{"CLOCK()", false},
		{"[1, clock()]", false},
		{"random() + 1", false},
		{"sin(1) + 1", true},
	}

	for _, tt := range tests {
		ast, err := in.Parse(t.Context(), tt.src)
		require.NoError(t, err)
		assert.Equalf(t, tt.want, ast.Deterministic(), "Parse(%q).Deterministic()", tt.src)
	}

	// the shared cached AST keeps the parse-time flag
	ast, err := plain.Parse(t.Context(), "clock() + 1")
	require.NoError(t, err)
	assert.True(t, ast.Deterministic())

	require.NoError(t, in.EvaluateProgram(t.Context(), "stamp(): real { clock() }"))

	set := in.LookupFunctions("stamp")
	require.Len(t, set, 1)
	assert.False(t, set[0].Deterministic())

	// natives defined after construction count too
	in.Define(NewImpureNative("jitter", nil, TypeReal,
		func(context.Context, []Operand) (Operand, error) { return Real(0), nil }))

	ast, err = in.Parse(t.Context(), "jitter() * 2")
	require.NoError(t, err)
	assert.False(t, ast.Deterministic())
}

func TestCache_Parse_ListenersOfEveryCaller(t *testing.T) {
	const callers = 8

	cache := NewCache(0)

	var (
		mu  sync.Mutex
		got = make([]int, callers)
		wg  sync.WaitGroup
	)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			l := ErrorListenerFunc(func(Pos, string) {
				mu.Lock()
				defer mu.Unlock()

				got[i]++
			})

			_, _, err := cache.Parse("f(1, 2", l)
			assert.ErrorIs(t, err, ErrParse)
		}()
	}

	wg.Wait()

	for i, n := range got {
		assert.Equalf(t, 1, n, "caller %d", i)
	}

	assert.Zero(t, cache.Len())
}

func TestInterpreter_ScopeIsolation(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), `
f(t: real): real {
    y is t + 1
    y * 2
}`))

	got, err := in.EvaluateExpression(t.Context(), "f(1)")
	require.NoError(t, err)
	assert.True(t, Real(4).Equal(got))

	_, ok := in.Lookup("y")
	assert.False(t, ok)

	_, err = in.EvaluateExpression(t.Context(), "y")
	require.ErrorIs(t, err, ErrUnboundIdentifier)
	assert.Equal(t, 1, in.ScopeDepth())
}

func TestInterpreter_OverloadResolution(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), `
F(x: real): real { x * 10 }
F(s: string): boolean { s = "x" }
`))

	got, err := in.EvaluateExpression(t.Context(), "F(1.0)")
	require.NoError(t, err)
	assert.True(t, Real(10).Equal(got))

	got, err = in.EvaluateExpression(t.Context(), `F("x")`)
	require.NoError(t, err)
	assert.True(t, Boolean(true).Equal(got))

	_, err = in.EvaluateExpression(t.Context(), "F(true)")
	require.ErrorIs(t, err, ErrNoMatchingOverload)
}

func TestInterpreter_TailRecursion_BoundedScope(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), `
countdown(n: real): real {
    if n <= 0 then 0 else countdown(n - 1)
}
fact(n: real): real {
    if n <= 1 then 1 else n * fact(n - 1)
}
`))

	for _, n := range []int{10, 100, 5000} {
		in.ResetMaxScopeDepth()

		got, err := in.EvaluateExpression(t.Context(), "countdown("+itoa(n)+")")
		require.NoError(t, err)
		assert.True(t, Real(0).Equal(got))
		assert.Equal(t, 2, in.MaxScopeDepth(), "countdown(%d)", n)
	}

	in.ResetMaxScopeDepth()

	got, err := in.EvaluateExpression(t.Context(), "fact(10)")
	require.NoError(t, err)
	assert.True(t, Real(3628800).Equal(got))
	assert.Equal(t, 11, in.MaxScopeDepth())
	assert.Equal(t, 1, in.ScopeDepth())
}

func TestInterpreter_TailRecursion_Accumulator(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), `
sum(n: real, acc: real): real {
    if n = 0 then acc else { sum(n - 1, acc + n) }
}`))

	in.ResetMaxScopeDepth()

	got, err := in.EvaluateExpression(t.Context(), "sum(100, 0)")
	require.NoError(t, err)
	assert.True(t, Real(5050).Equal(got))
	assert.Equal(t, 2, in.MaxScopeDepth())
}

func TestInterpreter_MaxCallDepth(t *testing.T) {
	in := newTestInterpreter(WithMaxCallDepth(50))
	require.NoError(t, in.EvaluateProgram(t.Context(), "loop(n: real): real { loop(n + 1) }"))

	_, err := in.EvaluateExpression(t.Context(), "loop(0)")
	require.ErrorIs(t, err, ErrCallDepth)
	assert.Equal(t, 1, in.ScopeDepth())

	// the interpreter is still usable
	got, err := in.EvaluateExpression(t.Context(), "1 + 1")
	require.NoError(t, err)
	assert.True(t, Real(2).Equal(got))

	// elided tail calls keep one frame but still count toward the bound
	require.NoError(t, in.EvaluateProgram(t.Context(),
		"cd(n: real): real { if n <= 0 then 0 else cd(n - 1) }"))

	in.ResetMaxScopeDepth()

	_, err = in.EvaluateExpression(t.Context(), "cd(40)")
	require.NoError(t, err)

	_, err = in.EvaluateExpression(t.Context(), "cd(60)")
	require.ErrorIs(t, err, ErrCallDepth)
	assert.Equal(t, 2, in.MaxScopeDepth())
}

func TestInterpreter_Canceled(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), "id(x: real): real { x }"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := in.EvaluateExpression(ctx, "id(1)")
	require.ErrorIs(t, err, context.Canceled)
}

func TestInterpreter_FailedProgram_RollsBack(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), "a is 1"))

	err := in.EvaluateProgram(t.Context(), `
a is 2
b is 3
h(x: real): real { x }
b + true
`)
	require.ErrorIs(t, err, ErrTypeMismatch)

	a, ok := in.Lookup("a")
	require.True(t, ok)
	assert.True(t, Real(1).Equal(a))

	_, ok = in.Lookup("b")
	assert.False(t, ok)
	assert.Empty(t, in.LookupFunctions("h"))

	// a failing redefinition keeps the previous executor
	require.NoError(t, in.EvaluateProgram(t.Context(), "k(x: real): real { x }"))
	require.Error(t, in.EvaluateProgram(t.Context(), "k(x: real): real { -x }\nnosuch"))

	got, err := in.EvaluateExpression(t.Context(), "k(2)")
	require.NoError(t, err)
	assert.True(t, Real(2).Equal(got))
}

func TestInterpreter_Program_LastValue(t *testing.T) {
	in := newTestInterpreter()

	got, ok, err := in.Program(t.Context(), "x is 2\nx * 3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, Real(6).Equal(got))

	_, ok, err = in.Program(t.Context(), "y is 1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInterpreter_Print(t *testing.T) {
	var buf bytes.Buffer

	in := NewInterpreter(WithOutput(&buf))

	_, ok, err := in.Program(t.Context(), `print("a"); println([1, "b"])`)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "a[1, \"b\"]\n", buf.String())
}

func TestInterpreter_LoadReader(t *testing.T) {
	in := newTestInterpreter()

	require.NoError(t, in.LoadReader(t.Context(), strings.NewReader("k is 4\nsq(x: real): real { x ^ 2 }")))

	got, err := in.EvaluateExpression(t.Context(), "sq(k)")
	require.NoError(t, err)
	assert.True(t, Real(16).Equal(got))
}

func TestInterpreter_ProgramReader(t *testing.T) {
	in := newTestInterpreter()

	v, ok, err := in.ProgramReader(t.Context(), strings.NewReader("a is 2; a * 21"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, Real(42).Equal(v))

	_, _, err = in.ProgramReader(t.Context(), iotest.ErrReader(io.ErrUnexpectedEOF))
	require.ErrorIs(t, err, ErrReadInput)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestInterpreter_RequireFunction(t *testing.T) {
	in := newTestInterpreter()

	_, err := in.RequireFunction("f", []Type{TypeReal}, TypeReal)
	require.ErrorIs(t, err, ErrModelFunction)

	require.NoError(t, in.EvaluateProgram(t.Context(), "f(t: real): real { t }"))

	exec, err := in.RequireFunction("F", []Type{TypeReal}, TypeReal)
	require.NoError(t, err)
	assert.Equal(t, "F(REAL): REAL", exec.Signature().String())

	require.NoError(t, in.EvaluateProgram(t.Context(), "f(s: string): real { 1 }"))

	_, err = in.RequireFunction("f", []Type{TypeReal}, TypeReal)
	require.ErrorIs(t, err, ErrModelFunction)
	assert.Contains(t, err.Error(), "F(REAL): REAL")
}

func TestInterpreter_ModelFunction(t *testing.T) {
	in := newTestInterpreter()
	require.NoError(t, in.EvaluateProgram(t.Context(), `
# sinusoidal model
zeroPoint is 2457504.93
period is 0.4
magZeroPoint is 12.5

f(t: real): real {
    magZeroPoint + 0.09 * cos(2*PI*(1/period)*(t-zeroPoint))
}
`))

	_, err := in.RequireFunction("f", []Type{TypeReal}, TypeReal)
	require.NoError(t, err)

	got, ok, err := in.Program(t.Context(), "f(2457504.93)")
	require.NoError(t, err)
	require.True(t, ok)
	requireReal(t, 12.59, got)
}

func TestInterpreter_SharedCache_Concurrent(t *testing.T) {
	cache := NewCache(0)

	var wg sync.WaitGroup

	errs := make(chan error, 8)

	for i := range 8 {
		wg.Go(func() {
			in := newTestInterpreter(WithCache(cache))
			in.Bind("i", Real(float64(i)))

			for range 50 {
				got, err := in.EvaluateExpression(context.Background(), "i * 2 + 1")
				if err != nil {
					errs <- err

					return
				}

				if !Real(float64(2*i + 1)).Equal(got) {
					errs <- errors.New("unexpected result " + got.String())

					return
				}
			}
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	assert.Equal(t, 1, cache.Len())
}

func TestInterpreter_Metrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	in := newTestInterpreter(WithRegisterer(reg))

	require.NoError(t, in.EvaluateProgram(t.Context(), "f(n: real): real { if n = 0 then 0 else f(n - 1) }"))

	_, err := in.EvaluateExpression(t.Context(), "f(3)")
	require.NoError(t, err)

	_, err = in.EvaluateExpression(t.Context(), "1 +")
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(in.metrics.evaluations.WithLabelValues(entryProgram, outcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(in.metrics.evaluations.WithLabelValues(entryExpression, outcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(in.metrics.evaluations.WithLabelValues(entryExpression, outcomeError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(in.metrics.userCalls), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(in.metrics.elidedCalls), 0)

	count, err := testutil.GatherAndCount(reg, "vela_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInterpreter_Names(t *testing.T) {
	in := newTestInterpreter()
	in.Bind("period", Real(1))

	names := in.Names()
	assert.Contains(t, names, "PERIOD")
	assert.Contains(t, names, "PI")
	assert.Contains(t, names, "SIN")
	assert.IsNonDecreasing(t, names)
}

func itoa(n int) string {
	return Real(float64(n)).String()
}
