package vela

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"
)

// impureNatives names the built-in natives whose calls make an expression
// non-deterministic at parse time. Host natives registered with
// [NewImpureNative] are marked by the interpreter after parsing.
var impureNatives = map[string]bool{
	"RANDOM":  true,
	"NOW":     true,
	"PRINT":   true,
	"PRINTLN": true,
}

// constants are bound in the root frame of every interpreter.
var constants = map[string]Operand{
	"PI": Real(math.Pi),
	"E":  Real(math.E),
}

// unixEpochJD is the Julian Date of 1970-01-01T00:00:00Z.
const unixEpochJD = 2440587.5

var (
	real1 = []Type{TypeReal}
	real2 = []Type{TypeReal, TypeReal}
)

func realFunc(name string, f func(float64) float64) *NativeFunction {
	return NewNative(name, real1, TypeReal,
		func(_ context.Context, args []Operand) (Operand, error) {
			return Real(f(args[0].num)), nil
		})
}

func realFunc2(name string, f func(float64, float64) float64) *NativeFunction {
	return NewNative(name, real2, TypeReal,
		func(_ context.Context, args []Operand) (Operand, error) {
			return Real(f(args[0].num, args[1].num)), nil
		})
}

func stringFunc(name string, f func(string) string) *NativeFunction {
	return NewNative(name, []Type{TypeString}, TypeString,
		func(_ context.Context, args []Operand) (Operand, error) {
			return String(f(args[0].str)), nil
		})
}

// index converts a REAL operand to an index in [0, n).
func index(v Operand, n int) (int, error) {
	i := int(v.num)
	if float64(i) != v.num || i < 0 || i >= n {
		return 0, ErrIndexRange.With(
			slog.Float64("index", v.num),
			slog.Int("length", n),
		)
	}

	return i, nil
}

// builtins returns the native functions installed in every interpreter.
// Output of print and println goes to out; =~ and matches share re.
func builtins(out io.Writer, re *patterns) []*NativeFunction {
	return []*NativeFunction{
		realFunc("sin", math.Sin),
		realFunc("cos", math.Cos),
		realFunc("tan", math.Tan),
		realFunc("asin", math.Asin),
		realFunc("acos", math.Acos),
		realFunc("atan", math.Atan),
		realFunc("sqrt", math.Sqrt),
		realFunc("exp", math.Exp),
		realFunc("ln", math.Log),
		realFunc("log10", math.Log10),
		realFunc("abs", math.Abs),
		realFunc("floor", math.Floor),
		realFunc("ceil", math.Ceil),
		realFunc("round", math.Round),
		realFunc2("atan2", math.Atan2),
		realFunc2("pow", math.Pow),
		realFunc2("min", math.Min),
		realFunc2("max", math.Max),

		NewNative("length", []Type{TypeString}, TypeReal,
			func(_ context.Context, args []Operand) (Operand, error) {
				return Real(float64(args[0].Len())), nil
			}),
		NewNative("length", []Type{TypeList}, TypeReal,
			func(_ context.Context, args []Operand) (Operand, error) {
				return Real(float64(args[0].Len())), nil
			}),
		stringFunc("uppercase", strings.ToUpper),
		stringFunc("lowercase", strings.ToLower),
		stringFunc("trim", strings.TrimSpace),
		NewNative("substring", []Type{TypeString, TypeReal, TypeReal}, TypeString,
			func(_ context.Context, args []Operand) (Operand, error) {
				s := []rune(args[0].str)

				start, err := index(args[1], len(s)+1)
				if err != nil {
					return Operand{}, err
				}

				end, err := index(args[2], len(s)+1)
				if err != nil {
					return Operand{}, err
				}

				if end < start {
					return Operand{}, ErrIndexRange.With(
						slog.Float64("start", args[1].num),
						slog.Float64("end", args[2].num),
					)
				}

				return String(string(s[start:end])), nil
			}),
		NewNative("split", []Type{TypeString, TypeString}, TypeList,
			func(_ context.Context, args []Operand) (Operand, error) {
				parts := strings.Split(args[0].str, args[1].str)
				elems := make([]Operand, len(parts))

				for i, p := range parts {
					elems[i] = String(p)
				}

				return Operand{typ: TypeList, list: elems}, nil
			}),
		NewNative("join", []Type{TypeList, TypeString}, TypeString,
			func(_ context.Context, args []Operand) (Operand, error) {
				parts := make([]string, len(args[0].list))
				for i, e := range args[0].list {
					parts[i] = e.String()
				}

				return String(strings.Join(parts, args[1].str)), nil
			}),
		NewNative("matches", []Type{TypeString, TypeString}, TypeBoolean,
			func(_ context.Context, args []Operand) (Operand, error) {
				ok, err := re.match(args[1].str, args[0].str)
				if err != nil {
					return Operand{}, ErrInvalidPattern.Wrap(err)
				}

				return Boolean(ok), nil
			}),
		NewNative("str", []Type{TypeAny}, TypeString,
			func(_ context.Context, args []Operand) (Operand, error) {
				return String(args[0].String()), nil
			}),
		NewNative("real", []Type{TypeString}, TypeReal,
			func(_ context.Context, args []Operand) (Operand, error) {
				v, err := strconv.ParseFloat(strings.TrimSpace(args[0].str), 64)
				if err != nil {
					return Operand{}, err
				}

				return Real(v), nil
			}),
		NewNative("typeof", []Type{TypeAny}, TypeString,
			func(_ context.Context, args []Operand) (Operand, error) {
				return String(args[0].typ.String()), nil
			}),

		NewNative("head", []Type{TypeList}, TypeAny,
			func(_ context.Context, args []Operand) (Operand, error) {
				if len(args[0].list) == 0 {
					return Operand{}, ErrIndexRange.With(slog.Int("length", 0))
				}

				return args[0].list[0], nil
			}),
		NewNative("tail", []Type{TypeList}, TypeList,
			func(_ context.Context, args []Operand) (Operand, error) {
				if len(args[0].list) == 0 {
					return List(), nil
				}

				return List(args[0].list[1:]...), nil
			}),
		NewNative("nth", []Type{TypeList, TypeReal}, TypeAny,
			func(_ context.Context, args []Operand) (Operand, error) {
				i, err := index(args[1], len(args[0].list))
				if err != nil {
					return Operand{}, err
				}

				return args[0].list[i], nil
			}),
		NewNative("append", []Type{TypeList, TypeAny}, TypeList,
			func(_ context.Context, args []Operand) (Operand, error) {
				elems := append(slices.Clip(args[0].list), args[1])

				return Operand{typ: TypeList, list: elems}, nil
			}),
		NewNative("reverse", []Type{TypeList}, TypeList,
			func(_ context.Context, args []Operand) (Operand, error) {
				elems := slices.Clone(args[0].list)
				slices.Reverse(elems)

				return Operand{typ: TypeList, list: elems}, nil
			}),

		NewImpureNative("random", nil, TypeReal,
			func(context.Context, []Operand) (Operand, error) {
				return Real(rand.Float64()), nil
			}),
		NewImpureNative("now", nil, TypeReal,
			func(context.Context, []Operand) (Operand, error) {
				unix := float64(time.Now().UnixNano()) / float64(24*time.Hour)

				return Real(unix + unixEpochJD), nil
			}),
		NewImpureNative("print", []Type{TypeAny}, TypeNone,
			func(_ context.Context, args []Operand) (Operand, error) {
				_, err := io.WriteString(out, args[0].String())

				return Operand{}, err
			}),
		NewImpureNative("println", []Type{TypeAny}, TypeNone,
			func(_ context.Context, args []Operand) (Operand, error) {
				_, err := io.WriteString(out, args[0].String()+"\n")

				return Operand{}, err
			}),
	}
}
