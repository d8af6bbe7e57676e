package vela

import (
	"context"
	"slices"
	"strings"
)

// Signature identifies an executor by name and parameter types. Return is
// [TypeNone] when the function declares no return type.
type Signature struct {
	Name   string
	Params []Type
	Return Type
}

// String formats the signature as it would be declared, for example
// "F(REAL, STRING): BOOLEAN". Anonymous functions are shown as "fun(...)".
func (s Signature) String() string {
	var b strings.Builder

	if s.Name == "" {
		b.WriteString("fun")
	} else {
		b.WriteString(s.Name)
	}

	b.WriteByte('(')

	for i, t := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(t.String())
	}

	b.WriteByte(')')

	if s.Return != TypeNone {
		b.WriteString(": ")
		b.WriteString(s.Return.String())
	}

	return b.String()
}

// SameParams reports whether s and t have identical parameter types.
func (s Signature) SameParams(t Signature) bool {
	return slices.Equal(s.Params, t.Params)
}

// Accepts reports whether args match the parameters by arity and by type at
// each position.
func (s Signature) Accepts(args []Operand) bool {
	if len(args) != len(s.Params) {
		return false
	}

	for i, p := range s.Params {
		if !p.Accepts(args[i].Type()) {
			return false
		}
	}

	return true
}

// Executor is a callable function: either a [*NativeFunction] or a
// [*UserFunction].
type Executor interface {
	Signature() Signature
	// Deterministic reports whether a call depends only on its arguments.
	Deterministic() bool
}

// NativeFunc implements a native function. The result is ignored when the
// function's return type is [TypeNone].
type NativeFunc func(ctx context.Context, args []Operand) (Operand, error)

// NativeFunction is an executor implemented in Go.
type NativeFunction struct {
	sig  Signature
	fn   NativeFunc
	pure bool
}

// NewNative returns a pure native function.
func NewNative(name string, params []Type, ret Type, fn NativeFunc) *NativeFunction {
	return &NativeFunction{
		sig:  Signature{Name: Canonical(name), Params: slices.Clone(params), Return: ret},
		fn:   fn,
		pure: true,
	}
}

// NewImpureNative returns a native function whose result may differ between
// calls with the same arguments, such as a clock or random source. Results
// of expressions that call it are never memoized.
func NewImpureNative(name string, params []Type, ret Type, fn NativeFunc) *NativeFunction {
	n := NewNative(name, params, ret, fn)
	n.pure = false

	return n
}

// Signature implements [Executor].
func (n *NativeFunction) Signature() Signature { return n.sig }

// Deterministic implements [Executor].
func (n *NativeFunction) Deterministic() bool { return n.pure }

// Call invokes the function directly.
func (n *NativeFunction) Call(ctx context.Context, args ...Operand) (Operand, error) {
	return n.fn(ctx, args)
}

// UserFunction is an executor defined in VeLa source.
type UserFunction struct {
	sig   Signature
	names []string
	body  *AST
}

// newUserFunction builds an executor from a FUNDEF or FUN node.
func newUserFunction(n *AST) *UserFunction {
	params, ret, body := n.Children[0], n.Children[1], n.Children[2]

	f := &UserFunction{
		sig: Signature{
			Params: make([]Type, len(params.Children)),
			Return: ret.DeclaredType(),
		},
		names: make([]string, len(params.Children)),
		body:  body,
	}

	if n.Op == OpFundef {
		f.sig.Name = Canonical(n.Name())
	}

	for i, p := range params.Children {
		f.names[i] = Canonical(p.Name())
		f.sig.Params[i] = p.Children[0].DeclaredType()
	}

	return f
}

// Signature implements [Executor].
func (f *UserFunction) Signature() Signature { return f.sig }

// Deterministic implements [Executor]. It only reflects the body's own
// calls; impure natives reached indirectly are detected during evaluation.
func (f *UserFunction) Deterministic() bool {
	return f.body == nil || f.body.Deterministic()
}

// Params returns the canonical formal parameter names.
func (f *UserFunction) Params() []string { return slices.Clone(f.names) }

// Body returns the function body.
func (f *UserFunction) Body() *AST { return f.body }
