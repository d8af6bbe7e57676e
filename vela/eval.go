package vela

import (
	"context"
	"log/slog"

	"github.com/ardnew/vela/log"
)

// DefaultMaxCallDepth bounds nested user function invocations, including
// tail calls whose scope frame was elided. An elided call still nests on the
// Go stack, so a tail-recursive loop runs at most this many iterations.
const DefaultMaxCallDepth = 10000

// callFrame records a user function invocation that pushed a scope frame.
type callFrame struct {
	fn    *UserFunction
	depth int
}

// snapshot holds the root bindings and registry as they were before the
// first change made by the current top-level evaluation.
type snapshot struct {
	root     frame
	registry *Registry
}

// outcome is what a top-level evaluation leaves on the operand stack: the
// number of values and the last one.
type outcome struct {
	last  Operand
	count int
}

// machine evaluates ASTs against a scope and a function registry.
type machine struct {
	scope    *Scope
	registry *Registry
	stack    []Operand
	calls    []callFrame
	nesting  int
	maxDepth int
	impure   uint64 // impure native invocations
	epoch    uint64 // bumped on root binding and function definition
	running  bool
	snap     *snapshot
	trace    bool
	re       matcher
	logger   log.Logger
	metrics  *metrics
}

func (m *machine) push(v Operand) { m.stack = append(m.stack, v) }

func (m *machine) pop() Operand {
	v := m.stack[len(m.stack)-1]
	m.stack[len(m.stack)-1] = Operand{}
	m.stack = m.stack[:len(m.stack)-1]

	return v
}

func (m *machine) truncate(sp int) {
	clear(m.stack[sp:])
	m.stack = m.stack[:sp]
}

// run evaluates a PROGRAM node, which must leave exactly one value if exact
// is set. On error, the operand stack is discharged, the scope is unwound to
// the root frame and any root binding or function definition made by the
// failed program is undone.
func (m *machine) run(ctx context.Context, ast *AST, exact bool) (outcome, error) {
	m.running, m.snap = true, nil
	m.trace = m.logger.Level() <= log.LevelTrace

	defer func() { m.running, m.snap = false, nil }()

	err := m.eval(ctx, ast)

	out := outcome{count: len(m.stack)}
	if err == nil && out.count > 0 {
		out.last = m.stack[out.count-1]
	}

	if err == nil && exact {
		err = expectOne(out)
	}

	if err != nil {
		m.rollback()

		return outcome{}, err
	}

	m.truncate(0)

	return out, nil
}

func expectOne(out outcome) error {
	switch {
	case out.count == 0:
		return &EvalError{Kind: ErrNoResult}
	case out.count > 1:
		return &EvalError{Kind: ErrMultipleResults}
	default:
		return nil
	}
}

func (m *machine) rollback() {
	m.truncate(0)
	m.calls = m.calls[:0]
	m.nesting = 0
	m.scope.truncate(1)

	if m.snap != nil {
		m.scope.restoreRoot(m.snap.root)
		m.registry = m.snap.registry
		m.epoch++
	}
}

// checkpoint saves the root state before the first change of a run.
func (m *machine) checkpoint() {
	if m.running && m.snap == nil {
		m.snap = &snapshot{
			root:     m.scope.cloneRoot(),
			registry: m.registry.clone(),
		}
	}
}

func (m *machine) bind(name string, v Operand) {
	if m.scope.Depth() == 1 {
		m.checkpoint()
		m.epoch++
	}

	m.scope.Bind(name, v)
}

func (m *machine) define(ctx context.Context, f Executor) {
	m.checkpoint()
	m.epoch++

	replaced := m.registry.Define(f)

	m.logger.TraceContext(ctx, "define function",
		slog.String("signature", f.Signature().String()),
		slog.Bool("replaced", replaced),
	)
}

func (m *machine) eval(ctx context.Context, n *AST) error {
	if a := n.Op.Arity(); a >= 0 && len(n.Children) != a {
		e := evalError(ErrArity, n)
		e.Op = n.Op.String()

		return e
	}

	switch n.Op {
	case OpProgram:
		for _, c := range n.Children {
			if err := m.eval(ctx, c); err != nil {
				return err
			}
		}
	case OpLiteral:
		m.push(n.value)
	case OpIdent:
		v, ok := m.scope.Lookup(n.Name())
		if !ok {
			e := evalError(ErrUnboundIdentifier, n)
			e.Name = n.Name()

			return e
		}

		m.push(v)
	case OpAdd, OpSub, OpMul, OpDiv, OpPow,
		OpEqual, OpNotEqual, OpLess, OpGreater, OpLessEqual, OpGreaterEqual,
		OpMatch, OpIn:
		if err := m.value(ctx, n.Children[0]); err != nil {
			return err
		}

		if err := m.value(ctx, n.Children[1]); err != nil {
			return err
		}

		b, a := m.pop(), m.pop()

		v, err := binary(n, a, b, m.re)
		if err != nil {
			return err
		}

		m.push(v)
	case OpNeg, OpNot:
		if err := m.value(ctx, n.Children[0]); err != nil {
			return err
		}

		v, err := unary(n, m.pop())
		if err != nil {
			return err
		}

		m.push(v)
	case OpAnd, OpOr:
		return m.logical(ctx, n)
	case OpBind:
		if err := m.value(ctx, n.Children[0]); err != nil {
			return err
		}

		m.bind(n.Name(), m.pop())
	case OpBlock:
		return m.block(ctx, n)
	case OpIf:
		return m.conditional(ctx, n)
	case OpList:
		elems := make([]Operand, 0, len(n.Children))

		for _, c := range n.Children {
			if err := m.value(ctx, c); err != nil {
				return err
			}

			elems = append(elems, m.pop())
		}

		m.push(Operand{typ: TypeList, list: elems})
	case OpFuncall:
		return m.funcall(ctx, n)
	case OpFundef:
		m.define(ctx, newUserFunction(n))
	case OpFun:
		m.push(Function(newUserFunction(n)))
	default:
		e := evalError(ErrArity, n)
		e.Op = n.Op.String()

		return e
	}

	return nil
}

// value evaluates n, which must leave exactly one operand.
func (m *machine) value(ctx context.Context, n *AST) error {
	sp := len(m.stack)

	if err := m.eval(ctx, n); err != nil {
		return err
	}

	if len(m.stack) == sp {
		e := evalError(ErrNoValue, n)
		e.Op = n.Op.String()
		e.Name = n.Name()

		return e
	}

	if len(m.stack) > sp+1 {
		v := m.pop()
		m.truncate(sp)
		m.push(v)
	}

	return nil
}

func (m *machine) logical(ctx context.Context, n *AST) error {
	if err := m.value(ctx, n.Children[0]); err != nil {
		return err
	}

	a := m.pop()
	if a.typ != TypeBoolean {
		return mismatch(n, a.typ)
	}

	if (n.Op == OpAnd && !a.flag) || (n.Op == OpOr && a.flag) {
		m.push(a)

		return nil
	}

	if err := m.value(ctx, n.Children[1]); err != nil {
		return err
	}

	b := m.pop()
	if b.typ != TypeBoolean {
		return mismatch(n, a.typ, b.typ)
	}

	m.push(b)

	return nil
}

// block keeps only the value of its last form, if it has one.
func (m *machine) block(ctx context.Context, n *AST) error {
	sp := len(m.stack)
	last := len(n.Children) - 1

	for i, c := range n.Children {
		if err := m.eval(ctx, c); err != nil {
			return err
		}

		if i < last {
			m.truncate(sp)
		}
	}

	if len(m.stack) > sp+1 {
		v := m.pop()
		m.truncate(sp)
		m.push(v)
	}

	return nil
}

func (m *machine) conditional(ctx context.Context, n *AST) error {
	if len(n.Children) != 2 && len(n.Children) != 3 {
		e := evalError(ErrArity, n)
		e.Op = n.Op.String()

		return e
	}

	if err := m.value(ctx, n.Children[0]); err != nil {
		return err
	}

	cond := m.pop()
	if cond.typ != TypeBoolean {
		return mismatch(n, cond.typ)
	}

	switch {
	case cond.flag:
		return m.eval(ctx, n.Children[1])
	case len(n.Children) == 3:
		return m.eval(ctx, n.Children[2])
	default:
		return nil
	}
}

func (m *machine) funcall(ctx context.Context, n *AST) error {
	args := make([]Operand, len(n.Children))

	for i, c := range n.Children {
		if err := m.value(ctx, c); err != nil {
			return err
		}

		args[i] = m.pop()
	}

	exec, err := m.resolve(n, args)
	if err != nil {
		return err
	}

	switch f := exec.(type) {
	case *NativeFunction:
		return m.callNative(ctx, n, f, args)
	case *UserFunction:
		return m.callUser(ctx, n, f, args)
	default:
		e := evalError(ErrUndefinedFunction, n)
		e.Name = n.Name()

		return e
	}
}

// resolve prefers a FUNCTION value bound to the name over the registry.
func (m *machine) resolve(n *AST, args []Operand) (Executor, error) {
	var (
		exec Executor
		err  error
	)

	if v, ok := m.scope.Lookup(n.Name()); ok && v.typ == TypeFunction && v.fn != nil {
		exec, err = resolve(n.Name(), []Executor{v.fn}, args)
	} else {
		exec, err = m.registry.Resolve(n.Name(), args)
	}

	if e, ok := err.(*EvalError); ok && n.Token != nil {
		e.Pos = n.Token.Pos
	}

	return exec, err
}

func (m *machine) callNative(
	ctx context.Context,
	n *AST,
	f *NativeFunction,
	args []Operand,
) error {
	if !f.pure {
		m.impure++
	}

	m.metrics.nativeCalls.Inc()

	v, err := f.fn(ctx, args)
	if err != nil {
		e := evalError(ErrNative, n)
		e.Name = f.sig.Name
		e.Types = typesOf(args)
		e.Err = err

		return e
	}

	switch ret := f.sig.Return; {
	case ret == TypeNone:
		return nil
	case v.typ == TypeNone || !ret.Accepts(v.typ):
		e := evalError(ErrReturnType, n)
		e.Name = f.sig.Name
		e.Types = []Type{v.typ}

		return e
	}

	m.push(v)

	return nil
}

// callUser invokes a user function. A marked self tail call made directly
// from the frame of the running invocation rebinds the parameters in that
// frame instead of pushing a new one.
func (m *machine) callUser(
	ctx context.Context,
	n *AST,
	f *UserFunction,
	args []Operand,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.nesting >= m.maxDepth {
		e := evalError(ErrCallDepth, n)
		e.Name = f.sig.Name

		return e
	}

	m.nesting++
	defer func() { m.nesting-- }()

	top := len(m.calls) - 1
	elide := n.tail && top >= 0 &&
		m.calls[top].fn == f && m.calls[top].depth == m.scope.Depth()

	if m.trace {
		m.logger.TraceContext(ctx, "call",
			slog.String("signature", f.sig.String()),
			slog.Int("scope_depth", m.scope.Depth()),
			slog.Bool("elided", elide),
		)
	}

	if elide {
		m.metrics.elidedCalls.Inc()
		m.bindParams(f, args)

		return m.body(ctx, n, f)
	}

	m.metrics.userCalls.Inc()

	m.scope.Push()
	m.calls = append(m.calls, callFrame{fn: f, depth: m.scope.Depth()})
	m.bindParams(f, args)

	err := m.body(ctx, n, f)

	m.calls = m.calls[:len(m.calls)-1]

	if perr := m.scope.Pop(); err == nil {
		err = perr
	}

	return err
}

func (m *machine) bindParams(f *UserFunction, args []Operand) {
	for i, name := range f.names {
		m.scope.Bind(name, args[i])
	}
}

// body evaluates the function body and checks the declared return type.
func (m *machine) body(ctx context.Context, n *AST, f *UserFunction) error {
	sp := len(m.stack)

	if f.body != nil {
		if err := m.eval(ctx, f.body); err != nil {
			return err
		}
	}

	ret := f.sig.Return
	if ret == TypeNone {
		return nil
	}

	got := TypeNone
	if len(m.stack) > sp {
		got = m.stack[len(m.stack)-1].typ
	}

	if len(m.stack) != sp+1 || !ret.Accepts(got) {
		e := evalError(ErrReturnType, n)
		e.Name = f.sig.Name
		e.Types = []Type{got}

		return e
	}

	return nil
}
