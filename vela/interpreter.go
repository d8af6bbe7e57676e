package vela

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ardnew/vela/log"
)

// Interpreter evaluates VeLa programs against its own scope and function
// registry. Top-level calls are serialized; an interpreter may be used from
// several goroutines but evaluates one program at a time.
type Interpreter struct {
	mu        sync.Mutex
	m         machine
	cache     *Cache
	results   store[uint64, resultEntry]
	listeners []ErrorListener
	natives   []*NativeFunction
	impureMu  sync.RWMutex
	impure    map[string]bool // host natives outside impureNatives
	logger    log.Logger
	metrics   *metrics
	reg       prometheus.Registerer
	out       io.Writer

	astSize    int
	resultSize int
	maxDepth   int
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithCache shares an AST cache between interpreters.
func WithCache(c *Cache) Option {
	return func(in *Interpreter) { in.cache = c }
}

// WithASTCacheSize sets the capacity of the interpreter's own AST cache.
// It has no effect together with [WithCache].
func WithASTCacheSize(size int) Option {
	return func(in *Interpreter) { in.astSize = size }
}

// WithResultCacheSize sets the capacity of the deterministic-result cache.
func WithResultCacheSize(size int) Option {
	return func(in *Interpreter) { in.resultSize = size }
}

// WithMaxCallDepth bounds nested user function invocations. Elided tail
// calls still count toward the bound, so it also limits the iterations of a
// tail-recursive loop.
func WithMaxCallDepth(depth int) Option {
	return func(in *Interpreter) { in.maxDepth = depth }
}

// WithRegisterer registers the interpreter's metrics with reg. Two
// interpreters cannot register with the same registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(in *Interpreter) { in.reg = reg }
}

// WithErrorListener adds a listener for syntax errors. Listeners are not
// notified when the program is served from the AST cache. When several
// callers parse the same failing text at once, each caller's listeners
// receive the errors of the shared parse.
func WithErrorListener(l ErrorListener) Option {
	return func(in *Interpreter) { in.listeners = append(in.listeners, l) }
}

// WithOutput sets the writer used by print and println.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithNative installs additional native functions.
func WithNative(fns ...*NativeFunction) Option {
	return func(in *Interpreter) { in.natives = append(in.natives, fns...) }
}

// NewInterpreter returns an interpreter with the built-in functions and
// constants installed.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		out:        os.Stdout,
		astSize:    DefaultASTCacheSize,
		resultSize: DefaultResultCacheSize,
		maxDepth:   DefaultMaxCallDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	in.metrics = newMetrics(in.reg)

	if in.cache == nil {
		in.cache = NewCache(in.astSize)
	}

	in.results = newStore[uint64, resultEntry](in.resultSize)

	re := newPatterns(DefaultPatternCacheSize, in.metrics)

	in.m = machine{
		scope:    NewScope(),
		registry: NewRegistry(),
		maxDepth: in.maxDepth,
		re:       re,
		logger:   in.logger,
		metrics:  in.metrics,
	}

	for _, f := range builtins(in.out, re) {
		in.m.registry.Define(f)
	}

	for _, f := range in.natives {
		in.m.registry.Define(f)
		in.noteImpure(f)
	}

	for name, v := range constants {
		in.m.scope.Bind(name, v)
	}

	return in
}

// Parse returns the AST of src, from the cache when possible.
func (in *Interpreter) Parse(ctx context.Context, src string) (*AST, error) {
	ast, hit, err := in.cache.Parse(src, in.listeners...)
	if err == nil {
		ast = in.markImpure(ast)
	}

	in.metrics.lookup(cacheAST, hit)
	in.logger.TraceContext(ctx, "parse",
		slog.Int("source_bytes", len(src)),
		slog.Bool("cache_hit", hit),
		slog.Bool("ok", err == nil),
	)

	return ast, err
}

// EvaluateProgram evaluates every form of src, typically to load bindings
// and function definitions. If evaluation fails, bindings and definitions
// made by src are discarded.
func (in *Interpreter) EvaluateProgram(ctx context.Context, src string) error {
	_, err := in.evaluate(ctx, entryProgram, src, false)

	return err
}

// Program evaluates src like [Interpreter.EvaluateProgram] and returns the
// value of the last form that produced one.
func (in *Interpreter) Program(ctx context.Context, src string) (Operand, bool, error) {
	out, err := in.evaluate(ctx, entryProgram, src, false)
	if err != nil {
		return Operand{}, false, err
	}

	return out.last, out.count > 0, nil
}

// EvaluateExpression evaluates src, which must produce exactly one value.
// Results of deterministic expressions are memoized until a root binding or
// function definition changes.
func (in *Interpreter) EvaluateExpression(ctx context.Context, src string) (Operand, error) {
	out, err := in.evaluate(ctx, entryExpression, src, true)
	if err != nil {
		return Operand{}, err
	}

	return out.last, nil
}

// ReadSource reads the whole of r as program text.
func ReadSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// LoadReader reads a program from r and evaluates it.
func (in *Interpreter) LoadReader(ctx context.Context, r io.Reader) error {
	_, _, err := in.ProgramReader(ctx, r)

	return err
}

// ProgramReader reads a program from r and evaluates it like
// [Interpreter.Program].
func (in *Interpreter) ProgramReader(ctx context.Context, r io.Reader) (Operand, bool, error) {
	src, err := ReadSource(r)
	if err != nil {
		return Operand{}, false, err
	}

	return in.Program(ctx, src)
}

func (in *Interpreter) evaluate(
	ctx context.Context,
	entry, src string,
	exact bool,
) (out outcome, err error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	defer func() {
		in.metrics.evaluated(entry, err)

		if err != nil {
			in.logger.DebugContext(ctx, "evaluation failed",
				slog.String("entry", entry),
				slog.Any("error", err),
			)
		}
	}()

	ast, err := in.Parse(ctx, src)
	if err != nil {
		return outcome{}, err
	}

	if !ast.Deterministic() {
		return in.m.run(ctx, ast, exact)
	}

	key := sourceKey(src)

	e, ok := in.results.Get(key)
	hit := ok && e.source == src && e.epoch == in.m.epoch

	in.metrics.lookup(cacheResult, hit)
	in.logger.TraceContext(ctx, "result cache",
		slog.String("source", src),
		slog.Bool("cache_hit", hit),
	)

	if hit {
		if exact {
			if err := expectOne(e.result); err != nil {
				return outcome{}, err
			}
		}

		return e.result, nil
	}

	epoch, impure := in.m.epoch, in.m.impure

	out, err = in.m.run(ctx, ast, exact)
	if err != nil {
		return outcome{}, err
	}

	if in.m.epoch == epoch && in.m.impure == impure {
		evicted := in.results.Add(key, resultEntry{source: src, epoch: epoch, result: out})
		in.metrics.evicted(cacheResult, evicted)
	}

	return out, nil
}

// LookupFunctions returns the executors registered under name.
func (in *Interpreter) LookupFunctions(name string) []Executor {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.m.registry.Lookup(name)
}

// Functions returns every registered executor ordered by name.
func (in *Interpreter) Functions() []Executor {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.m.registry.All()
}

// RequireFunction returns the single executor named name, failing unless it
// exists, is not overloaded, and has exactly the given parameter and return
// types.
func (in *Interpreter) RequireFunction(name string, params []Type, ret Type) (Executor, error) {
	want := Signature{Name: Canonical(name), Params: params, Return: ret}
	set := in.LookupFunctions(name)

	if len(set) == 1 {
		sig := set[0].Signature()
		if sig.SameParams(want) && sig.Return == ret {
			return set[0], nil
		}
	}

	return nil, ErrModelFunction.
		Wrap(NewError("a non-overloaded function " + want.String() + " must be defined")).
		With(slog.Int("overloads", len(set)))
}

// Define registers an executor, replacing one with the same name and
// parameter types.
func (in *Interpreter) Define(e Executor) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.m.define(log.DefaultContextProvider(), e)
	in.noteImpure(e)
}

// noteImpure records e if it is a native that calls must not treat as
// deterministic.
func (in *Interpreter) noteImpure(e Executor) {
	if _, ok := e.(*NativeFunction); !ok || e.Deterministic() {
		return
	}

	name := e.Signature().Name
	if impureNatives[name] {
		return
	}

	in.impureMu.Lock()
	defer in.impureMu.Unlock()

	if in.impure == nil {
		in.impure = make(map[string]bool)
	}

	in.impure[name] = true
}

// markImpure clears the determinism of calls to impure host natives in ast.
// The cached AST itself is shared and left as parsed.
func (in *Interpreter) markImpure(ast *AST) *AST {
	in.impureMu.RLock()
	defer in.impureMu.RUnlock()

	if len(in.impure) == 0 {
		return ast
	}

	return ast.markImpure(func(name string) bool { return in.impure[Canonical(name)] })
}

// Bind sets name in the root frame.
func (in *Interpreter) Bind(name string, v Operand) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.m.bind(name, v)
}

// Lookup returns the root binding of name.
func (in *Interpreter) Lookup(name string) (Operand, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.m.scope.Lookup(name)
}

// Names returns the sorted canonical names of all bindings and functions.
func (in *Interpreter) Names() []string {
	in.mu.Lock()
	defer in.mu.Unlock()

	names := slices.Concat(in.m.scope.Names(), in.m.registry.Names())
	slices.Sort(names)

	return slices.Compact(names)
}

// Bindings returns a copy of the root frame.
func (in *Interpreter) Bindings() map[string]Operand {
	in.mu.Lock()
	defer in.mu.Unlock()

	return maps.Clone(in.m.scope.frames[0])
}

// ScopeDepth returns the current number of scope frames, which is 1 between
// top-level calls.
func (in *Interpreter) ScopeDepth() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.m.scope.Depth()
}

// MaxScopeDepth returns the greatest number of scope frames reached since
// the interpreter was created or [Interpreter.ResetMaxScopeDepth] was
// called.
func (in *Interpreter) MaxScopeDepth() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.m.scope.HighWater()
}

// ResetMaxScopeDepth restarts tracking of [Interpreter.MaxScopeDepth].
func (in *Interpreter) ResetMaxScopeDepth() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.m.scope.ResetHighWater()
}

// Cache returns the AST cache used by the interpreter.
func (in *Interpreter) Cache() *Cache { return in.cache }
