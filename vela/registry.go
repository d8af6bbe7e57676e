package vela

import (
	"maps"
	"slices"
)

// Registry maps function names to their overloads.
type Registry struct {
	funcs map[string][]Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string][]Executor)}
}

// Define adds e to the overloads of its name, replacing an executor with the
// same parameter types. It reports whether one was replaced. Anonymous
// executors are ignored.
func (r *Registry) Define(e Executor) (replaced bool) {
	sig := e.Signature()
	if sig.Name == "" {
		return false
	}

	name := Canonical(sig.Name)
	set := r.funcs[name]

	for i, old := range set {
		if old.Signature().SameParams(sig) {
			// copy so that clones made before this call keep the old executor
			set = slices.Clone(set)
			set[i] = e
			r.funcs[name] = set

			return true
		}
	}

	r.funcs[name] = append(slices.Clip(set), e)

	return false
}

// Lookup returns the overloads of name in definition order.
func (r *Registry) Lookup(name string) []Executor {
	return slices.Clone(r.funcs[Canonical(name)])
}

// Resolve selects the unique overload of name that accepts args.
func (r *Registry) Resolve(name string, args []Operand) (Executor, error) {
	set, ok := r.funcs[Canonical(name)]
	if !ok {
		return nil, &EvalError{
			Kind:  ErrUndefinedFunction,
			Op:    OpFuncall.Symbol(),
			Name:  name,
			Types: typesOf(args),
		}
	}

	return resolve(name, set, args)
}

func resolve(name string, set []Executor, args []Operand) (Executor, error) {
	var found Executor

	for _, e := range set {
		if !e.Signature().Accepts(args) {
			continue
		}

		if found != nil {
			return nil, &EvalError{
				Kind:  ErrAmbiguousCall,
				Op:    OpFuncall.Symbol(),
				Name:  name,
				Types: typesOf(args),
			}
		}

		found = e
	}

	if found == nil {
		return nil, &EvalError{
			Kind:  ErrNoMatchingOverload,
			Op:    OpFuncall.Symbol(),
			Name:  name,
			Types: typesOf(args),
		}
	}

	return found, nil
}

// Names returns the sorted canonical names of all defined functions.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// All returns every executor, ordered by name and then definition order.
func (r *Registry) All() []Executor {
	var all []Executor

	for _, name := range r.Names() {
		all = append(all, r.funcs[name]...)
	}

	return all
}

// clone returns a registry sharing executors but not overload sets.
func (r *Registry) clone() *Registry {
	return &Registry{funcs: maps.Clone(r.funcs)}
}
