package vela

import (
	"maps"
	"slices"
	"strings"
)

type frame map[string]Operand

// Scope is a stack of binding frames. The root frame is created with the
// scope and is never popped. Names are case-insensitive.
type Scope struct {
	frames []frame
	high   int
}

// NewScope returns a scope holding only the root frame.
func NewScope() *Scope {
	return &Scope{frames: []frame{{}}, high: 1}
}

// Canonical returns the canonical spelling of an identifier.
func Canonical(name string) string { return strings.ToUpper(name) }

// Push installs a new empty innermost frame.
func (s *Scope) Push() {
	s.frames = append(s.frames, frame{})
	s.high = max(s.high, len(s.frames))
}

// Pop removes the innermost frame. The root frame cannot be popped.
func (s *Scope) Pop() error {
	if len(s.frames) <= 1 {
		return ErrScopeUnderflow
	}

	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]

	return nil
}

// Bind sets name in the innermost frame.
func (s *Scope) Bind(name string, v Operand) {
	s.frames[len(s.frames)-1][Canonical(name)] = v
}

// Lookup returns the innermost binding of name.
func (s *Scope) Lookup(name string) (Operand, bool) {
	key := Canonical(name)

	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][key]; ok {
			return v, true
		}
	}

	return Operand{}, false
}

// Depth returns the number of frames, counting the root.
func (s *Scope) Depth() int { return len(s.frames) }

// HighWater returns the greatest depth reached since creation or the last
// [Scope.ResetHighWater].
func (s *Scope) HighWater() int { return s.high }

// ResetHighWater sets the high-water mark to the current depth.
func (s *Scope) ResetHighWater() { s.high = len(s.frames) }

// Names returns the sorted canonical names visible from the innermost frame.
func (s *Scope) Names() []string {
	seen := make(map[string]struct{})

	for _, f := range s.frames {
		for name := range f {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// truncate drops every frame above depth n.
func (s *Scope) truncate(n int) {
	for len(s.frames) > max(n, 1) {
		_ = s.Pop()
	}
}

func (s *Scope) cloneRoot() frame { return maps.Clone(s.frames[0]) }

func (s *Scope) restoreRoot(f frame) { s.frames[0] = f }
