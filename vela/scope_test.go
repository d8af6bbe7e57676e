package vela

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_BindLookup_CaseInsensitive(t *testing.T) {
	s := NewScope()
	s.Bind("Period", Real(0.5))

	v, ok := s.Lookup("PERIOD")
	require.True(t, ok)
	assert.True(t, v.Equal(Real(0.5)))

	_, ok = s.Lookup("phase")
	assert.False(t, ok)
}

func TestScope_PushPop_Shadowing(t *testing.T) {
	s := NewScope()
	s.Bind("x", Real(1))

	s.Push()
	s.Bind("x", Real(2))
	s.Bind("y", Real(3))

	v, _ := s.Lookup("x")
	assert.True(t, v.Equal(Real(2)))
	assert.Equal(t, 2, s.Depth())

	require.NoError(t, s.Pop())

	v, _ = s.Lookup("x")
	assert.True(t, v.Equal(Real(1)))

	_, ok := s.Lookup("y")
	assert.False(t, ok)
	assert.Equal(t, 2, s.HighWater())
}

func TestScope_PopRoot(t *testing.T) {
	s := NewScope()

	err := s.Pop()
	require.ErrorIs(t, err, ErrScopeUnderflow)
	assert.Equal(t, 1, s.Depth())
}

func TestScope_Truncate_KeepsRoot(t *testing.T) {
	s := NewScope()
	s.Push()
	s.Push()

	s.truncate(0)
	assert.Equal(t, 1, s.Depth())

	s.ResetHighWater()
	assert.Equal(t, 1, s.HighWater())
}

func TestScope_Names(t *testing.T) {
	s := NewScope()
	s.Bind("b", Real(1))
	s.Push()
	s.Bind("a", Real(2))
	s.Bind("B", Real(3))

	assert.Equal(t, []string{"A", "B"}, s.Names())
}
