package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet()
	s.Add("a", "b")
	require.Equal(t, 2, s.Len())

	require.True(t, s.Remove("a"))
	require.False(t, s.Remove("a"), "second remove reports absence")
	require.Equal(t, []string{"b"}, s.ToSlice())
}

func TestSetZeroValueReads(t *testing.T) {
	var s Set
	require.Equal(t, 0, s.Len())
	require.Empty(t, s.ToSlice())
	require.False(t, s.Remove("missing"))
}
