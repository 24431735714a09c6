package astar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNodeStore(t *testing.T) {
	m := newCubeMap(t, 3)
	s := NewNodeStore(m)

	n := s.Get(Index{1, 2, 0})
	require.NotNil(t, n)
	require.Equal(t, Index{1, 2, 0}, n.Index)
	require.Equal(t, r3.Vec{X: 1.5, Y: 2.5, Z: 0.5}, n.Coord)
	require.Equal(t, m.offset(n.Index), n.id)
	require.Equal(t, Unvisited, n.Status)
	require.True(t, math.IsInf(n.G, 1))
	require.True(t, math.IsInf(n.F, 1))
	require.Equal(t, noParent, n.Parent)

	require.Nil(t, s.Get(Index{3, 0, 0}))
	require.Same(t, n, s.Get(Index{1, 2, 0}))

	t.Run("closed cells", func(t *testing.T) {
		require.Empty(t, s.Closed())

		s.Get(Index{0, 0, 0}).Status = Closed
		s.Get(Index{2, 2, 2}).Status = Closed
		s.Get(Index{1, 1, 1}).Status = Open

		require.Equal(t, []r3.Vec{
			{X: 0.5, Y: 0.5, Z: 0.5},
			{X: 2.5, Y: 2.5, Z: 2.5},
		}, s.Closed())
	})

	t.Run("reset", func(t *testing.T) {
		n.Status = Closed
		n.G = 3
		n.F = 4
		n.Parent = 7

		s.Reset()
		require.Equal(t, Unvisited, n.Status)
		require.True(t, math.IsInf(n.G, 1))
		require.Equal(t, noParent, n.Parent)
		require.Empty(t, s.Closed())
		require.Equal(t, Index{1, 2, 0}, n.Index)
	})
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "unvisited", Unvisited.String())
	require.Equal(t, "open", Open.String())
	require.Equal(t, "closed", Closed.String())
	require.Equal(t, "unknown", Status(9).String())
}
