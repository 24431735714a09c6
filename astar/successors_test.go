package astar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeighborOffsets(t *testing.T) {
	require.Len(t, neighborOffsets, 26)
	require.Equal(t, Index{-1, -1, -1}, neighborOffsets[0].delta)
	require.Equal(t, Index{1, 1, 1}, neighborOffsets[25].delta)

	costs := map[float64]int{}
	for _, o := range neighborOffsets {
		costs[o.cost]++
	}
	require.Equal(t, map[float64]int{
		1:            6,
		math.Sqrt2:   12,
		math.Sqrt(3): 8,
	}, costs)
}

func TestSuccessors(t *testing.T) {
	m := newCubeMap(t, 3)
	nodes := NewNodeStore(m)
	g := successorGenerator{m: m, nodes: nodes}

	t.Run("interior cell", func(t *testing.T) {
		edges := g.successors(nodes.Get(Index{1, 1, 1}), nil)
		require.Len(t, edges, 26)
		for i, e := range edges {
			require.Equal(t, Index{1, 1, 1}.Add(neighborOffsets[i].delta), e.To.Index)
			require.Equal(t, neighborOffsets[i].cost, e.Cost)
		}
	})

	t.Run("corner cell", func(t *testing.T) {
		edges := g.successors(nodes.Get(Index{0, 0, 0}), nil)
		require.Len(t, edges, 7)
	})

	t.Run("skips occupied and closed cells", func(t *testing.T) {
		m.SetObstacleIndex(Index{1, 1, 0})
		nodes.Get(Index{0, 1, 0}).Status = Closed
		nodes.Get(Index{1, 0, 0}).Status = Open

		edges := g.successors(nodes.Get(Index{0, 0, 0}), make([]Edge, 0, 26))
		require.Len(t, edges, 5)
		for _, e := range edges {
			require.NotEqual(t, Index{1, 1, 0}, e.To.Index)
			require.NotEqual(t, Index{0, 1, 0}, e.To.Index)
		}
	})

	t.Run("reuses the buffer", func(t *testing.T) {
		buf := make([]Edge, 0, 26)
		first := g.successors(nodes.Get(Index{2, 2, 2}), buf)
		second := g.successors(nodes.Get(Index{2, 2, 2}), first)
		require.Equal(t, first, second)
		require.Same(t, &buf[:1][0], &second[0])
	})
}
