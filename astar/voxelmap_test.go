package astar

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newCubeMap(t *testing.T, n int) *VoxelMap {
	t.Helper()

	m, err := NewVoxelMap(r3.Vec{}, r3.Vec{X: float64(n), Y: float64(n), Z: float64(n)}, 1, Index{})
	require.NoError(t, err)
	return m
}

func TestNewVoxelMap(t *testing.T) {
	t.Run("derives cell counts", func(t *testing.T) {
		m, err := NewVoxelMap(r3.Vec{X: -1, Y: -2, Z: 0}, r3.Vec{X: 1, Y: 2, Z: 1}, 0.5, Index{})
		require.NoError(t, err)
		require.Equal(t, Index{4, 8, 2}, m.Size())
		require.Equal(t, 64, m.Len())
		require.Equal(t, 0.5, m.Resolution())
		require.Zero(t, m.OccupiedCount())
	})

	t.Run("keeps explicit cell counts", func(t *testing.T) {
		m, err := NewVoxelMap(r3.Vec{}, r3.Vec{X: 10, Y: 10, Z: 10}, 1, Index{10, 5, 3})
		require.NoError(t, err)
		require.Equal(t, Index{10, 5, 3}, m.Size())
	})

	t.Run("rejects invalid geometry", func(t *testing.T) {
		_, err := NewVoxelMap(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, 0, Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, math.NaN(), Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1, Z: 1}, 1, Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 0.5}, 1, Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, 1, Index{-2, 1, 1})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))
	})

	t.Run("rejects grids whose cell count overflows", func(t *testing.T) {
		one := r3.Vec{X: 1, Y: 1, Z: 1}

		m, err := NewVoxelMap(r3.Vec{}, one, 1, Index{1 << 22, 1 << 22, 1 << 22})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))
		require.Nil(t, m)

		_, err = NewVoxelMap(r3.Vec{}, one, 1, Index{1 << 16, 1 << 16, 1})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{}, r3.Vec{X: 1e12, Y: 1, Z: 1}, 1e-3, Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))

		_, err = NewVoxelMap(r3.Vec{}, r3.Vec{X: math.Inf(1), Y: 1, Z: 1}, 1, Index{})
		require.Equal(t, ErrTypeInvalidMap, errors.Type(err))
	})

	t.Run("grid size matches the allocated map", func(t *testing.T) {
		lower, upper := r3.Vec{X: -1, Y: -2, Z: 0}, r3.Vec{X: 1, Y: 2, Z: 1}

		size, err := GridSize(lower, upper, 0.5, Index{})
		require.NoError(t, err)
		require.Equal(t, Index{4, 8, 2}, size)
		require.Equal(t, 64, size.Volume())

		size, err = GridSize(lower, upper, 0.5, Index{Z: 7})
		require.NoError(t, err)
		require.Equal(t, Index{4, 8, 7}, size)

		size, err = GridSize(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, 1, Index{1 << 15, 1 << 15, 1})
		require.NoError(t, err)
		require.Equal(t, 1<<30, size.Volume())
	})
}

func TestVoxelMapSetObstacle(t *testing.T) {
	m := newCubeMap(t, 4)

	require.True(t, m.SetObstacle(r3.Vec{X: 1.2, Y: 2.7, Z: 3.9}))
	require.True(t, m.IsOccupied(Index{1, 2, 3}))
	require.False(t, m.IsFree(Index{1, 2, 3}))

	require.True(t, m.SetObstacle(r3.Vec{X: 1.5, Y: 2.5, Z: 3.5}))
	require.Equal(t, 1, m.OccupiedCount())

	require.False(t, m.SetObstacle(r3.Vec{X: -0.1, Y: 1, Z: 1}))
	require.False(t, m.SetObstacle(r3.Vec{X: 4, Y: 1, Z: 1}))
	require.False(t, m.SetObstacle(r3.Vec{X: 1, Y: 1, Z: math.NaN()}))
	require.Equal(t, 1, m.OccupiedCount())

	require.False(t, m.SetObstacleIndex(Index{4, 0, 0}))
	require.True(t, m.SetObstacleIndex(Index{0, 0, 0}))
	require.Equal(t, 2, m.OccupiedCount())

	m.Clear()
	require.Zero(t, m.OccupiedCount())

	t.Run("cells cover less than the bounds", func(t *testing.T) {
		m, err := NewVoxelMap(r3.Vec{}, r3.Vec{X: 4, Y: 4, Z: 4}, 1, Index{2, 4, 4})
		require.NoError(t, err)

		require.True(t, m.SetObstacle(r3.Vec{X: 1.5, Y: 1, Z: 1}))
		require.False(t, m.SetObstacle(r3.Vec{X: 3.5, Y: 1, Z: 1}))
		require.Equal(t, 1, m.OccupiedCount())
	})
}

func TestVoxelMapWorldToIndex(t *testing.T) {
	m, err := NewVoxelMap(r3.Vec{X: -2, Y: -2, Z: 0}, r3.Vec{X: 2, Y: 2, Z: 2}, 0.5, Index{})
	require.NoError(t, err)

	require.Equal(t, Index{0, 0, 0}, m.WorldToIndex(r3.Vec{X: -2, Y: -2, Z: 0}))
	require.Equal(t, Index{4, 4, 0}, m.WorldToIndex(r3.Vec{X: 0.1, Y: 0.4, Z: 0.2}))
	require.Equal(t, Index{3, 3, 0}, m.WorldToIndex(r3.Vec{X: -0.1, Y: -0.4, Z: 0.2}))

	t.Run("clamps out of range points", func(t *testing.T) {
		require.Equal(t, Index{0, 7, 3}, m.WorldToIndex(r3.Vec{X: -100, Y: 100, Z: 2}))
		require.Equal(t, Index{7, 0, 0}, m.WorldToIndex(r3.Vec{X: math.Inf(1), Y: math.Inf(-1), Z: math.NaN()}))
	})

	t.Run("index to world returns cell centres", func(t *testing.T) {
		require.Equal(t, r3.Vec{X: -1.75, Y: -1.75, Z: 0.25}, m.IndexToWorld(Index{0, 0, 0}))
		require.Equal(t, r3.Vec{X: 0.25, Y: 1.75, Z: 1.25}, m.IndexToWorld(Index{4, 7, 2}))
	})

	t.Run("snapping is idempotent", func(t *testing.T) {
		points := []r3.Vec{
			{X: 0.1, Y: 0.4, Z: 0.2},
			{X: -1.99, Y: 1.99, Z: 1.01},
			{X: 12, Y: -7, Z: 0.74},
		}
		for _, p := range points {
			once := m.Snap(p)
			require.Equal(t, once, m.Snap(once))
		}
	})
}

func TestVoxelMapBoundsChecks(t *testing.T) {
	m := newCubeMap(t, 3)

	for _, i := range []Index{{-1, 0, 0}, {0, 3, 0}, {0, 0, -5}, {3, 3, 3}} {
		require.False(t, m.Contains(i))
		require.False(t, m.IsFree(i))
		require.False(t, m.IsOccupied(i))
	}
	require.True(t, m.IsFree(Index{2, 2, 2}))
}

func TestVoxelMapOffsets(t *testing.T) {
	m, err := NewVoxelMap(r3.Vec{}, r3.Vec{X: 3, Y: 4, Z: 5}, 1, Index{})
	require.NoError(t, err)

	for id := 0; id < m.Len(); id++ {
		require.Equal(t, id, m.offset(m.indexAt(id)))
	}
	require.Equal(t, 1*4*5+2*5+3, m.offset(Index{1, 2, 3}))
}

func TestVoxelMapOccupancy(t *testing.T) {
	m := newCubeMap(t, 2)
	m.SetObstacleIndex(Index{1, 1, 1})

	data := m.Occupancy()
	require.Len(t, data, 8)
	data[0] = 1
	require.False(t, m.IsOccupied(Index{0, 0, 0}))

	other := newCubeMap(t, 2)
	data[3] = 7
	require.NoError(t, other.LoadOccupancy(data))
	require.Equal(t, 3, other.OccupiedCount())
	require.True(t, other.IsOccupied(Index{1, 1, 1}))

	err := other.LoadOccupancy(make([]uint8, 3))
	require.Equal(t, ErrTypeInvalidMap, errors.Type(err))
}
