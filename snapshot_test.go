package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"voxel-planner/astar"
)

func TestSnapshotRoundTrip(t *testing.T) {
	m, err := astar.NewVoxelMap(r3.Vec{X: -2, Y: -2, Z: 0}, r3.Vec{X: 2, Y: 2, Z: 2}, 0.5, astar.Index{})
	require.NoError(t, err)
	m.SetObstacle(r3.Vec{X: 0.1, Y: 0.1, Z: 0.1})
	m.SetObstacle(r3.Vec{X: -1.9, Y: 1.9, Z: 1.9})

	zones, err := parseZones("test", []byte(towerZones))
	require.NoError(t, err)

	snap, err := newSnapshot(m, zones)
	require.NoError(t, err)
	require.NotEmpty(t, snap.ID)

	filename := filepath.Join(t.TempDir(), "map.snapshot")
	require.NoError(t, saveSnapshot(snap, filename))

	loaded, err := loadSnapshot(filename)
	require.NoError(t, err)
	require.Equal(t, snap.ID, loaded.ID)
	require.True(t, snap.CreatedAt.Equal(loaded.CreatedAt))

	restored, restoredZones, err := loaded.restore(defaultMaxCells)
	require.NoError(t, err)
	require.Equal(t, m.Bounds(), restored.Bounds())
	require.Equal(t, m.Size(), restored.Size())
	require.Equal(t, m.Resolution(), restored.Resolution())
	require.Equal(t, m.Occupancy(), restored.Occupancy())
	require.Equal(t, 2, restored.OccupiedCount())

	require.Equal(t, zoneNames(zones), zoneNames(restoredZones))
	for i := range zones {
		require.Equal(t, zones[i].MinZ, restoredZones[i].MinZ)
		require.Equal(t, zones[i].MaxZ, restoredZones[i].MaxZ)
		require.True(t, zones[i].Footprint.Equal(restoredZones[i].Footprint))
	}
}

func TestSnapshotWithoutZones(t *testing.T) {
	m := newTestMap(t, 4)
	snap, err := newSnapshot(m, nil)
	require.NoError(t, err)
	require.Empty(t, snap.Zones)

	filename := filepath.Join(t.TempDir(), "empty.snapshot")
	require.NoError(t, saveSnapshot(snap, filename))

	loaded, err := loadSnapshot(filename)
	require.NoError(t, err)

	restored, zones, err := loaded.restore(defaultMaxCells)
	require.NoError(t, err)
	require.Empty(t, zones)
	require.Zero(t, restored.OccupiedCount())
}

func TestLoadSnapshotErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadSnapshot(filepath.Join(dir, "missing"))
	require.Equal(t, errTypeSnapshot, errors.Type(err))

	corrupt := filepath.Join(dir, "corrupt")
	require.NoError(t, os.WriteFile(corrupt, []byte("not zstd"), 0o644))
	_, err = loadSnapshot(corrupt)
	require.Equal(t, errTypeSnapshot, errors.Type(err))

	t.Run("occupancy does not match geometry", func(t *testing.T) {
		snap, err := newSnapshot(newTestMap(t, 3), nil)
		require.NoError(t, err)
		snap.Occupancy = snap.Occupancy[:5]

		_, _, err = snap.restore(defaultMaxCells)
		require.Equal(t, astar.ErrTypeInvalidMap, errors.Type(err))
	})

	t.Run("map above the cell limit", func(t *testing.T) {
		snap, err := newSnapshot(newTestMap(t, 3), nil)
		require.NoError(t, err)

		_, _, err = snap.restore(26)
		require.Equal(t, astar.ErrTypeInvalidMap, errors.Type(err))

		snap.Cells = [3]int{1 << 22, 1 << 22, 1 << 22}
		_, _, err = snap.restore(defaultMaxCells)
		require.Equal(t, astar.ErrTypeInvalidMap, errors.Type(err))
	})
}
