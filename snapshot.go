package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"

	"voxel-planner/astar"
)

// snapshot is the persisted state of a map: its geometry, occupancy and
// the zones rasterized into it.
type snapshot struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lower      Point           `json:"lower"`
	Upper      Point           `json:"upper"`
	Resolution float64         `json:"resolution"`
	Cells      [3]int          `json:"cells"`
	Occupancy  []byte          `json:"occupancy"`
	Zones      json.RawMessage `json:"zones,omitempty"`
}

func newSnapshot(m *astar.VoxelMap, zones []Zone) (snapshot, error) {
	b := m.Bounds()
	size := m.Size()
	snap := snapshot{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Lower:      pointFromVec(b.Min),
		Upper:      pointFromVec(b.Max),
		Resolution: m.Resolution(),
		Cells:      [3]int{size.X, size.Y, size.Z},
		Occupancy:  m.Occupancy(),
	}

	if len(zones) != 0 {
		data, err := json.Marshal(zonesToFeatureCollection(zones))
		if err != nil {
			return snapshot{}, errors.New("encoding zones failed").
				WithType(errTypeSnapshot).
				Wrap(err)
		}
		snap.Zones = data
	}
	return snap, nil
}

// restore rebuilds the map and zones held by the snapshot. Maps above
// maxCells are rejected before anything is allocated.
func (s snapshot) restore(maxCells int) (*astar.VoxelMap, []Zone, error) {
	size, err := astar.GridSize(s.Lower.Vec(), s.Upper.Vec(), s.Resolution,
		astar.Index{X: s.Cells[0], Y: s.Cells[1], Z: s.Cells[2]})
	if err != nil {
		return nil, nil, err
	}
	if size.Volume() > maxCells {
		return nil, nil, errors.New("snapshot map has too many cells").
			WithType(astar.ErrTypeInvalidMap).
			WithTag("cells", size).
			WithTag("max_cells", maxCells)
	}

	m, err := astar.NewVoxelMap(s.Lower.Vec(), s.Upper.Vec(), s.Resolution, size)
	if err != nil {
		return nil, nil, err
	}
	if err := m.LoadOccupancy(s.Occupancy); err != nil {
		return nil, nil, err
	}

	var zones []Zone
	if len(s.Zones) != 0 {
		if zones, err = parseZones("snapshot", s.Zones); err != nil {
			return nil, nil, err
		}
	}
	return m, zones, nil
}

// saveSnapshot writes snap as zstd compressed JSON. The file is replaced
// atomically.
func saveSnapshot(snap snapshot, filename string) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.New("encoding snapshot failed").
			WithType(errTypeSnapshot).
			Wrap(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return errors.New("creating zstd encoder failed").
			WithType(errTypeSnapshot).
			Wrap(err)
	}
	compressed := enc.EncodeAll(data, nil)
	enc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*")
	if err != nil {
		return errors.New("creating snapshot file failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return errors.New("writing snapshot failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.New("closing snapshot file failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.New("renaming snapshot file failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}

	logs.WithTag("filename", filename).
		WithTag("id", snap.ID).
		WithTag("size", humanize.Bytes(uint64(len(compressed)))).
		WithTag("raw_size", humanize.Bytes(uint64(len(data)))).
		Info("snapshot saved")
	return nil
}

// loadSnapshot reads a snapshot written by saveSnapshot.
func loadSnapshot(filename string) (snapshot, error) {
	compressed, err := os.ReadFile(filename)
	if err != nil {
		return snapshot{}, errors.New("reading snapshot failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return snapshot{}, errors.New("creating zstd decoder failed").
			WithType(errTypeSnapshot).
			Wrap(err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return snapshot{}, errors.New("decompressing snapshot failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return snapshot{}, errors.New("decoding snapshot failed").
			WithType(errTypeSnapshot).
			WithTag("filename", filename).
			Wrap(err)
	}

	logs.WithTag("filename", filename).
		WithTag("id", snap.ID).
		WithTag("size", humanize.Bytes(uint64(len(compressed)))).
		Info("snapshot loaded")
	return snap, nil
}
