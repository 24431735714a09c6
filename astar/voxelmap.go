package astar

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Index is the discrete position of a cell in the voxel map.
type Index struct {
	X, Y, Z int
}

// Add returns the component-wise sum of two indices.
func (i Index) Add(d Index) Index {
	return Index{i.X + d.X, i.Y + d.Y, i.Z + d.Z}
}

// VoxelMap is a dense occupancy grid over an axis-aligned box.
type VoxelMap struct {
	lower         r3.Vec
	upper         r3.Vec
	resolution    float64
	invResolution float64
	size          Index
	yzSize        int
	data          []uint8
}

// MaxCells is the largest number of cells a map may hold. It keeps flat
// offsets within 32 bits.
const MaxCells = math.MaxInt32

// NewVoxelMap allocates a map covering [lower, upper) with cubic cells of
// the given edge length. All cells start free. A zero count on an axis is
// derived from the extent and the resolution.
func NewVoxelMap(lower, upper r3.Vec, resolution float64, cells Index) (*VoxelMap, error) {
	size, err := GridSize(lower, upper, resolution, cells)
	if err != nil {
		return nil, err
	}

	return &VoxelMap{
		lower:         lower,
		upper:         upper,
		resolution:    resolution,
		invResolution: 1 / resolution,
		size:          size,
		yzSize:        size.Y * size.Z,
		data:          make([]uint8, size.Volume()),
	}, nil
}

// GridSize returns the cell counts NewVoxelMap uses for the given geometry
// without allocating the map. The total never exceeds MaxCells.
func GridSize(lower, upper r3.Vec, resolution float64, cells Index) (Index, error) {
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return Index{}, errors.New("resolution must be positive").
			WithType(ErrTypeInvalidMap).
			WithTag("resolution", resolution)
	}

	extent := r3.Sub(upper, lower)
	if !(extent.X > 0 && extent.Y > 0 && extent.Z > 0) {
		return Index{}, errors.New("upper bound must be greater than lower bound").
			WithType(ErrTypeInvalidMap).
			WithTag("lower", lower).
			WithTag("upper", upper)
	}

	axes := [3]struct {
		cells  *int
		extent float64
	}{
		{&cells.X, extent.X},
		{&cells.Y, extent.Y},
		{&cells.Z, extent.Z},
	}
	for _, a := range axes {
		if *a.cells != 0 {
			continue
		}

		// NaN and Inf fail the comparison.
		n := math.Floor(a.extent / resolution)
		if !(n <= MaxCells) {
			return Index{}, errors.New("map has too many cells").
				WithType(ErrTypeInvalidMap).
				WithTag("extent", a.extent).
				WithTag("resolution", resolution).
				WithTag("max_cells", MaxCells)
		}
		*a.cells = int(n)
	}

	if cells.X <= 0 || cells.Y <= 0 || cells.Z <= 0 {
		return Index{}, errors.New("map must have at least one cell per axis").
			WithType(ErrTypeInvalidMap).
			WithTag("cells", cells)
	}

	total := 1
	for _, n := range [3]int{cells.X, cells.Y, cells.Z} {
		if n > MaxCells/total {
			return Index{}, errors.New("map has too many cells").
				WithType(ErrTypeInvalidMap).
				WithTag("cells", cells).
				WithTag("max_cells", MaxCells)
		}
		total *= n
	}
	return cells, nil
}

// Volume returns the number of cells of a grid with i cells per axis.
func (i Index) Volume() int {
	return i.X * i.Y * i.Z
}

// Bounds returns the box covered by the map.
func (m *VoxelMap) Bounds() r3.Box {
	return r3.Box{Min: m.lower, Max: m.upper}
}

// Resolution returns the edge length of a cell.
func (m *VoxelMap) Resolution() float64 {
	return m.resolution
}

// Size returns the number of cells along each axis.
func (m *VoxelMap) Size() Index {
	return m.size
}

// Len returns the total number of cells.
func (m *VoxelMap) Len() int {
	return len(m.data)
}

// Contains reports whether i addresses a cell of the map.
func (m *VoxelMap) Contains(i Index) bool {
	return i.X >= 0 && i.X < m.size.X &&
		i.Y >= 0 && i.Y < m.size.Y &&
		i.Z >= 0 && i.Z < m.size.Z
}

func (m *VoxelMap) offset(i Index) int {
	return i.X*m.yzSize + i.Y*m.size.Z + i.Z
}

func (m *VoxelMap) indexAt(offset int) Index {
	x := offset / m.yzSize
	rest := offset % m.yzSize
	return Index{x, rest / m.size.Z, rest % m.size.Z}
}

// SetObstacle marks the cell containing p as occupied and reports whether
// p addressed a cell. Points outside [lower, upper) or beyond the last cell
// are ignored.
func (m *VoxelMap) SetObstacle(p r3.Vec) bool {
	if !(p.X >= m.lower.X && p.X < m.upper.X &&
		p.Y >= m.lower.Y && p.Y < m.upper.Y &&
		p.Z >= m.lower.Z && p.Z < m.upper.Z) {
		return false
	}

	return m.SetObstacleIndex(Index{
		X: int((p.X - m.lower.X) * m.invResolution),
		Y: int((p.Y - m.lower.Y) * m.invResolution),
		Z: int((p.Z - m.lower.Z) * m.invResolution),
	})
}

// SetObstacleIndex marks cell i as occupied. Out of range indices are
// ignored and reported as false.
func (m *VoxelMap) SetObstacleIndex(i Index) bool {
	if !m.Contains(i) {
		return false
	}
	m.data[m.offset(i)] = 1
	return true
}

// Clear marks every cell free.
func (m *VoxelMap) Clear() {
	clear(m.data)
}

// WorldToIndex returns the cell containing p, clamped to the map.
func (m *VoxelMap) WorldToIndex(p r3.Vec) Index {
	return Index{
		X: clampAxis(p.X, m.lower.X, m.invResolution, m.size.X),
		Y: clampAxis(p.Y, m.lower.Y, m.invResolution, m.size.Y),
		Z: clampAxis(p.Z, m.lower.Z, m.invResolution, m.size.Z),
	}
}

func clampAxis(v, lower, invResolution float64, size int) int {
	f := math.Floor((v - lower) * invResolution)
	switch {
	case !(f > 0):
		// NaN lands here too.
		return 0
	case f >= float64(size-1):
		return size - 1
	default:
		return int(f)
	}
}

// IndexToWorld returns the centre of cell i.
func (m *VoxelMap) IndexToWorld(i Index) r3.Vec {
	return r3.Vec{
		X: (float64(i.X)+0.5)*m.resolution + m.lower.X,
		Y: (float64(i.Y)+0.5)*m.resolution + m.lower.Y,
		Z: (float64(i.Z)+0.5)*m.resolution + m.lower.Z,
	}
}

// Snap rounds p to the centre of the cell containing it.
func (m *VoxelMap) Snap(p r3.Vec) r3.Vec {
	return m.IndexToWorld(m.WorldToIndex(p))
}

// IsOccupied reports whether i is inside the map and occupied.
func (m *VoxelMap) IsOccupied(i Index) bool {
	return m.Contains(i) && m.data[m.offset(i)] == 1
}

// IsFree reports whether i is inside the map and free. Out of range cells
// are neither free nor occupied.
func (m *VoxelMap) IsFree(i Index) bool {
	return m.Contains(i) && m.data[m.offset(i)] == 0
}

// OccupiedCount returns the number of occupied cells.
func (m *VoxelMap) OccupiedCount() int {
	n := 0
	for _, v := range m.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Occupancy returns a copy of the raw occupancy array in offset order.
func (m *VoxelMap) Occupancy() []uint8 {
	return append([]uint8(nil), m.data...)
}

// LoadOccupancy replaces the occupancy array. Any non-zero byte is
// stored as occupied.
func (m *VoxelMap) LoadOccupancy(data []uint8) error {
	if len(data) != len(m.data) {
		return errors.New("occupancy size does not match map").
			WithType(ErrTypeInvalidMap).
			WithTag("expected", len(m.data)).
			WithTag("got", len(data))
	}

	for i, v := range data {
		if v != 0 {
			m.data[i] = 1
		} else {
			m.data[i] = 0
		}
	}
	return nil
}
