package astar

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Status is the search state of a cell.
type Status uint8

const (
	Unvisited Status = iota
	Open
	Closed
)

func (s Status) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// noParent marks a node without predecessor.
const noParent = -1

// Node is the search record of one cell. Index, Coord and id never change
// after the store is built.
type Node struct {
	Index  Index
	Coord  r3.Vec
	Status Status
	G      float64 // best known cost from start, in cells
	F      float64 // G + heuristic
	Parent int     // offset of the predecessor or noParent

	id int
}

func (n *Node) reset() {
	n.Status = Unvisited
	n.G = math.Inf(1)
	n.F = math.Inf(1)
	n.Parent = noParent
}

// NodeStore holds one Node per cell of a VoxelMap. Records are allocated
// once and reused by every search.
type NodeStore struct {
	m     *VoxelMap
	nodes []Node
}

// NewNodeStore allocates a record for every cell of m.
func NewNodeStore(m *VoxelMap) *NodeStore {
	s := &NodeStore{
		m:     m,
		nodes: make([]Node, m.Len()),
	}

	for id := range s.nodes {
		idx := m.indexAt(id)
		n := &s.nodes[id]
		n.Index = idx
		n.Coord = m.IndexToWorld(idx)
		n.id = id
		n.reset()
	}
	return s
}

// Reset puts every record back to Unvisited with infinite scores.
func (s *NodeStore) Reset() {
	for id := range s.nodes {
		s.nodes[id].reset()
	}
}

// Get returns the record of cell i, or nil when i is outside the map.
func (s *NodeStore) Get(i Index) *Node {
	if !s.m.Contains(i) {
		return nil
	}
	return &s.nodes[s.m.offset(i)]
}

func (s *NodeStore) at(id int) *Node {
	return &s.nodes[id]
}

// Closed returns the centres of all Closed cells in offset order.
func (s *NodeStore) Closed() []r3.Vec {
	var coords []r3.Vec
	for id := range s.nodes {
		if s.nodes[id].Status == Closed {
			coords = append(coords, s.nodes[id].Coord)
		}
	}
	return coords
}
