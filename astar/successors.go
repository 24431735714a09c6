package astar

import "math"

// Edge connects the expanded node to one of its successors.
type Edge struct {
	To   *Node
	Cost float64 // Euclidean length of the step, in cells
}

type neighborOffset struct {
	delta Index
	cost  float64
}

// neighborOffsets lists the 26-connected moves in nested dx, dy, dz order.
var neighborOffsets = func() []neighborOffset {
	offsets := make([]neighborOffset, 0, 26)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, neighborOffset{
					delta: Index{dx, dy, dz},
					cost:  math.Sqrt(float64(dx*dx + dy*dy + dz*dz)),
				})
			}
		}
	}
	return offsets
}()

type successorGenerator struct {
	m     *VoxelMap
	nodes *NodeStore
}

// successors appends to edges the free, not yet closed neighbours of
// current and returns the extended slice.
func (g successorGenerator) successors(current *Node, edges []Edge) []Edge {
	edges = edges[:0]
	for _, o := range neighborOffsets {
		idx := current.Index.Add(o.delta)
		if !g.m.IsFree(idx) {
			continue
		}

		neighbor := g.nodes.at(g.m.offset(idx))
		if neighbor.Status == Closed {
			continue
		}
		edges = append(edges, Edge{To: neighbor, Cost: o.cost})
	}
	return edges
}
