// Package astar finds collision-free paths through a voxelized 3D volume.
//
// A VoxelMap stores occupancy for a box split into cubic cells. A Planner
// owns one search record per cell and runs 26-connected A* between the cells
// containing two world points:
//
//	m, err := astar.NewVoxelMap(lower, upper, 0.2, astar.Index{})
//	m.SetObstacle(p)
//	planner := astar.NewPlanner(m)
//	res, err := planner.Search(start, goal, astar.Diagonal)
//	if res.Found() {
//		path, _ := planner.Path()
//	}
//
// Estimates are inflated by DefaultTieBreaker, so Manhattan, Euclidean and
// Diagonal searches trade strict optimality for fewer expansions. Dijkstra,
// or WithTieBreaker(1) with Euclidean or Diagonal, returns optimal paths.
package astar
