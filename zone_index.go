package main

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"
)

const queryTolerance = 1e-9

// zoneEntry wraps a zone for R-tree storage.
type zoneEntry struct {
	zone   *Zone
	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *zoneEntry) Bounds() rtreego.Rect {
	return e.bounds
}

// zoneIndex answers which zones contain a point.
type zoneIndex struct {
	tree *rtreego.Rtree
}

// newZoneIndex indexes zones by their 3D bounding box. Heights are clipped
// to box so every entry has finite bounds; zones whose height range misses
// box, or whose footprint has no area, are left out.
func newZoneIndex(zones []Zone, box r3.Box) *zoneIndex {
	tree := rtreego.NewTree(3, 25, 50)

	for i := range zones {
		z := &zones[i]
		minZ, maxZ := math.Max(z.MinZ, box.Min.Z), math.Min(z.MaxZ, box.Max.Z)
		if !(minZ < maxZ) {
			continue
		}

		b := z.Footprint.Bound()
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.Min[0], b.Min[1], minZ},
			rtreego.Point{b.Max[0], b.Max[1], maxZ},
		)
		if err != nil {
			continue
		}
		tree.Insert(&zoneEntry{zone: z, bounds: rect})
	}

	return &zoneIndex{tree: tree}
}

func (idx *zoneIndex) Len() int {
	return idx.tree.Size()
}

// ZonesAt returns the names of the zones containing p, sorted.
func (idx *zoneIndex) ZonesAt(p r3.Vec) []string {
	// Intersection is strict, a degenerate query would miss boundaries.
	query := rtreego.Point{p.X, p.Y, p.Z}.ToRect(queryTolerance)

	var names []string
	for _, item := range idx.tree.SearchIntersect(query) {
		z := item.(*zoneEntry).zone
		if z.Contains(p) {
			names = append(names, z.Name)
		}
	}
	sort.Strings(names)
	return names
}
