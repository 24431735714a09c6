package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// simplifyZones reduces footprint complexity with Douglas-Peucker. A zone
// whose footprint would collapse keeps its original footprint.
func simplifyZones(zones []Zone, epsilon float64) []Zone {
	if epsilon <= 0 {
		return zones
	}

	dp := simplify.DouglasPeucker(epsilon)
	simplified := make([]Zone, len(zones))
	for i, z := range zones {
		simplified[i] = z

		fp := dp.MultiPolygon(z.Footprint.Clone())
		if len(fp) != len(z.Footprint) || !validFootprint(fp) {
			continue
		}
		simplified[i].Footprint = fp
	}
	return simplified
}

func validFootprint(fp orb.MultiPolygon) bool {
	for _, p := range fp {
		// A closed ring needs its first point repeated.
		if len(p) == 0 || len(p[0]) < 4 {
			return false
		}
	}
	return true
}

func vertexCount(zones []Zone) int {
	n := 0
	for _, z := range zones {
		for _, p := range z.Footprint {
			for _, r := range p {
				n += len(r)
			}
		}
	}
	return n
}
