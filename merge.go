package main

import (
	"github.com/paulmach/orb/planar"
)

// dropContainedZones removes zones that lie fully inside another zone.
// Rasterizing them again would not mark any new cell.
func dropContainedZones(zones []Zone) []Zone {
	if len(zones) <= 1 {
		return zones
	}

	contained := make([]bool, len(zones))
	for i := range zones {
		if contained[i] {
			continue
		}

		for j := range zones {
			if i == j || contained[j] {
				continue
			}

			if isZoneContainedIn(&zones[i], &zones[j]) {
				contained[i] = true
				break
			}

			if isZoneContainedIn(&zones[j], &zones[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]Zone, 0, len(zones))
	for i := range zones {
		if !contained[i] {
			result = append(result, zones[i])
		}
	}
	return result
}

// isZoneContainedIn checks whether the height range of a is within the one
// of b and the footprint of a lies inside the footprint of b. Footprints of
// b with holes are never considered containers.
func isZoneContainedIn(a, b *Zone) bool {
	if a.MinZ < b.MinZ || a.MaxZ > b.MaxZ {
		return false
	}

	if !boundContained(a.Footprint.Bound(), b.Footprint.Bound()) {
		return false
	}

	for _, p := range b.Footprint {
		if len(p) > 1 {
			return false
		}
	}

	for _, p := range a.Footprint {
		for _, v := range p[0] {
			if !planar.MultiPolygonContains(b.Footprint, v) {
				return false
			}
		}
	}

	// All vertices inside is not enough when b is concave.
	for _, pa := range a.Footprint {
		for _, pb := range b.Footprint {
			if ringsCross(pa[0], pb[0]) {
				return false
			}
		}
	}
	return true
}
