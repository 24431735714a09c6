package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"

	"voxel-planner/astar"
)

// Zone is a no-fly volume: a ground footprint extruded between two
// heights. Missing heights leave the prism open on that side.
type Zone struct {
	Name      string
	Footprint orb.MultiPolygon
	MinZ      float64
	MaxZ      float64
}

// Contains reports whether p lies inside the zone. Points on the boundary
// are inside.
func (z *Zone) Contains(p r3.Vec) bool {
	if !(p.Z >= z.MinZ && p.Z <= z.MaxZ) {
		return false
	}
	return planar.MultiPolygonContains(z.Footprint, footprint(p))
}

// Rasterize marks every cell of m whose centre lies inside the zone and
// returns how many cells became occupied.
func (z *Zone) Rasterize(m *astar.VoxelMap) int {
	b := z.Footprint.Bound()
	lo := m.WorldToIndex(r3.Vec{X: b.Min[0], Y: b.Min[1], Z: z.MinZ})
	hi := m.WorldToIndex(r3.Vec{X: b.Max[0], Y: b.Max[1], Z: z.MaxZ})

	marked := 0
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			column := m.IndexToWorld(astar.Index{X: x, Y: y})
			if !planar.MultiPolygonContains(z.Footprint, footprint(column)) {
				continue
			}

			for zi := lo.Z; zi <= hi.Z; zi++ {
				idx := astar.Index{X: x, Y: y, Z: zi}
				c := m.IndexToWorld(idx)
				if c.Z < z.MinZ || c.Z > z.MaxZ || !m.IsFree(idx) {
					continue
				}
				m.SetObstacleIndex(idx)
				marked++
			}
		}
	}
	return marked
}

func (z *Zone) feature() *geojson.Feature {
	f := geojson.NewFeature(z.Footprint)
	f.Properties["name"] = z.Name
	if !math.IsInf(z.MinZ, 0) {
		f.Properties["minZ"] = z.MinZ
	}
	if !math.IsInf(z.MaxZ, 0) {
		f.Properties["maxZ"] = z.MaxZ
	}
	return f
}

func zonesToFeatureCollection(zones []Zone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range zones {
		fc.Append(zones[i].feature())
	}
	return fc
}

// parseZones reads the Polygon and MultiPolygon features of a GeoJSON
// feature collection. Features of other geometry types are skipped.
// Unnamed features are named after source and their position.
func parseZones(source string, data []byte) ([]Zone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.New("parsing geojson failed").
			WithType(errTypeInvalidZone).
			WithTag("source", source).
			Wrap(err)
	}

	zones := make([]Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		var fp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			fp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			fp = g
		default:
			logs.WithTag("source", source).
				WithTag("feature", i).
				WithTag("geometry", fmt.Sprintf("%T", f.Geometry)).
				Debug("skipping feature without polygon footprint")
			continue
		}

		z, err := zoneFromFeature(f, fp)
		if err != nil {
			return nil, errors.New("invalid zone feature").
				WithType(errTypeInvalidZone).
				WithTag("source", source).
				WithTag("feature", i).
				Wrap(err)
		}
		if z.Name == "" {
			z.Name = fmt.Sprintf("%s#%d", source, i)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

func zoneFromFeature(f *geojson.Feature, fp orb.MultiPolygon) (Zone, error) {
	for _, p := range fp {
		if len(p) == 0 || len(p[0]) < 3 {
			return Zone{}, errors.New("polygon outer ring needs at least 3 points").
				WithType(errTypeInvalidZone)
		}
	}

	minZ, err := heightProperty(f.Properties, "minZ", math.Inf(-1))
	if err != nil {
		return Zone{}, err
	}
	maxZ, err := heightProperty(f.Properties, "maxZ", math.Inf(1))
	if err != nil {
		return Zone{}, err
	}
	if minZ > maxZ {
		return Zone{}, errors.New("zone minZ is above maxZ").
			WithType(errTypeInvalidZone).
			WithTag("minZ", minZ).
			WithTag("maxZ", maxZ)
	}

	name, _ := f.Properties["name"].(string)
	if name == "" {
		name, _ = f.ID.(string)
	}

	return Zone{
		Name:      name,
		Footprint: fp,
		MinZ:      minZ,
		MaxZ:      maxZ,
	}, nil
}

func heightProperty(props geojson.Properties, key string, def float64) (float64, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return def, nil
	}

	h, ok := v.(float64)
	if !ok || math.IsNaN(h) {
		return 0, errors.New("zone height is not a number").
			WithType(errTypeInvalidZone).
			WithTag("property", key).
			WithTag("value", fmt.Sprint(v))
	}
	return h, nil
}

// loadZonesFromDir loads every .geojson file of dir. Files that cannot be
// read or parsed are reported and skipped.
func loadZonesFromDir(dir string) ([]Zone, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, errors.New("listing zone files failed").
			WithTag("dir", dir).
			Wrap(err)
	}

	var zones []Zone
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logs.Warn(errors.New("reading zone file failed").
				WithTag("file", file).
				Wrap(err))
			continue
		}

		loaded, err := parseZones(filepath.Base(file), data)
		if err != nil {
			logs.Warn(err)
			continue
		}

		logs.WithTag("file", filepath.Base(file)).
			WithTag("zones", len(loaded)).
			Info("zones loaded")
		zones = append(zones, loaded...)
	}
	return zones, nil
}
