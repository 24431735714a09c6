package main

import (
	"math"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"voxel-planner/astar"
)

type config struct {
	Addr         string `cli:"" env:"VOXPLAN_ADDR"          help:"Listening address for planning requests."`
	AdminAddr    string `cli:"" env:"VOXPLAN_ADMIN_ADDR"    help:"Admin listening address."`
	MapFile      string `cli:"" env:"VOXPLAN_MAP_FILE"      help:"TOML file describing the map, the planner and the zones."`
	SnapshotFile string `cli:"" env:"VOXPLAN_SNAPSHOT_FILE" help:"File where map snapshots are saved and loaded from at startup."`
	LogLevel     string `cli:"" env:"VOXPLAN_LOG_LEVEL"     help:"Log level (debug|info|warning|error)."`
	LogIndent    bool   `cli:"" env:"VOXPLAN_LOG_INDENT"    help:"Indent logs."`
	Version      bool   `cli:"" env:"-"                     help:"Show version."`
	Help         bool   `cli:"" env:"-"                     help:"Show help."`
}

// mapConfig is the content of the TOML map file.
type mapConfig struct {
	Map     mapGeometry   `toml:"map"`
	Planner plannerConfig `toml:"planner"`
	Zones   zonesConfig   `toml:"zones"`
}

type mapGeometry struct {
	Lower      []float64 `toml:"lower"      json:"lower"`
	Upper      []float64 `toml:"upper"      json:"upper"`
	Resolution float64   `toml:"resolution" json:"resolution"`
	Cells      []int     `toml:"cells"      json:"cells,omitempty"`

	// MaxCells caps the grid. Only the map file sets it.
	MaxCells int `toml:"max_cells" json:"-"`
}

type plannerConfig struct {
	Heuristic               string   `toml:"heuristic"`
	TieBreaker              float64  `toml:"tie_breaker"`
	Workers                 int      `toml:"workers"`
	SlowSearch              duration `toml:"slow_search"`
	RejectOccupiedEndpoints bool     `toml:"reject_occupied_endpoints"`
}

type zonesConfig struct {
	Dir      string  `toml:"dir"`
	Simplify float64 `toml:"simplify"`
}

// duration decodes TOML strings such as "150ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// defaultMaxCells bounds the grid so every pooled planner's search state
// stays within a few hundred megabytes.
const defaultMaxCells = 1 << 22

func defaultMapConfig() mapConfig {
	return mapConfig{
		Map: mapGeometry{
			Lower:      []float64{0, 0, 0},
			Upper:      []float64{100, 100, 50},
			Resolution: 1,
			MaxCells:   defaultMaxCells,
		},
		Planner: plannerConfig{
			Heuristic:  astar.Diagonal.String(),
			TieBreaker: astar.DefaultTieBreaker,
			Workers:    runtime.NumCPU(),
			SlowSearch: duration{100 * time.Millisecond},
		},
	}
}

// loadMapConfig reads filename over the defaults. An empty filename keeps
// the defaults.
func loadMapConfig(filename string) (mapConfig, error) {
	conf := defaultMapConfig()
	if filename == "" {
		return conf, nil
	}

	if _, err := toml.DecodeFile(filename, &conf); err != nil {
		return mapConfig{}, errors.New("decoding map file failed").
			WithType(errTypeInvalidConfig).
			WithTag("filename", filename).
			Wrap(err)
	}
	return conf, nil
}

func validateMapConfig(conf mapConfig) error {
	if conf.Map.MaxCells <= 0 || conf.Map.MaxCells > astar.MaxCells {
		return errors.New("max cells out of range").
			WithType(errTypeInvalidConfig).
			WithTag("max_cells", conf.Map.MaxCells).
			WithTag("limit", astar.MaxCells)
	}

	if _, err := conf.Map.size(conf.Map.MaxCells); err != nil {
		return err
	}

	if _, err := astar.ParseHeuristic(conf.Planner.Heuristic); err != nil {
		return errors.New("invalid default heuristic").
			WithType(errTypeInvalidConfig).
			Wrap(err)
	}

	if !(conf.Planner.TieBreaker >= 1) || math.IsInf(conf.Planner.TieBreaker, 0) {
		return errors.New("tie breaker must be at least 1").
			WithType(errTypeInvalidConfig).
			WithTag("tie_breaker", conf.Planner.TieBreaker)
	}

	if conf.Planner.Workers <= 0 {
		return errors.New("at least one planner worker is required").
			WithType(errTypeInvalidConfig).
			WithTag("workers", conf.Planner.Workers)
	}

	if conf.Zones.Simplify < 0 {
		return errors.New("zone simplification must not be negative").
			WithType(errTypeInvalidConfig).
			WithTag("simplify", conf.Zones.Simplify)
	}
	return nil
}

// parse checks the shape of the geometry and returns it in map terms. The
// values themselves are checked by astar.NewVoxelMap.
func (g mapGeometry) parse() (lower, upper r3.Vec, cells astar.Index, err error) {
	if len(g.Lower) != 3 || len(g.Upper) != 3 {
		return r3.Vec{}, r3.Vec{}, astar.Index{}, errors.New("map bounds need 3 coordinates").
			WithType(errTypeInvalidConfig).
			WithTag("lower", g.Lower).
			WithTag("upper", g.Upper)
	}

	switch len(g.Cells) {
	case 0:
	case 3:
		cells = astar.Index{X: g.Cells[0], Y: g.Cells[1], Z: g.Cells[2]}
	default:
		return r3.Vec{}, r3.Vec{}, astar.Index{}, errors.New("map cell counts need 3 values").
			WithType(errTypeInvalidConfig).
			WithTag("cells", g.Cells)
	}

	lower = r3.Vec{X: g.Lower[0], Y: g.Lower[1], Z: g.Lower[2]}
	upper = r3.Vec{X: g.Upper[0], Y: g.Upper[1], Z: g.Upper[2]}
	return lower, upper, cells, nil
}

// size returns the cell counts of the grid, rejecting grids larger than
// maxCells.
func (g mapGeometry) size(maxCells int) (astar.Index, error) {
	lower, upper, cells, err := g.parse()
	if err != nil {
		return astar.Index{}, err
	}

	size, err := astar.GridSize(lower, upper, g.Resolution, cells)
	if err != nil {
		return astar.Index{}, err
	}

	if size.Volume() > maxCells {
		return astar.Index{}, errors.New("map has too many cells").
			WithType(astar.ErrTypeInvalidMap).
			WithTag("cells", size).
			WithTag("max_cells", maxCells)
	}
	return size, nil
}

// build allocates the map after checking its size against maxCells.
func (g mapGeometry) build(maxCells int) (*astar.VoxelMap, error) {
	size, err := g.size(maxCells)
	if err != nil {
		return nil, err
	}

	lower, upper, _, _ := g.parse()
	return astar.NewVoxelMap(lower, upper, g.Resolution, size)
}
