package astar

import (
	"math"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Heuristic selects the distance estimate used to order the open set.
type Heuristic uint8

const (
	Manhattan Heuristic = iota
	Euclidean
	Diagonal
	Dijkstra
)

// DefaultTieBreaker inflates every estimate by 5%. It biases the search
// towards the goal at the price of optimality: with an admissible and
// consistent base estimate the returned cost stays within 1.05 of the
// optimum. Use WithTieBreaker(1) to keep strict optimality.
const DefaultTieBreaker = 1.05

var (
	sqrt2 = math.Sqrt2
	sqrt3 = math.Sqrt(3)
)

var heuristicNames = [...]string{
	Manhattan: "Manhattan",
	Euclidean: "Euclidean",
	Diagonal:  "Diagonal",
	Dijkstra:  "Dijkstra",
}

// heuristicFuncs take absolute per-axis index differences.
var heuristicFuncs = [...]func(dx, dy, dz float64) float64{
	Manhattan: func(dx, dy, dz float64) float64 {
		return dx + dy + dz
	},
	Euclidean: func(dx, dy, dz float64) float64 {
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	},
	Diagonal: func(dx, dy, dz float64) float64 {
		lo := math.Min(dx, math.Min(dy, dz))
		hi := math.Max(dx, math.Max(dy, dz))
		mid := dx + dy + dz - lo - hi
		return dx + dy + dz - (3-sqrt3)*lo - (2-sqrt2)*(mid-lo)
	},
	Dijkstra: func(dx, dy, dz float64) float64 {
		return 0
	},
}

func (h Heuristic) String() string {
	if !h.Valid() {
		return "Unknown"
	}
	return heuristicNames[h]
}

// Valid reports whether h is one of the declared heuristics.
func (h Heuristic) Valid() bool {
	return int(h) < len(heuristicFuncs)
}

// ParseHeuristic returns the heuristic named s, ignoring case.
func ParseHeuristic(s string) (Heuristic, error) {
	for h, name := range heuristicNames {
		if strings.EqualFold(name, s) {
			return Heuristic(h), nil
		}
	}
	return 0, errors.New("unknown heuristic").
		WithType(ErrTypeInvalidHeuristic).
		WithTag("heuristic", s)
}

// MarshalText implements encoding.TextMarshaler.
func (h Heuristic) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, errors.New("unknown heuristic").
			WithType(ErrTypeInvalidHeuristic).
			WithTag("heuristic", int(h))
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Heuristic) UnmarshalText(text []byte) error {
	v, err := ParseHeuristic(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Distance returns the plain estimate between two cells, in cells.
func (h Heuristic) Distance(a, b Index) float64 {
	return heuristicFuncs[h](
		math.Abs(float64(a.X-b.X)),
		math.Abs(float64(a.Y-b.Y)),
		math.Abs(float64(a.Z-b.Z)),
	)
}
