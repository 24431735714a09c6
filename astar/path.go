package astar

import (
	"slices"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Path returns the cell centres of the last successful search, from start
// to goal, one waypoint per grid step.
func (p *Planner) Path() ([]r3.Vec, error) {
	if p.busy.Load() {
		return nil, errors.New("planner is searching").
			WithType(ErrTypeConcurrentSearch)
	}
	if p.terminal == nil {
		return nil, errors.New("no successful search to reconstruct a path from").
			WithType(ErrTypePrecondition)
	}

	// The start is the only reached node without parent, its G is 0.
	path := make([]r3.Vec, 0, 64)
	for n := p.terminal; ; n = p.nodes.at(n.Parent) {
		path = append(path, n.Coord)
		if n.Parent == noParent {
			break
		}
		if len(path) > p.m.Len() {
			return nil, errors.New("parent chain does not reach the start").
				WithType(ErrTypePrecondition).
				WithTag("length", len(path))
		}
	}

	slices.Reverse(path)
	return path, nil
}
