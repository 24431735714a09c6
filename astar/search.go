package astar

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Outcome tells whether a search reached its goal.
type Outcome uint8

const (
	Failure Outcome = iota
	Success
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Result describes a finished search.
type Result struct {
	Outcome   Outcome
	Heuristic Heuristic
	Start     r3.Vec // snapped start
	Goal      r3.Vec // snapped goal
	Cost      float64
	Distance  float64 // Cost scaled by the map resolution
	Expanded  int
	Elapsed   time.Duration
}

// Found reports whether the goal was reached.
func (r Result) Found() bool {
	return r.Outcome == Success
}

// Options defines planner behaviour.
type Options struct {
	TieBreaker              float64
	RejectOccupiedEndpoints bool
	SlowSearchThreshold     time.Duration
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTieBreaker sets the factor applied to every heuristic estimate. A
// factor of 1 disables the bias. Factors below 1 or not finite are replaced
// by 1.
func WithTieBreaker(factor float64) Option {
	return func(o *Options) { o.TieBreaker = factor }
}

// WithRejectOccupiedEndpoints makes Search fail with an error when the
// start or goal cell is occupied. By default such searches run.
func WithRejectOccupiedEndpoints() Option {
	return func(o *Options) { o.RejectOccupiedEndpoints = true }
}

// WithSlowSearchThreshold sets the duration above which a finished search
// is reported as a warning. Zero disables the warning.
func WithSlowSearchThreshold(d time.Duration) Option {
	return func(o *Options) { o.SlowSearchThreshold = d }
}

// Planner runs A* searches over a VoxelMap. It owns the per-cell search
// state, so a planner serves one search at a time. Several planners may
// share a map as long as nobody writes occupancy while they search.
type Planner struct {
	m     *VoxelMap
	nodes *NodeStore
	succ  successorGenerator
	open  openSet
	edges []Edge
	seq   uint64
	opts  Options

	busy     atomic.Bool
	searched bool
	terminal *Node
}

// NewPlanner allocates the search state for m.
func NewPlanner(m *VoxelMap, options ...Option) *Planner {
	opts := Options{
		TieBreaker:          DefaultTieBreaker,
		SlowSearchThreshold: 100 * time.Millisecond,
	}
	for _, o := range options {
		o(&opts)
	}
	if !(opts.TieBreaker >= 1) || math.IsInf(opts.TieBreaker, 1) {
		opts.TieBreaker = 1
	}

	nodes := NewNodeStore(m)
	return &Planner{
		m:     m,
		nodes: nodes,
		succ:  successorGenerator{m: m, nodes: nodes},
		edges: make([]Edge, 0, len(neighborOffsets)),
		opts:  opts,
	}
}

func (p *Planner) estimate(a, b Index, h Heuristic) float64 {
	return h.Distance(a, b) * p.opts.TieBreaker
}

func (p *Planner) push(n *Node) {
	p.seq++
	p.open.push(openEntry{f: n.F, seq: p.seq, node: n.id})
}

// Search looks for a path between the cells containing start and goal.
// An unreachable goal is reported through Result.Outcome; errors are
// reserved for misuse.
func (p *Planner) Search(start, goal r3.Vec, h Heuristic) (Result, error) {
	if !h.Valid() {
		return Result{}, errors.New("unknown heuristic").
			WithType(ErrTypeInvalidHeuristic).
			WithTag("heuristic", int(h))
	}

	if !p.busy.CompareAndSwap(false, true) {
		return Result{}, errors.New("planner is already searching").
			WithType(ErrTypeConcurrentSearch)
	}
	defer p.busy.Store(false)

	began := time.Now()
	p.nodes.Reset()
	p.open.reset()
	p.seq = 0
	p.searched = false
	p.terminal = nil

	startIdx := p.m.WorldToIndex(start)
	goalIdx := p.m.WorldToIndex(goal)
	res := Result{
		Outcome:   Failure,
		Heuristic: h,
		Start:     p.m.IndexToWorld(startIdx),
		Goal:      p.m.IndexToWorld(goalIdx),
	}

	if p.opts.RejectOccupiedEndpoints {
		if p.m.IsOccupied(startIdx) {
			return res, errors.New("start cell is occupied").
				WithType(ErrTypeOccupiedEndpoint).
				WithTag("start", res.Start)
		}
		if p.m.IsOccupied(goalIdx) {
			return res, errors.New("goal cell is occupied").
				WithType(ErrTypeOccupiedEndpoint).
				WithTag("goal", res.Goal)
		}
	}

	goalNode := p.nodes.Get(goalIdx)
	startNode := p.nodes.Get(startIdx)
	startNode.G = 0
	startNode.F = p.estimate(startIdx, goalIdx, h)
	startNode.Status = Open
	p.push(startNode)

	for p.open.Len() > 0 {
		entry := p.open.pop()
		current := p.nodes.at(entry.node)
		if current.Status != Open || entry.f != current.F {
			continue
		}

		current.Status = Closed
		res.Expanded++

		if current == goalNode {
			p.terminal = current
			res.Outcome = Success
			res.Cost = current.G
			break
		}

		p.edges = p.succ.successors(current, p.edges)
		for _, e := range p.edges {
			neighbor := e.To
			g := current.G + e.Cost

			if neighbor.Status == Open && g >= neighbor.G {
				continue
			}

			neighbor.G = g
			neighbor.F = g + p.estimate(neighbor.Index, goalIdx, h)
			neighbor.Parent = current.id
			neighbor.Status = Open
			p.push(neighbor)
		}
	}

	p.searched = true
	res.Distance = res.Cost * p.m.resolution
	res.Elapsed = time.Since(began)
	p.logResult(res)
	return res, nil
}

func (p *Planner) logResult(res Result) {
	logs.WithTag("outcome", res.Outcome.String()).
		WithTag("heuristic", res.Heuristic.String()).
		WithTag("expanded", res.Expanded).
		WithTag("distance", res.Distance).
		WithTag("elapsed", res.Elapsed.String()).
		Debug("search finished")

	if p.opts.SlowSearchThreshold > 0 && res.Elapsed > p.opts.SlowSearchThreshold {
		logs.Warn(errors.New("search exceeded time threshold").
			WithTag("elapsed", res.Elapsed.String()).
			WithTag("threshold", p.opts.SlowSearchThreshold.String()).
			WithTag("expanded", res.Expanded).
			WithTag("heuristic", res.Heuristic.String()))
	}
}

// VisitedCells returns the centres of the cells closed by the last search.
func (p *Planner) VisitedCells() ([]r3.Vec, error) {
	if p.busy.Load() {
		return nil, errors.New("planner is searching").
			WithType(ErrTypeConcurrentSearch)
	}
	if !p.searched {
		return nil, errors.New("no search has completed").
			WithType(ErrTypePrecondition)
	}
	return p.nodes.Closed(), nil
}
