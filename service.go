package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"voxel-planner/astar"
)

type routeRequest struct {
	Start          Point            `json:"start"`
	Goal           Point            `json:"goal"`
	Heuristic      *astar.Heuristic `json:"heuristic,omitempty"`
	IncludeVisited bool             `json:"includeVisited,omitempty"`
}

type routeResponse struct {
	SearchID  string          `json:"searchId"`
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Heuristic astar.Heuristic `json:"heuristic"`
	Start     Point           `json:"start"`
	Goal      Point           `json:"goal"`
	Path      []Point         `json:"path"`
	Cost      float64         `json:"cost"`
	Distance  float64         `json:"distance"`
	Expanded  int             `json:"expanded"`
	Elapsed   string          `json:"elapsed"`
	Visited   []Point         `json:"visited,omitempty"`
}

type mapStatus struct {
	Lower      Point   `json:"lower"`
	Upper      Point   `json:"upper"`
	Resolution float64 `json:"resolution"`
	Cells      [3]int  `json:"cells"`
	Occupied   int     `json:"occupied"`
	Zones      int     `json:"zones"`
	Planners   int     `json:"planners"`
}

type serviceSettings struct {
	heuristic astar.Heuristic
	workers   int
	options   []astar.Option
	simplify  float64
	maxCells  int
}

// planningService owns the map and a pool of planners searching it.
// Searches share the map under a read lock; anything that writes occupancy
// or replaces the map takes the write lock and so waits for them.
type planningService struct {
	settings serviceSettings

	mu       sync.RWMutex
	m        *astar.VoxelMap
	planners chan *astar.Planner
	zones    []Zone
	index    *zoneIndex
}

func newPlanningService(conf mapConfig) (*planningService, error) {
	h, err := astar.ParseHeuristic(conf.Planner.Heuristic)
	if err != nil {
		return nil, err
	}

	opts := []astar.Option{
		astar.WithTieBreaker(conf.Planner.TieBreaker),
		astar.WithSlowSearchThreshold(conf.Planner.SlowSearch.Duration),
	}
	if conf.Planner.RejectOccupiedEndpoints {
		opts = append(opts, astar.WithRejectOccupiedEndpoints())
	}

	m, err := conf.Map.build(conf.Map.MaxCells)
	if err != nil {
		return nil, err
	}

	s := &planningService{
		settings: serviceSettings{
			heuristic: h,
			workers:   conf.Planner.Workers,
			options:   opts,
			simplify:  conf.Zones.Simplify,
			maxCells:  conf.Map.MaxCells,
		},
	}
	s.install(m, nil)
	return s, nil
}

// install replaces the map and rebuilds the planner pool. Callers hold the
// write lock unless the service is not shared yet.
func (s *planningService) install(m *astar.VoxelMap, zones []Zone) {
	s.m = m
	s.zones = zones
	s.index = newZoneIndex(zones, m.Bounds())

	s.planners = make(chan *astar.Planner, s.settings.workers)
	for i := 0; i < s.settings.workers; i++ {
		s.planners <- astar.NewPlanner(m, s.settings.options...)
	}
	instrumentObstacles(0, m.OccupiedCount())
}

// ResetMap replaces the map with an empty one of the given geometry. Zones
// are dropped. Grids above the configured cell limit are rejected.
func (s *planningService) ResetMap(g mapGeometry) error {
	m, err := g.build(s.settings.maxCells)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(m, nil)
	size := m.Size()
	logs.WithTag("cells", size).
		WithTag("resolution", m.Resolution()).
		Info("map reset")
	return nil
}

// AddObstacles marks the cells containing points and returns how many
// points addressed a cell of the map.
func (s *planningService) AddObstacles(points []r3.Vec) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, p := range points {
		if s.m.SetObstacle(p) {
			written++
		}
	}

	instrumentObstacles(written, s.m.OccupiedCount())
	return written
}

// ClearObstacles frees every cell, then rasterizes the zones again so they
// stay enforced.
func (s *planningService) ClearObstacles() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m.Clear()
	for i := range s.zones {
		s.zones[i].Rasterize(s.m)
	}

	occupied := s.m.OccupiedCount()
	instrumentObstacles(0, occupied)
	return occupied
}

// AddZones simplifies zones, merges them with the known ones and
// rasterizes the result. It returns the number of zones kept and the
// number of newly occupied cells.
func (s *planningService) AddZones(zones []Zone) (int, int) {
	zones = simplifyZones(zones, s.settings.simplify)

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Zone, 0, len(s.zones)+len(zones))
	all = append(all, s.zones...)
	all = append(all, zones...)
	all = dropContainedZones(all)

	marked := 0
	for i := range all {
		marked += all[i].Rasterize(s.m)
	}

	s.zones = all
	s.index = newZoneIndex(all, s.m.Bounds())
	instrumentObstacles(0, s.m.OccupiedCount())

	logs.WithTag("zones", len(all)).
		WithTag("vertices", vertexCount(all)).
		WithTag("cells", marked).
		Info("zones added")
	return len(all), marked
}

func (s *planningService) Zones() []Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Zone(nil), s.zones...)
}

// Route runs one search on a pooled planner.
func (s *planningService) Route(ctx context.Context, req routeRequest) (routeResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.settings.heuristic
	if req.Heuristic != nil {
		h = *req.Heuristic
	}

	start, goal := req.Start.Vec(), req.Goal.Vec()
	if err := s.checkEndpoint("start", start); err != nil {
		return routeResponse{}, err
	}
	if err := s.checkEndpoint("goal", goal); err != nil {
		return routeResponse{}, err
	}

	waitStart := time.Now()
	var p *astar.Planner
	select {
	case p = <-s.planners:
	case <-ctx.Done():
		return routeResponse{}, errors.New("waiting for a planner failed").
			WithType(errTypeCanceled).
			Wrap(ctx.Err())
	}
	defer func() { s.planners <- p }()
	instrumentPlannerWait(waitStart)

	res, err := p.Search(start, goal, h)
	if err != nil {
		return routeResponse{}, err
	}
	instrumentSearch(res)

	resp := routeResponse{
		SearchID:  uuid.NewString(),
		Success:   res.Found(),
		Heuristic: res.Heuristic,
		Start:     pointFromVec(res.Start),
		Goal:      pointFromVec(res.Goal),
		Path:      []Point{},
		Cost:      res.Cost,
		Distance:  res.Distance,
		Expanded:  res.Expanded,
		Elapsed:   res.Elapsed.String(),
	}

	if res.Found() {
		path, err := p.Path()
		if err != nil {
			return routeResponse{}, err
		}
		resp.Path = pointsFromVecs(path)
	} else {
		resp.Message = "goal is not reachable from start"
	}

	if req.IncludeVisited {
		visited, err := p.VisitedCells()
		if err != nil {
			return routeResponse{}, err
		}
		resp.Visited = pointsFromVecs(visited)
	}

	logs.WithTag("search_id", resp.SearchID).
		WithTag("outcome", res.Outcome.String()).
		WithTag("heuristic", h.String()).
		WithTag("waypoints", len(resp.Path)).
		WithTag("distance", res.Distance).
		Info("route computed")
	return resp, nil
}

func (s *planningService) checkEndpoint(name string, p r3.Vec) error {
	snapped := s.m.Snap(p)
	zones := s.index.ZonesAt(snapped)
	if len(zones) == 0 {
		return nil
	}

	return errors.Newf("%s is inside no-fly zone %s", name, strings.Join(zones, ", ")).
		WithType(errTypeEndpointInZone).
		WithTag(name, pointFromVec(snapped)).
		WithTag("zones", zones)
}

// Snapshot captures the current map and zones.
func (s *planningService) Snapshot() (snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newSnapshot(s.m, s.zones)
}

// Restore replaces the map and zones with the ones held by snap.
func (s *planningService) Restore(snap snapshot) error {
	m, zones, err := snap.restore(s.settings.maxCells)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(m, zones)
	return nil
}

func (s *planningService) Status() mapStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.m.Bounds()
	size := s.m.Size()
	return mapStatus{
		Lower:      pointFromVec(b.Min),
		Upper:      pointFromVec(b.Max),
		Resolution: s.m.Resolution(),
		Cells:      [3]int{size.X, size.Y, size.Z},
		Occupied:   s.m.OccupiedCount(),
		Zones:      len(s.zones),
		Planners:   s.settings.workers,
	}
}
