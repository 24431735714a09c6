package main

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"voxel-planner/astar"
)

const (
	errTypeLabel   = "error_type"
	outcomeLabel   = "outcome"
	heuristicLabel = "heuristic"
)

var (
	searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxplan_searches",
		Help: "The number of finished searches.",
	}, []string{
		outcomeLabel,
		heuristicLabel,
	})

	searchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxplan_search_errors",
		Help: "The errors that occured while handling a route request.",
	}, []string{
		errTypeLabel,
	})

	searchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "voxplan_search_latency",
		Help: "The time spent searching, in seconds.",
	}, []string{
		heuristicLabel,
	})

	expandedNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxplan_expanded_nodes",
		Help:    "The number of cells closed by a search.",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	}, []string{
		heuristicLabel,
	})

	obstacleWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxplan_obstacle_writes",
		Help: "The number of obstacle points written to the map.",
	})

	plannerWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "voxplan_planner_wait",
		Help: "The time a route request waited for a free planner, in seconds.",
	})

	occupiedCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxplan_occupied_cells",
		Help: "The number of occupied cells in the current map.",
	})
)

func instrumentSearch(res astar.Result) {
	h := res.Heuristic.String()

	searches.With(prometheus.Labels{
		outcomeLabel:   res.Outcome.String(),
		heuristicLabel: h,
	}).Inc()

	searchLatency.With(prometheus.Labels{
		heuristicLabel: h,
	}).Observe(res.Elapsed.Seconds())

	expandedNodes.With(prometheus.Labels{
		heuristicLabel: h,
	}).Observe(float64(res.Expanded))
}

func instrumentSearchError(err error) {
	searchErrors.
		With(prometheus.Labels{
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}

func instrumentObstacles(written int, occupied int) {
	obstacleWrites.Add(float64(written))
	occupiedCells.Set(float64(occupied))
}

func instrumentPlannerWait(start time.Time) {
	plannerWait.Observe(time.Since(start).Seconds())
}
