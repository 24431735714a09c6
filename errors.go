package main

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"voxel-planner/astar"
)

const (
	errTypeInvalidRequest = "invalid-request"
	errTypeInvalidZone    = "invalid-zone"
	errTypeInvalidConfig  = "invalid-config"
	errTypeEndpointInZone = "endpoint-in-zone"
	errTypeSnapshot       = "snapshot"
	errTypeCanceled       = "canceled"
)

// statusCode maps an error to the HTTP status reported to clients.
func statusCode(err error) int {
	switch errors.Type(err) {
	case errTypeInvalidRequest,
		errTypeInvalidZone,
		errTypeInvalidConfig,
		errTypeEndpointInZone,
		astar.ErrTypeInvalidMap,
		astar.ErrTypeInvalidHeuristic,
		astar.ErrTypeOccupiedEndpoint:
		return http.StatusBadRequest

	case astar.ErrTypeConcurrentSearch,
		errTypeCanceled:
		return http.StatusServiceUnavailable

	case astar.ErrTypePrecondition:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
