package astar

// Error types attached to errors returned by this package. Use
// errors.Type or errors.IsType from go-tooling to inspect them.
const (
	ErrTypeInvalidMap       = "invalid-map"
	ErrTypeInvalidHeuristic = "invalid-heuristic"
	ErrTypePrecondition     = "precondition"
	ErrTypeConcurrentSearch = "concurrent-search"
	ErrTypeOccupiedEndpoint = "occupied-endpoint"
)
