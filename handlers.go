package main

import (
	"io"
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

type obstaclesRequest struct {
	Points []Point `json:"points"`
}

type obstaclesResponse struct {
	Written  int `json:"written"`
	Occupied int `json:"occupied"`
}

type zonesResponse struct {
	Zones int `json:"zones"`
	Cells int `json:"cells"`
}

type snapshotResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type handlers struct {
	service      *planningService
	snapshotFile string
}

func (h *handlers) register(mux *http.ServeMux) {
	mux.HandleFunc("/map", corsMiddleware(allowMethods(h.handleMap, http.MethodPost)))
	mux.HandleFunc("/obstacles", corsMiddleware(allowMethods(h.handleObstacles, http.MethodPost, http.MethodDelete)))
	mux.HandleFunc("/zones", corsMiddleware(allowMethods(h.handleZones, http.MethodGet, http.MethodPost)))
	mux.HandleFunc("/route", corsMiddleware(allowMethods(h.handleRoute, http.MethodPost)))
	mux.HandleFunc("/snapshot", corsMiddleware(allowMethods(h.handleSnapshot, http.MethodPost)))
	mux.HandleFunc("/health", corsMiddleware(allowMethods(h.handleHealth, http.MethodGet)))
}

// POST /map - Replace the map with an empty one.
func (h *handlers) handleMap(w http.ResponseWriter, r *http.Request) {
	var g mapGeometry
	if err := decodeBody(w, r, &g); err != nil {
		writeError(w, err, 0)
		return
	}

	if err := h.service.ResetMap(g); err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Status())
}

// POST /obstacles - Mark the cells containing points.
// DELETE /obstacles - Free every cell not covered by a zone.
func (h *handlers) handleObstacles(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		writeJSON(w, http.StatusOK, obstaclesResponse{
			Occupied: h.service.ClearObstacles(),
		})
		return
	}

	var req obstaclesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err, 0)
		return
	}

	points := make([]r3.Vec, len(req.Points))
	for i, p := range req.Points {
		points[i] = p.Vec()
	}

	written := h.service.AddObstacles(points)
	writeJSON(w, http.StatusOK, obstaclesResponse{
		Written:  written,
		Occupied: h.service.Status().Occupied,
	})
}

// GET /zones - Current zones as a GeoJSON feature collection.
// POST /zones - Add the zones of a GeoJSON feature collection.
func (h *handlers) handleZones(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, zonesToFeatureCollection(h.service.Zones()))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, errors.New("reading zones failed").
			WithType(errTypeInvalidRequest).
			Wrap(err), 0)
		return
	}

	zones, err := parseZones("request", data)
	if err != nil {
		writeError(w, err, 0)
		return
	}

	kept, cells := h.service.AddZones(zones)
	writeJSON(w, http.StatusOK, zonesResponse{
		Zones: kept,
		Cells: cells,
	})
}

// POST /route - Search a path between two points.
func (h *handlers) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeBody(w, r, &req); err != nil {
		instrumentSearchError(err)
		writeError(w, err, 0)
		return
	}

	res, err := h.service.Route(r.Context(), req)
	if err != nil {
		instrumentSearchError(err)
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /snapshot - Save the map to the snapshot file.
func (h *handlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshotFile == "" {
		writeError(w, errors.New("no snapshot file configured").
			WithType(errTypeInvalidRequest), 0)
		return
	}

	snap, err := h.service.Snapshot()
	if err != nil {
		writeError(w, err, 0)
		return
	}

	if err := saveSnapshot(snap, h.snapshotFile); err != nil {
		writeError(w, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		ID:       snap.ID,
		Filename: h.snapshotFile,
	})
}

// GET /health - Map geometry and occupancy.
func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status())
}
