package server

import (
	"net/http"
	"time"

	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/ml"
	"github.com/mobilcari/mobil-cari/internal/qdrant"
)

// HealthHandler reports liveness and dependency status.
type HealthHandler struct {
	data    *dataset.Manager
	ml      ml.Service
	qdrant  *qdrant.Client
	version string
}

// NewHealthHandler creates a health handler. ml and qdrant may be nil
// when the similarity path is disabled.
func NewHealthHandler(data *dataset.Manager, mlSvc ml.Service, qc *qdrant.Client, version string) *HealthHandler {
	return &HealthHandler{
		data:    data,
		ml:      mlSvc,
		qdrant:  qc,
		version: version,
	}
}

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status  string          `json:"status"`
	Version string          `json:"version"`
	Dataset DatasetStatus   `json:"dataset"`
	ML      ComponentStatus `json:"ml"`
	Qdrant  ComponentStatus `json:"qdrant"`
}

// DatasetStatus describes the loaded catalog.
type DatasetStatus struct {
	Loaded   bool   `json:"loaded"`
	Count    int    `json:"count"`
	Source   string `json:"source,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// ComponentStatus describes one optional dependency.
type ComponentStatus struct {
	Enabled bool   `json:"enabled"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HandleHealth handles GET /api/health. The endpoint returns 200 as long
// as the catalog is loaded; unhealthy optional dependencies only mark the
// status degraded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}

	if snap := h.data.Snapshot(); snap != nil {
		resp.Dataset = DatasetStatus{
			Loaded:   true,
			Count:    snap.Len(),
			Source:   snap.Source(),
			LoadedAt: snap.LoadedAt().UTC().Format(time.RFC3339),
		}
	}

	if h.ml != nil {
		status := h.ml.Health(ctx)
		resp.ML = ComponentStatus{
			Enabled: true,
			Healthy: status.Healthy,
			Error:   status.Error,
		}
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}

	if h.qdrant != nil {
		resp.Qdrant.Enabled = true
		if err := h.qdrant.HealthCheck(ctx); err != nil {
			resp.Qdrant.Error = err.Error()
			resp.Status = "degraded"
		} else {
			resp.Qdrant.Healthy = true
		}
	}

	if !resp.Dataset.Loaded {
		resp.Status = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
