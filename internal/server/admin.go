package server

import (
	"encoding/json"
	"net/http"

	"github.com/mobilcari/mobil-cari/internal/bus"
	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/index"
	apperrors "github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

// AdminHandler serves catalog and index management endpoints.
type AdminHandler struct {
	data     *dataset.Manager
	pipeline *index.Pipeline
	bus      bus.Bus
	log      *logger.Logger
}

// NewAdminHandler creates an admin handler. pipeline may be nil when the
// similarity path is disabled.
func NewAdminHandler(data *dataset.Manager, pipeline *index.Pipeline, eventBus bus.Bus, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		data:     data,
		pipeline: pipeline,
		bus:      eventBus,
		log:      log,
	}
}

// ReloadResponse reports the outcome of a catalog reload.
type ReloadResponse struct {
	Source    string `json:"source"`
	Count     int    `json:"count"`
	Reindexed bool   `json:"reindexed"`
}

// HandleReload handles POST /api/dataset/reload. With ?reindex=true the
// refreshed catalog is also re-embedded and upserted.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{
			Error: "method not allowed",
			Code:  apperrors.CodeInvalidRequest,
		})
		return
	}

	snap, err := h.data.Reload()
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	if err := h.bus.Publish(r.Context(), bus.TopicDatasetReloaded, bus.NewEvent(
		bus.TopicDatasetReloaded, "admin", map[string]any{
			"source": snap.Source(),
			"count":  snap.Len(),
		},
	)); err != nil {
		h.log.Warn("publishing reload event failed", "error", err)
	}

	resp := ReloadResponse{
		Source: snap.Source(),
		Count:  snap.Len(),
	}

	if r.URL.Query().Get("reindex") == "true" && h.pipeline != nil {
		if _, err := h.pipeline.Index(r.Context(), snap, true); err != nil {
			h.log.Warn("re-indexing after reload failed", "error", err)
		} else {
			resp.Reindexed = true
		}
	}

	h.log.Info("dataset reloaded", "source", resp.Source, "count", resp.Count, "reindexed", resp.Reindexed)
	writeJSON(w, http.StatusOK, resp)
}

// HandleIndex handles POST /api/index. With ?force=true the collection is
// rebuilt even when it already matches the catalog.
func (h *AdminHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{
			Error: "method not allowed",
			Code:  apperrors.CodeInvalidRequest,
		})
		return
	}

	if h.pipeline == nil {
		apperrors.WriteError(w, apperrors.ServiceUnavailableError("index"))
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := h.pipeline.Index(r.Context(), h.data.Snapshot(), force)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
