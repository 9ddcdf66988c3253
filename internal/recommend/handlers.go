package recommend

import (
	"encoding/json"
	"net/http"

	"github.com/mobilcari/mobil-cari/internal/bus"
	apperrors "github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/pkg/security"
	"github.com/mobilcari/mobil-cari/internal/session"
)

// Handler provides HTTP handlers for recommendation operations.
type Handler struct {
	svc      *Service
	sessions session.Store
	bus      bus.Bus
	log      *logger.Logger
}

// NewHandler creates a new recommendation handler. sessions may be nil,
// which disables cross-request exclusion tracking. eventBus may be nil,
// which disables answer events.
func NewHandler(svc *Service, sessions session.Store, eventBus bus.Bus, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		bus:      eventBus,
		log:      log,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// HandleRecommend handles POST /api/recommend.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{
			Error: "method not allowed",
			Code:  apperrors.CodeInvalidRequest,
		})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body: "+err.Error()))
		return
	}

	req.Query = security.SanitizeQuery(req.Query)
	if err := security.ValidateQuery(req.Query); err != nil {
		apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
		return
	}
	if err := security.ValidateSessionID(req.SessionID); err != nil {
		apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
		return
	}

	// Session-tracked names extend the explicit exclusion list.
	if h.sessions != nil && req.SessionID != "" {
		shown, err := h.sessions.Shown(r.Context(), req.SessionID)
		if err != nil {
			h.log.Warn("Session lookup failed", "session_id", req.SessionID, "error", err)
		} else {
			req.Exclude = append(req.Exclude, shown...)
		}
	}

	resp, err := h.svc.Recommend(r.Context(), req)
	if err != nil {
		h.log.WithError(err).Error("Recommendation failed", "query", security.SanitizeForLog(req.Query))
		apperrors.WriteError(w, err)
		return
	}

	if h.sessions != nil && req.SessionID != "" {
		names := make([]string, 0, len(resp.Results))
		for _, res := range resp.Results {
			names = append(names, res.Name)
		}
		if err := h.sessions.AddShown(r.Context(), req.SessionID, names); err != nil {
			h.log.Warn("Session update failed", "session_id", req.SessionID, "error", err)
		}
	}

	if h.bus != nil {
		event := bus.NewEvent(bus.TopicRecommendAnswered, "recommend", map[string]any{
			"query":    resp.Query,
			"match":    resp.Match,
			"results":  len(resp.Results),
			"degraded": resp.Degraded,
		})
		if err := h.bus.Publish(r.Context(), bus.TopicRecommendAnswered, event); err != nil {
			h.log.Warn("Publishing answer event failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
