package narrative

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/pkg/security"
	"github.com/mobilcari/mobil-cari/internal/recommend"
)

// Handler provides the conversational question endpoint.
type Handler struct {
	svc *recommend.Service
	gen Generator
	log *logger.Logger
}

// NewHandler creates a narrative handler. gen may be nil, which always
// returns structured results without an answer.
func NewHandler(svc *recommend.Service, gen Generator, log *logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		gen: gen,
		log: log,
	}
}

// AskRequest is the JSON request body for a conversational question.
type AskRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// AskResponse pairs the generated answer with the structured results it
// was grounded on.
type AskResponse struct {
	Query   string                 `json:"query"`
	Answer  string                 `json:"answer,omitempty"`
	Results []recommend.Result     `json:"results"`
	Match   recommend.MatchQuality `json:"match"`

	// AnswerDegraded is true when the LLM was unavailable and only the
	// structured results are returned.
	AnswerDegraded bool `json:"answer_degraded,omitempty"`
}

// HandleAsk handles /api/tanya. POST takes a JSON body; GET takes the
// question in the pertanyaan query parameter.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest

	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("pertanyaan")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body: "+err.Error()))
			return
		}
	default:
		apperrors.WriteJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{
			Error: "method not allowed",
			Code:  apperrors.CodeInvalidRequest,
		})
		return
	}

	req.Query = security.SanitizeQuery(req.Query)
	if err := security.ValidateQuery(req.Query); err != nil {
		apperrors.WriteError(w, apperrors.ValidationError(err.Error()))
		return
	}

	rec, err := h.svc.Recommend(r.Context(), recommend.Request{
		Query: req.Query,
		TopK:  req.TopK,
	})
	if err != nil {
		h.log.WithError(err).Error("Recommendation failed", "query", security.SanitizeForLog(req.Query))
		apperrors.WriteError(w, err)
		return
	}

	resp := AskResponse{
		Query:   req.Query,
		Results: rec.Results,
		Match:   rec.Match,
	}

	if h.gen != nil {
		answer, err := h.gen.Answer(r.Context(), req.Query, rec.Results)
		if err != nil {
			h.log.Warn("Narrative generation failed, returning structured results", "error", err)
			resp.AnswerDegraded = true
		} else {
			resp.Answer = answer
		}
	} else {
		resp.AnswerDegraded = true
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
