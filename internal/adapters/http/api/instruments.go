package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/psyscale/internal/domain/instrument"
)

// InstrumentsHandler serves the catalog and score classification.
type InstrumentsHandler struct {
	deps InstrumentReader
}

// NewInstrumentsHandler creates a new instruments handler.
func NewInstrumentsHandler(deps InstrumentReader) *InstrumentsHandler {
	return &InstrumentsHandler{deps: deps}
}

type instrumentResponse struct {
	ID      int    `json:"id"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Warning string `json:"warning,omitempty"`
}

// HandleList handles GET /api/instruments requests.
func (h *InstrumentsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	all := h.deps.Instruments()
	out := make([]instrumentResponse, 0, len(all))
	for _, in := range all {
		out = append(out, instrumentResponse{ID: in.ID, Path: in.Path, Name: in.Name, Warning: in.Warning})
	}
	writeJSON(w, http.StatusOK, out)
}

type classifyRequest struct {
	Score *int `json:"score"`
}

type classifyResponse struct {
	Instrument      string              `json:"instrument"`
	RawScore        int                 `json:"raw_score"`
	Score           int                 `json:"score"`
	Severity        instrument.Severity `json:"severity"`
	Advice          string              `json:"advice"`
	Symptom         string              `json:"symptom"`
	CriticalWarning string              `json:"critical_warning,omitempty"`
}

// HandleClassify handles POST /api/instruments/{path}/classify requests.
func (h *InstrumentsHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")

	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: score", ErrMissingField))
		return
	}

	res, err := h.deps.Classify(r.Context(), path, *req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, classifyResponse{
		Instrument:      path,
		RawScore:        res.RawScore,
		Score:           res.Score,
		Severity:        res.Bucket.Severity,
		Advice:          res.Bucket.Advice,
		Symptom:         res.Bucket.Symptom,
		CriticalWarning: res.Bucket.CriticalWarning,
	})
}
