package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/psyscale/internal/domain/types"
)

// StatisticsHandler serves completion counts.
type StatisticsHandler struct {
	deps StatisticsReader
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(deps StatisticsReader) *StatisticsHandler {
	return &StatisticsHandler{deps: deps}
}

type allStatisticsResponse struct {
	Statistics map[string]uint64 `json:"statistics"`
}

// HandleAll handles GET /api/statistics requests.
func (h *StatisticsHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.AllStatistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allStatisticsResponse{Statistics: types.ByName(all)})
}

// HandleOne handles GET /api/statistics/{path} requests.
func (h *StatisticsHandler) HandleOne(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Statistics(r.Context(), chi.URLParam(r, "path"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
