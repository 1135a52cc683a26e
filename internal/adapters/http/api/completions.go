package api

import (
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CompletionsHandler records questionnaire completions.
type CompletionsHandler struct {
	deps CompletionRecorder
}

// NewCompletionsHandler creates a new completions handler.
func NewCompletionsHandler(deps CompletionRecorder) *CompletionsHandler {
	return &CompletionsHandler{deps: deps}
}

// completionRequest mirrors the OpenAPI schema for POST /api/instruments/{path}/completions.
type completionRequest struct {
	ClientType *int `json:"client_type"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostCompletion handles POST /api/instruments/{path}/completions requests.
func (h *CompletionsHandler) HandlePostCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.ClientType == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: client_type", ErrMissingField))
		return
	}

	if err := h.deps.RecordCompletion(r.Context(), chi.URLParam(r, "path"), *req.ClientType, origin(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded"})
}

// origin returns the client address without its port. RemoteAddr is already
// rewritten by RealIP when the request came through a proxy.
func origin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
