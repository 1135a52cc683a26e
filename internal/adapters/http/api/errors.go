package api

import (
	"errors"
	"net/http"

	"github.com/okian/psyscale/internal/adapters/repository"
	service "github.com/okian/psyscale/internal/app"
	"github.com/okian/psyscale/internal/domain/model"
	"github.com/okian/psyscale/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingField  = errors.New("missing required field")
	ErrStoreFailure  = errors.New("completion store failure")
	ErrServiceBusy   = errors.New("service busy, retry later")
	ErrInternalError = errors.New("internal error")
)

// Error codes returned in the "code" field of error bodies.
const (
	codeBadRequest        = "bad_request"
	codeInvalidClientType = "invalid_client_type"
	codeUnknownInstrument = "unknown_instrument"
	codeScoreOutOfRange   = "score_out_of_range"
	codeScoreOutOfDomain  = "score_out_of_domain"
	codeBusy              = "busy"
	codeStorageError      = "storage_error"
	codeInternalError     = "internal_error"
)

// writeServiceError maps a service error to its status and code. Storage
// causes are not echoed to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownInstrumentPath):
		writeError(w, http.StatusNotFound, codeUnknownInstrument, err)
	case errors.Is(err, model.ErrInvalidClientType):
		writeError(w, http.StatusBadRequest, codeInvalidClientType, err)
	case errors.Is(err, service.ErrRawScoreOutOfRange):
		writeError(w, http.StatusBadRequest, codeScoreOutOfRange, err)
	case errors.Is(err, scoring.ErrScoreOutOfDomain):
		writeError(w, http.StatusUnprocessableEntity, codeScoreOutOfDomain, err)
	case errors.Is(err, repository.ErrPoolExhausted), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, codeBusy, ErrServiceBusy)
	case errors.Is(err, repository.ErrStorage):
		writeError(w, http.StatusInternalServerError, codeStorageError, ErrStoreFailure)
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, ErrInternalError)
	}
}
