// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/psyscale/internal/domain/instrument"
	"github.com/okian/psyscale/internal/domain/scoring"
	"github.com/okian/psyscale/internal/domain/types"
)

// InstrumentReader lists the catalog and classifies scores against it.
type InstrumentReader interface {
	Instruments() []instrument.Instrument
	Classify(ctx context.Context, path string, raw int) (scoring.Result, error)
}

// CompletionRecorder appends one completion for the instrument at path.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, path string, rawClientType int, origin string) error
}

// StatisticsReader answers completion count queries.
type StatisticsReader interface {
	Statistics(ctx context.Context, path string) (types.ScaleStatistics, error)
	AllStatistics(ctx context.Context) ([]types.ScaleStatistics, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	InstrumentReader
	CompletionRecorder
	StatisticsReader
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	instrumentsHandler *InstrumentsHandler
	completionsHandler *CompletionsHandler
	statisticsHandler  *StatisticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		instrumentsHandler: NewInstrumentsHandler(deps),
		completionsHandler: NewCompletionsHandler(deps),
		statisticsHandler:  NewStatisticsHandler(deps),
	}
}

// Register attaches all HTTP routes to r. Middleware must be installed on r
// before calling Register.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Handle("/metrics", s.healthHandler.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/instruments", MetricsMiddleware(s.instrumentsHandler.HandleList, "instruments"))
		r.Post("/instruments/{path}/classify", MetricsMiddleware(s.instrumentsHandler.HandleClassify, "classify"))
		r.Post("/instruments/{path}/completions", MetricsMiddleware(s.completionsHandler.HandlePostCompletion, "completions"))
		r.Get("/statistics", MetricsMiddleware(s.statisticsHandler.HandleAll, "statistics"))
		r.Get("/statistics/{path}", MetricsMiddleware(s.statisticsHandler.HandleOne, "statistics_one"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// maxBodyBytes caps request bodies; every request document is a single field.
const maxBodyBytes = 4 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
