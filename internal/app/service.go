// Package service composes the instrument catalog, the score interpreter and
// the completion store into the operations exposed over HTTP.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/psyscale/internal/adapters/repository"
	"github.com/okian/psyscale/internal/domain/catalog"
	"github.com/okian/psyscale/internal/domain/instrument"
	"github.com/okian/psyscale/internal/domain/model"
	"github.com/okian/psyscale/internal/domain/scoring"
	"github.com/okian/psyscale/internal/domain/types"
	"github.com/okian/psyscale/pkg/logger"
	"github.com/okian/psyscale/pkg/metrics"
)

// Catalog is the read-only instrument index the service depends on.
type Catalog interface {
	ByPath(path string) (instrument.Instrument, error)
	ByID(id int) (instrument.Instrument, error)
	All() []instrument.Instrument
	Len() int
}

// poolStatser is implemented by stores backed by a database/sql pool.
type poolStatser interface {
	Stats() sql.DBStats
}

// Service records completions and answers statistics queries. Apart from
// its collaborators it holds no state.
type Service struct {
	mu sync.RWMutex

	catalog    Catalog
	store      repository.CompletionStore
	classifier scoring.Classifier
	logger     logger.Logger

	started bool
	stopped bool
}

// deps is the collaborator set captured by a single request.
type deps struct {
	catalog    Catalog
	store      repository.CompletionStore
	classifier scoring.Classifier
}

// New constructs a Service. Collaborators not supplied through options are
// defaulted by Start.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates every interpretation table and initializes the store
// schema. A missing store, a catalog defect or a storage failure aborts
// startup. Start is idempotent until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.classifier == nil {
		s.classifier = scoring.New(scoring.WithResolver(s.catalog))
	}

	if err := scoring.Validate(s.catalog.All()); err != nil {
		s.logger.Error(ctx, "catalog validation failed", logger.Error(err))
		return fmt.Errorf("validate catalog: %w", err)
	}
	if err := s.store.Init(ctx); err != nil {
		s.logger.Error(ctx, "completion store init failed", logger.Error(err))
		return fmt.Errorf("init completion store: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "statistics service started", logger.Int("instruments", s.catalog.Len()))
	return nil
}

// Stop closes the store. A stopped service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing completion store", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(context.Background(), "statistics service stopped")
}

func (s *Service) deps() (deps, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return deps{}, ErrNotStarted
	}
	return deps{catalog: s.catalog, store: s.store, classifier: s.classifier}, nil
}

// RecordCompletion validates the path and client type, then appends one
// completion. Input errors never reach the store.
func (s *Service) RecordCompletion(ctx context.Context, path string, rawClientType int, origin string) error {
	d, err := s.deps()
	if err != nil {
		return err
	}

	in, err := d.catalog.ByPath(path)
	if err != nil {
		metrics.RecordCompletionRejected("unknown_instrument")
		return fmt.Errorf("%w: %q", ErrUnknownInstrumentPath, path)
	}
	clientType, err := model.ParseClientType(rawClientType)
	if err != nil {
		metrics.RecordCompletionRejected("invalid_client_type")
		return err
	}

	if _, err := d.store.Insert(ctx, in.ID, clientType, origin); err != nil {
		s.logger.Error(ctx, "recording completion failed",
			logger.String("path", in.Path),
			logger.Int("instrument_id", in.ID),
			logger.String("client_type", clientType.String()),
			logger.String("origin", origin),
			logger.Error(err),
		)
		return err
	}

	metrics.RecordCompletion(in.Path, clientType.String())
	s.logger.Debug(ctx, "completion recorded",
		logger.String("path", in.Path),
		logger.String("client_type", clientType.String()),
	)
	return nil
}

// Statistics returns the completion count of the instrument at path.
func (s *Service) Statistics(ctx context.Context, path string) (types.ScaleStatistics, error) {
	d, err := s.deps()
	if err != nil {
		return types.ScaleStatistics{}, err
	}

	in, err := d.catalog.ByPath(path)
	if err != nil {
		return types.ScaleStatistics{}, fmt.Errorf("%w: %q", ErrUnknownInstrumentPath, path)
	}
	n, err := d.store.CountFor(ctx, in.ID)
	if err != nil {
		s.logger.Error(ctx, "counting completions failed",
			logger.String("path", in.Path),
			logger.Int("instrument_id", in.ID),
			logger.Error(err),
		)
		return types.ScaleStatistics{}, err
	}
	return types.ScaleStatistics{ID: in.ID, Path: in.Path, Name: in.Name, Count: n}, nil
}

// AllStatistics returns one entry per catalogued instrument in declaration
// order. Instruments without completions report zero. Counts are not a
// point-in-time snapshot relative to concurrent inserts.
func (s *Service) AllStatistics(ctx context.Context) ([]types.ScaleStatistics, error) {
	d, err := s.deps()
	if err != nil {
		return nil, err
	}

	counts, err := d.store.CountAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "counting all completions failed", logger.Error(err))
		return nil, err
	}

	all := d.catalog.All()
	out := make([]types.ScaleStatistics, len(all))
	for i, in := range all {
		out[i] = types.ScaleStatistics{ID: in.ID, Path: in.Path, Name: in.Name, Count: counts[in.ID]}
	}
	return out, nil
}

// Classify interprets a raw score for the instrument at path. Scores outside
// the instrument's raw range fail with ErrRawScoreOutOfRange.
func (s *Service) Classify(ctx context.Context, path string, raw int) (scoring.Result, error) {
	d, err := s.deps()
	if err != nil {
		return scoring.Result{}, err
	}

	in, err := d.catalog.ByPath(path)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("%w: %q", ErrUnknownInstrumentPath, path)
	}
	if !in.InRange(raw) {
		return scoring.Result{}, fmt.Errorf("%w: %q accepts %d..%d, got %d",
			ErrRawScoreOutOfRange, in.Path, in.RawMin, in.RawMax, raw)
	}

	res, err := d.classifier.Classify(in.ID, raw)
	if err != nil {
		// In-range scores that miss every bucket are a catalog defect.
		if errors.Is(err, scoring.ErrScoreOutOfDomain) {
			s.logger.Error(ctx, "interpretation table has no bucket for an in-range score",
				logger.String("path", in.Path),
				logger.Int("raw_score", raw),
				logger.Error(err),
			)
		}
		return scoring.Result{}, err
	}

	metrics.RecordClassification(in.Path, res.Bucket.Severity.String())
	return res, nil
}

// Instruments lists the catalog in declaration order.
func (s *Service) Instruments() []instrument.Instrument {
	d, err := s.deps()
	if err != nil {
		return nil
	}
	return d.catalog.All()
}

// PoolStats reports connection pool statistics when the store has a pool.
func (s *Service) PoolStats() (sql.DBStats, bool) {
	d, err := s.deps()
	if err != nil {
		return sql.DBStats{}, false
	}
	ps, ok := d.store.(poolStatser)
	if !ok {
		return sql.DBStats{}, false
	}
	return ps.Stats(), true
}
