package service

import (
	"github.com/okian/psyscale/internal/adapters/repository"
	"github.com/okian/psyscale/internal/domain/scoring"
	"github.com/okian/psyscale/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the instrument catalog. Defaults to the compiled-in one.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStore sets the completion store. It is required.
func WithStore(store repository.CompletionStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifier overrides the score classifier built over the catalog.
func WithClassifier(c scoring.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}
