// Package repository persists completion events.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/psyscale/internal/domain/model"
)

// CompletionStore is the durable, concurrency-safe completion log.
type CompletionStore interface {
	// Init creates the schema if it does not exist. Safe to call repeatedly.
	Init(ctx context.Context) error
	// Insert appends one completion stamped with the current UTC+8 time and
	// returns the number of rows written.
	Insert(ctx context.Context, instrumentID int, clientType model.ClientType, origin string) (int64, error)
	// CountFor returns the number of completions for one instrument, 0 if none.
	CountFor(ctx context.Context, instrumentID int) (uint64, error)
	// CountAll returns counts for every instrument with at least one completion.
	CountAll(ctx context.Context) (map[int]uint64, error)
	Close() error
}

// Backend names a storage implementation.
type Backend string

// Supported backends.
const (
	SQLiteBackend     Backend = "sqlite"
	MySQLBackend      Backend = "mysql"
	PostgreSQLBackend Backend = "postgresql"
	MemoryBackend     Backend = "memory"
)

// ValidBackends lists every accepted backend name.
var ValidBackends = map[Backend]bool{
	SQLiteBackend:     true,
	MySQLBackend:      true,
	PostgreSQLBackend: true,
	MemoryBackend:     true,
}

// ParseBackend normalizes and validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if !ValidBackends[b] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
	return b, nil
}

// Open returns the store for backend. dsn is ignored by the memory backend.
func Open(ctx context.Context, backend Backend, dsn string, opts ...Option) (CompletionStore, error) {
	if backend == MemoryBackend {
		return NewMemoryStore(), nil
	}
	return NewSQLStore(ctx, backend, dsn, opts...)
}
