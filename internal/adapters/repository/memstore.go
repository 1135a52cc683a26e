package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/psyscale/internal/domain/model"
)

// MemoryStore is an in-process CompletionStore. Its contents do not survive
// a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.CompletionRecord
	counts  map[int]uint64
	closed  bool
	now     func() time.Time
}

var _ CompletionStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts: make(map[int]uint64),
		now:    time.Now,
	}
}

// Init is a no-op beyond checking the store is open.
func (m *MemoryStore) Init(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check(ctx, opInit)
}

// Insert appends one record.
func (m *MemoryStore) Insert(ctx context.Context, instrumentID int, clientType model.ClientType, origin string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, opInsert); err != nil {
		return 0, err
	}

	m.records = append(m.records, model.CompletionRecord{
		ID:           int64(len(m.records) + 1),
		InstrumentID: instrumentID,
		ClientType:   clientType,
		Origin:       origin,
		CompletedAt:  m.now().In(model.CompletionZone),
	})
	m.counts[instrumentID]++
	return 1, nil
}

// CountFor returns the number of records for instrumentID.
func (m *MemoryStore) CountFor(ctx context.Context, instrumentID int) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, opCountFor); err != nil {
		return 0, err
	}
	return m.counts[instrumentID], nil
}

// CountAll returns a copy of the non-zero counts.
func (m *MemoryStore) CountAll(ctx context.Context) (map[int]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, opCountAll); err != nil {
		return nil, err
	}
	out := make(map[int]uint64, len(m.counts))
	for id, n := range m.counts {
		out[id] = n
	}
	return out, nil
}

// Records returns a snapshot of every stored record.
func (m *MemoryStore) Records() []model.CompletionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.CompletionRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// check must be called with mu held.
func (m *MemoryStore) check(ctx context.Context, op string) error {
	if m.closed {
		return wrap(op, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return wrap(op, err)
	}
	return nil
}
