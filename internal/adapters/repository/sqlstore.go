package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/okian/psyscale/internal/domain/model"
	"github.com/okian/psyscale/pkg/metrics"
)

// Default pool configuration.
const (
	defaultPoolSize     = 5
	defaultPoolWait     = 2 * time.Second
	sqliteBusyTimeoutMS = 5000
)

// Operation labels used in errors and metrics.
const (
	opOpen     = "open"
	opInit     = "init"
	opInsert   = "insert"
	opCountFor = "count_for"
	opCountAll = "count_all"
)

// SQLStore implements CompletionStore on database/sql.
type SQLStore struct {
	db       *sql.DB
	backend  Backend
	dialect  dialect
	poolSize int
	poolWait time.Duration
	now      func() time.Time
}

var _ CompletionStore = (*SQLStore)(nil)

// NewSQLStore opens a pooled connection to backend and verifies it with a ping.
// The schema is not touched until Init.
func NewSQLStore(ctx context.Context, backend Backend, dsn string, opts ...Option) (*SQLStore, error) {
	d, err := dialectFor(backend)
	if err != nil {
		return nil, err
	}

	s := &SQLStore{
		backend:  backend,
		dialect:  d,
		poolSize: defaultPoolSize,
		poolWait: defaultPoolWait,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	source, err := dataSource(backend, dsn)
	if err != nil {
		return nil, wrap(opOpen, err)
	}
	db, err := sql.Open(d.driver, source)
	if err != nil {
		return nil, wrap(opOpen, fmt.Errorf("open %s: %w", backend, err))
	}
	db.SetMaxOpenConns(s.poolSize)
	db.SetMaxIdleConns(s.poolSize)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrap(opOpen, fmt.Errorf("ping %s: %w", backend, err))
	}
	s.db = db
	return s, nil
}

// dataSource adapts the configured DSN to what the driver needs.
func dataSource(backend Backend, dsn string) (string, error) {
	switch backend {
	case SQLiteBackend:
		if strings.TrimSpace(dsn) == "" {
			return "", errors.New("sqlite: empty database path")
		}
		if strings.Contains(dsn, "_pragma=") {
			return dsn, nil
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_time_format=sqlite",
			dsn, sep, sqliteBusyTimeoutMS), nil

	case MySQLBackend:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("mysql: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil

	default:
		if strings.TrimSpace(dsn) == "" {
			return "", fmt.Errorf("%s: empty connection string", backend)
		}
		return dsn, nil
	}
}

// conn takes a dedicated connection, waiting at most poolWait for one.
// The statement itself then runs under the caller's context.
func (s *SQLStore) conn(ctx context.Context, op string) (*sql.Conn, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.poolWait)
	defer cancel()

	c, err := s.db.Conn(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, wrap(op, fmt.Errorf("%w after %s", ErrPoolExhausted, s.poolWait))
		}
		return nil, wrap(op, err)
	}
	return c, nil
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStorageLatency(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil {
		metrics.RecordStorageError(op)
	}
}

// Init creates the completion table and its index if missing.
func (s *SQLStore) Init(ctx context.Context) (err error) {
	defer observe(opInit, time.Now(), &err)

	c, err := s.conn(ctx, opInit)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if _, err = c.ExecContext(ctx, s.dialect.createTable); err != nil {
		return wrap(opInit, fmt.Errorf("create table %s: %w", completionsTable, err))
	}
	if s.dialect.createIndex != "" {
		if _, err = c.ExecContext(ctx, s.dialect.createIndex); err != nil {
			return wrap(opInit, fmt.Errorf("create index %s: %w", indexName, err))
		}
	}
	return nil
}

// Insert appends one completion row in a single statement.
func (s *SQLStore) Insert(ctx context.Context, instrumentID int, clientType model.ClientType, origin string) (_ int64, err error) {
	defer observe(opInsert, time.Now(), &err)

	c, err := s.conn(ctx, opInsert)
	if err != nil {
		return 0, err
	}
	defer func() { _ = c.Close() }()

	completedAt := s.now().In(model.CompletionZone)
	res, err := c.ExecContext(ctx, s.dialect.insert,
		instrumentID, origin, int16(clientType), s.dialect.timestamp(completedAt))
	if err != nil {
		return 0, wrap(opInsert, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap(opInsert, err)
	}
	return n, nil
}

// CountFor returns the number of completions recorded for instrumentID.
func (s *SQLStore) CountFor(ctx context.Context, instrumentID int) (_ uint64, err error) {
	defer observe(opCountFor, time.Now(), &err)

	c, err := s.conn(ctx, opCountFor)
	if err != nil {
		return 0, err
	}
	defer func() { _ = c.Close() }()

	var n int64
	if err = c.QueryRowContext(ctx, s.dialect.countFor, instrumentID).Scan(&n); err != nil {
		return 0, wrap(opCountFor, err)
	}
	return uint64(n), nil
}

// CountAll returns per-instrument counts for instruments with completions.
func (s *SQLStore) CountAll(ctx context.Context) (_ map[int]uint64, err error) {
	defer observe(opCountAll, time.Now(), &err)

	c, err := s.conn(ctx, opCountAll)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	rows, err := c.QueryContext(ctx, s.dialect.countAll)
	if err != nil {
		return nil, wrap(opCountAll, err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int]uint64)
	for rows.Next() {
		var id int
		var n int64
		if err = rows.Scan(&id, &n); err != nil {
			return nil, wrap(opCountAll, err)
		}
		counts[id] = uint64(n)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(opCountAll, err)
	}
	return counts, nil
}

// Stats returns the connection pool statistics.
func (s *SQLStore) Stats() sql.DBStats {
	return s.db.Stats()
}

// Backend reports which backend the store talks to.
func (s *SQLStore) Backend() Backend {
	return s.backend
}

// Close releases the pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
