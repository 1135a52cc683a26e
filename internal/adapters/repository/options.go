package repository

import "time"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithPoolSize bounds the number of open connections.
func WithPoolSize(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithPoolWaitTimeout bounds how long an operation queues for a connection
// before it is shed with ErrPoolExhausted.
func WithPoolWaitTimeout(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.poolWait = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		if now != nil {
			s.now = now
		}
	}
}
