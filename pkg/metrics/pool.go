package metrics

import "time"

// PoolStats is the subset of a database/sql pool snapshot exported as gauges.
type PoolStats struct {
	Open         int
	InUse        int
	Idle         int
	WaitCount    int64
	WaitDuration time.Duration
}
