package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownInstrumentPath = errors.New("unknown instrument path")
	ErrRawScoreOutOfRange    = errors.New("raw score outside the instrument's range")
	ErrNotStarted            = errors.New("service not started")
	ErrStopped               = errors.New("service stopped")
	ErrNoStore               = errors.New("no completion store configured")
)
