package loadtest

import "errors"

// Sentinel kinds for load run failures.
var (
	ErrUnhealthy          = errors.New("service health check failed")
	ErrNoInstruments      = errors.New("service lists no instruments")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrVerificationFailed = errors.New("statistics verification failed")
)
