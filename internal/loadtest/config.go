// Package loadtest drives a running psyscale service with concurrent
// completions and checks that the statistics endpoint accounts for them.
package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Completions int           // Number of completions to submit
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Generator seed; 0 picks one from the clock
	Verbose     bool          // Enable verbose logging
}

// Instrument is the part of the catalog the load run needs.
type Instrument struct {
	ID   int
	Path string
	Name string
}

// Completion is one request to submit.
type Completion struct {
	RequestID  string
	Path       string
	ClientType int
}

// completionBody mirrors the POST /api/instruments/{path}/completions schema.
type completionBody struct {
	ClientType int `json:"client_type"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Busy       int
	Failed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
