package loadtest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/psyscale/pkg/logger"
)

// Run executes a complete load run and writes the report to out. It returns
// ErrVerificationFailed when any instrument's count did not account for its
// successful submissions.
func Run(ctx context.Context, config *Config, out io.Writer, useColors bool) error {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.Timeout)

	logger.Get().Info(ctx, "starting completion load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("completions", config.Completions),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return err
	}

	instruments, err := fetchInstruments(ctx, client, config.BaseURL)
	if err != nil {
		return err
	}

	before, err := fetchStatistics(ctx, client, config.BaseURL)
	if err != nil {
		return fmt.Errorf("statistics before run: %w", err)
	}

	completions := generateCompletions(ctx, config, instruments, stats)
	successful := submitCompletions(ctx, config, completions, stats)

	after, err := fetchStatistics(ctx, client, config.BaseURL)
	if err != nil {
		return fmt.Errorf("statistics after run: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	checks, ok := Verify(instruments, before, after, successful)
	if err := WriteReport(out, checks, stats, useColors); err != nil {
		logger.Get().Warn(ctx, "failed to write report", logger.Error(err))
	}
	if !ok {
		return ErrVerificationFailed
	}

	logger.Get().Info(ctx, "load run passed", logger.Duration("duration", stats.Duration))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	status, _, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != statusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}
