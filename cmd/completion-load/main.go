// Command completion-load drives a running psyscale service with concurrent
// completions and verifies the statistics endpoint accounts for every one.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/psyscale/internal/loadtest"
	"github.com/okian/psyscale/pkg/logger"
)

// Default configuration constants.
const (
	defaultCompletions = 1000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

// exitVerificationFailed distinguishes a failed check from a run error.
const exitVerificationFailed = 2

var cfg = &loadtest.Config{}

var rootCmd = &cobra.Command{
	Use:           "completion-load",
	Short:         "Submit concurrent completions and verify statistics.",
	Long:          `completion-load snapshots /api/statistics, submits completions through a worker pool, snapshots again and checks every instrument grew by at least its recorded submissions.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.Verbose {
			return logger.SetLevelString("debug")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Completions <= 0 || cfg.Workers <= 0 {
			return errors.New("--completions and --workers must be positive")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
		defer cancel()
		return loadtest.Run(ctx, cfg, cmd.OutOrStdout(), !color.NoColor)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	flags.IntVar(&cfg.Completions, "completions", defaultCompletions, "Number of completions to submit")
	flags.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	flags.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("completion-load: %v", err))
		stop()
		if errors.Is(err, loadtest.ErrVerificationFailed) {
			os.Exit(exitVerificationFailed)
		}
		os.Exit(1)
	}
}
