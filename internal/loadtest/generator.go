package loadtest

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/psyscale/internal/domain/model"
	"github.com/okian/psyscale/pkg/logger"
)

var clientTypes = [...]int{int(model.EmbeddedApp), int(model.MobileBrowser)}

// Generate spreads n completions uniformly across instruments with random
// valid client types. The same seed yields the same paths and client types.
func Generate(instruments []Instrument, n int, seed uint64) []Completion {
	if len(instruments) == 0 || n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]Completion, n)
	for i := range out {
		out[i] = Completion{
			RequestID:  uuid.NewString(),
			Path:       instruments[rng.IntN(len(instruments))].Path,
			ClientType: clientTypes[rng.IntN(len(clientTypes))],
		}
	}
	return out
}

// generateCompletions logs and times Generate.
func generateCompletions(ctx context.Context, config *Config, instruments []Instrument, stats *Stats) []Completion {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	start := time.Now()
	completions := Generate(instruments, config.Completions, seed)
	stats.Generated = len(completions)

	logger.Get().Info(ctx, "completions generated",
		logger.Int("count", len(completions)),
		logger.Int("instruments", len(instruments)),
		logger.Uint64("seed", seed),
		logger.Duration("took", time.Since(start)))
	return completions
}
