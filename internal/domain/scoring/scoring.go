// Package scoring classifies instrument scores into severity buckets.
package scoring

import (
	"fmt"

	"github.com/okian/psyscale/internal/domain/instrument"
)

// Resolver looks instruments up by id.
type Resolver interface {
	ByID(id int) (instrument.Instrument, error)
}

// Classifier maps a raw score to an interpretation bucket.
type Classifier interface {
	Classify(instrumentID, raw int) (Result, error)
}

// Result is the outcome of a classification.
type Result struct {
	InstrumentID int
	RawScore     int
	// Score is the value used for bucket lookup, after any rescale.
	Score  int
	Bucket instrument.Bucket
}

// Option applies a configuration option to the Interpreter.
type Option func(*Interpreter)

// WithResolver sets the instrument source.
func WithResolver(r Resolver) Option {
	return func(i *Interpreter) {
		if r != nil {
			i.resolver = r
		}
	}
}

// Interpreter implements Classifier. It holds no mutable state.
type Interpreter struct {
	resolver Resolver
}

var _ Classifier = (*Interpreter)(nil)

// New creates an Interpreter.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Classify rescales raw when the instrument declares a rule and returns the
// first bucket containing the result.
func (i *Interpreter) Classify(instrumentID, raw int) (Result, error) {
	if i.resolver == nil {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownInstrument, instrumentID)
	}
	in, err := i.resolver.ByID(instrumentID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnknownInstrument, err)
	}

	score := in.Score(raw)
	b, ok := Select(in.Buckets, score)
	if !ok {
		return Result{}, fmt.Errorf("%w: instrument %d score %d", ErrScoreOutOfDomain, instrumentID, score)
	}
	return Result{InstrumentID: in.ID, RawScore: raw, Score: score, Bucket: b}, nil
}

// Select returns the first bucket containing score. Every bucket is
// half-open [Low, High) except the last, which is closed [Low, High].
func Select(buckets []instrument.Bucket, score int) (instrument.Bucket, bool) {
	last := len(buckets) - 1
	for idx, b := range buckets {
		if contains(b, score, idx == last) {
			return b, true
		}
	}
	return instrument.Bucket{}, false
}

func contains(b instrument.Bucket, score int, closed bool) bool {
	if score < b.Low {
		return false
	}
	if closed {
		return score <= b.High
	}
	return score < b.High
}
