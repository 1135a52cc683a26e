package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/psyscale/internal/domain/instrument"
)

// Validate checks every instrument's bucket table: bounds are ordered,
// adjacent buckets share their boundary and every achievable raw score
// classifies to exactly one bucket. All defects are reported together.
func Validate(instruments []instrument.Instrument) error {
	var errs []error
	for _, in := range instruments {
		errs = append(errs, validateInstrument(in)...)
	}
	return errors.Join(errs...)
}

func validateInstrument(in instrument.Instrument) []error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %q: %s", ErrInvalidCatalog, in.Path, fmt.Sprintf(format, args...))
	}

	var errs []error
	if len(in.Buckets) == 0 {
		return append(errs, fail("no buckets"))
	}
	if in.Rescale != nil && in.Rescale.Factor <= 0 {
		errs = append(errs, fail("rescale factor %v must be positive", in.Rescale.Factor))
	}
	if in.RawMin > in.RawMax {
		errs = append(errs, fail("raw domain [%d,%d] is empty", in.RawMin, in.RawMax))
	}

	last := len(in.Buckets) - 1
	for idx, b := range in.Buckets {
		if idx == last && b.Low > b.High {
			errs = append(errs, fail("bucket %d [%d,%d] is empty", idx, b.Low, b.High))
		}
		if idx < last && b.Low >= b.High {
			errs = append(errs, fail("bucket %d [%d,%d) is empty", idx, b.Low, b.High))
		}
		if idx > 0 && in.Buckets[idx-1].High != b.Low {
			errs = append(errs, fail("bucket %d ends at %d but bucket %d starts at %d",
				idx-1, in.Buckets[idx-1].High, idx, b.Low))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for raw := in.RawMin; raw <= in.RawMax; raw++ {
		score := in.Score(raw)
		matched := 0
		for idx, b := range in.Buckets {
			if contains(b, score, idx == last) {
				matched++
			}
		}
		if matched != 1 {
			return append(errs, fail("raw score %d (scored %d) matches %d buckets", raw, score, matched))
		}
	}
	return nil
}
