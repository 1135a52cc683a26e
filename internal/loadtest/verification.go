package loadtest

// Check is the per-instrument verification outcome.
type Check struct {
	Path       string
	Name       string
	Before     uint64
	After      uint64
	Successful int
	Pass       bool
}

// Delta is the observed count increase.
func (c Check) Delta() uint64 {
	if c.After < c.Before {
		return 0
	}
	return c.After - c.Before
}

// Verify compares statistics snapshots taken around a run. Other writers may
// be active, so an instrument passes when its count grew by at least the
// number of successful submissions. A count that shrank always fails.
func Verify(instruments []Instrument, before, after map[string]uint64, successful map[string]int) ([]Check, bool) {
	checks := make([]Check, 0, len(instruments))
	ok := true
	for _, in := range instruments {
		c := Check{
			Path:       in.Path,
			Name:       in.Name,
			Before:     before[in.Name],
			After:      after[in.Name],
			Successful: successful[in.Path],
		}
		_, seenBefore := before[in.Name]
		_, seenAfter := after[in.Name]
		c.Pass = seenBefore && seenAfter &&
			c.After >= c.Before &&
			c.Delta() >= uint64(c.Successful)
		if !c.Pass {
			ok = false
		}
		checks = append(checks, c)
	}
	return checks, ok
}
