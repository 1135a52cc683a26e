// Package instrument defines questionnaire instruments and the immutable
// registry that indexes them.
package instrument

import (
	"math"
	"slices"
)

// Severity is the ordinal outcome of a classified score.
type Severity int

// Severities in ascending order.
const (
	Normal Severity = iota
	Mild
	Moderate
	Major
)

var severityNames = [...]string{
	Normal:   "normal",
	Mild:     "mild",
	Moderate: "moderate",
	Major:    "major",
}

func (s Severity) String() string {
	if s < Normal || s > Major {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText renders the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Bucket maps a score interval to a severity and its guidance copy.
// Whether High is inclusive depends on the bucket's position in its table.
type Bucket struct {
	Low             int
	High            int
	Severity        Severity
	Advice          string
	Symptom         string
	CriticalWarning string
}

// Rescale multiplies a raw score by Factor and rounds half away from zero.
type Rescale struct {
	Factor float64
}

// Apply returns the rescaled score.
func (r Rescale) Apply(raw int) int {
	return int(math.Round(float64(raw) * r.Factor))
}

// Instrument is one questionnaire definition.
type Instrument struct {
	ID      int
	Path    string
	Name    string
	Warning string
	// RawMin and RawMax bound the raw scores the questionnaire can produce.
	RawMin  int
	RawMax  int
	Rescale *Rescale
	Buckets []Bucket
}

// InRange reports whether raw is a score the questionnaire can produce.
func (in Instrument) InRange(raw int) bool {
	return raw >= in.RawMin && raw <= in.RawMax
}

// Score maps a raw score onto the bucket scale. raw should satisfy InRange.
func (in Instrument) Score(raw int) int {
	if in.Rescale == nil {
		return raw
	}
	return in.Rescale.Apply(raw)
}

func (in Instrument) clone() Instrument {
	out := in
	out.Buckets = slices.Clone(in.Buckets)
	if in.Rescale != nil {
		r := *in.Rescale
		out.Rescale = &r
	}
	return out
}
