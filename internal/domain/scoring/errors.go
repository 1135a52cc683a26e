package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrScoreOutOfDomain  = errors.New("score outside every interpretation bucket")
	ErrInvalidCatalog    = errors.New("invalid interpretation table")
)
