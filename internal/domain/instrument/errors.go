package instrument

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound          = errors.New("instrument not found")
	ErrDuplicateID       = errors.New("duplicate instrument id")
	ErrDuplicatePath     = errors.New("duplicate instrument path")
	ErrDuplicateName     = errors.New("duplicate instrument name")
	ErrInvalidInstrument = errors.New("invalid instrument")
)
