// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// ClientType identifies the kind of application that submitted a completion.
// The wire encoding is a small integer.
type ClientType int16

// Recognized client types.
const (
	EmbeddedApp   ClientType = 1
	MobileBrowser ClientType = 2
)

// DefaultClientType is the catalog-level fallback. Request decoding never
// substitutes it for an unrecognized value.
const DefaultClientType = MobileBrowser

// ErrInvalidClientType matches every *InvalidClientTypeError.
var ErrInvalidClientType = errors.New("invalid client type")

// InvalidClientTypeError reports an unrecognized wire value.
type InvalidClientTypeError struct {
	Raw int
}

func (e *InvalidClientTypeError) Error() string {
	return fmt.Sprintf("invalid client type: %d", e.Raw)
}

// Is reports whether target is ErrInvalidClientType.
func (e *InvalidClientTypeError) Is(target error) bool {
	return target == ErrInvalidClientType
}

// ParseClientType decodes a wire value. Unknown values are rejected.
func ParseClientType(raw int) (ClientType, error) {
	switch raw {
	case int(EmbeddedApp), int(MobileBrowser):
		return ClientType(raw), nil
	}
	return 0, &InvalidClientTypeError{Raw: raw}
}

// String returns the metrics/log label for the client type.
func (c ClientType) String() string {
	switch c {
	case EmbeddedApp:
		return "embedded_app"
	case MobileBrowser:
		return "mobile_browser"
	default:
		return fmt.Sprintf("client_type(%d)", int(c))
	}
}

// CompletionZone is the fixed UTC+8 offset used for completion timestamps.
var CompletionZone = time.FixedZone("UTC+8", 8*60*60)

// CompletionRecord is one persisted completion event.
type CompletionRecord struct {
	ID           int64
	InstrumentID int
	ClientType   ClientType
	Origin       string
	CompletedAt  time.Time
}
