// Package sitemap serializes scored page records into sitemap protocol documents.
package sitemap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned for a batch capacity outside [1, MaxEntriesPerSitemap].
	ErrInvalidCapacity = errors.New("invalid batch capacity")
	// ErrNoBatches is returned when an index is requested before any batch was flushed.
	ErrNoBatches = errors.New("no sitemap batches produced")
)

// EncodeError represents a failure to serialize or parse a sitemap document
type EncodeError struct {
	Message string
	Cause   error
}

func (e *EncodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sitemap encode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sitemap encode error: %s", e.Message)
}

func (e *EncodeError) Unwrap() error {
	return e.Cause
}
