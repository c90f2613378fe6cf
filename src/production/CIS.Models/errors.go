package cismodels

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks a failure of the underlying database. The
// ingestion pipeline degrades on it instead of aborting: readings are
// returned non-durable and configuration reads fall back to the cache.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ValidationError rejects malformed ingestion input. It carries the
// offending field so handlers can report it without side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
