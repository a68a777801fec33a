package journal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrAlreadyFetched    = errors.New("stock data already fetched")
	ErrConsoleDisabled   = errors.New("sql console is disabled")
	ErrQueryFailed       = errors.New("sql query failed")
)

// ValidationError reports a rejected input field. Nothing is derived or
// persisted when one is returned.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
