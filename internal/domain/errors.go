package domain

import (
	"errors"
	"fmt"
)

// ErrNoBackend is returned by the provider router when no LLM backend is
// configured. It is the expected condition in fallback-only mode and is
// never a transport failure.
var ErrNoBackend = errors.New("no llm backend configured")

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-correctable input problem. It never causes a
// session state transition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
