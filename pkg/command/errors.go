package command

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid command")

	// ErrMalformed indicates a wire command whose fields do not match its kind.
	ErrMalformed = errors.New("malformed command")
)

// ValidationError describes a rejected constructor argument.
type ValidationError struct {
	Command string
	Field   string
	Value   any
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid command %s: %s=%v: %s", e.Command, e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(cmd, field string, value any, reason string) *ValidationError {
	return &ValidationError{Command: cmd, Field: field, Value: value, Reason: reason}
}
