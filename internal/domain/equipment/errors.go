package equipment

import (
	"errors"
	"fmt"
)

// Sentinel values for errors.Is checks against the typed failures below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrBreakdown    = errors.New("equipment breakdown")
	ErrMissingParts = errors.New("missing parts")
)

// ValidationError reports malformed input or an unmet precondition.
// The record is never mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// BreakdownError reports a failed operation that also moved the record to
// the non-operational state.
type BreakdownError struct {
	Equipment       string
	FailureKind     string
	LastMaintenance string
}

func (e *BreakdownError) Error() string {
	return fmt.Sprintf("%s broke down: %s (last maintenance: %s)", e.Equipment, e.FailureKind, e.LastMaintenance)
}

func (e *BreakdownError) Is(target error) bool {
	return target == ErrBreakdown
}

// MissingPartsError reports maintenance or repair blocked by an unavailable
// part. Record state is unchanged.
type MissingPartsError struct {
	Equipment string
	Part      string
	WaitDays  int
}

func (e *MissingPartsError) Error() string {
	return fmt.Sprintf("%s is waiting for %s (%d days)", e.Equipment, e.Part, e.WaitDays)
}

func (e *MissingPartsError) Is(target error) bool {
	return target == ErrMissingParts
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
