// ABOUTME: Validation error shared by entry records and the diary engine.
// ABOUTME: Carries the offending field and a human readable reason.
package models

import (
	"fmt"
	"math"
)

// ValidationError reports a malformed entry or request argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// nonNegative checks a numeric field is finite and >= 0.
func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative, got %g", v)
	}
	return nil
}
