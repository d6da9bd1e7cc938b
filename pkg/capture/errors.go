package capture

import (
	"fmt"
	"strings"
)

// ValidationError is a synchronous input failure; the action is blocked and
// no state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PhaseError reports an operation fired in a phase that does not allow it.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s while in phase %s", e.Op, e.Phase)
}

// AggregateError aborts a whole test submission: at least one included unit
// has a missing or malformed required field. Units names the offenders.
type AggregateError struct {
	Units []string
}

func (e *AggregateError) Error() string {
	return "incomplete readings: " + strings.Join(e.Units, "; ")
}
