package circuit

import "fmt"

// ValidationError reports a structural problem found by Circuit.Validate.
// It is always fatal: a solve cannot proceed against a malformed circuit.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("circuit validation failed: %s", e.Reason)
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
