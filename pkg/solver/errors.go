package solver

import "fmt"

// SolverError reports a dimension mismatch or a failed factorization.
type SolverError struct {
	Reason string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver error: %s", e.Reason)
}

func newSolverError(format string, args ...any) error {
	return &SolverError{Reason: fmt.Sprintf(format, args...)}
}
