package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Dataset shape errors - the whole run fails fast on these
	ErrEmptyDataset = errors.New("dataset has no rows")
	ErrNoColumns    = errors.New("dataset has no columns")

	// Degenerate-statistics errors - surfaced as markers, never as zeros
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNotComputable    = errors.New("statistic not computable")

	// Run lifecycle errors
	ErrRunAborted    = errors.New("profiling run aborted")
	ErrNotFinalized  = errors.New("summary not finalized")
	ErrAlreadySealed = errors.New("summary already finalized")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewNotComputableError(column string, statistic string, reason string) error {
	return fmt.Errorf("%w: %s for column %s: %s", ErrNotComputable, statistic, column, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDatasetShapeError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) || errors.Is(err, ErrNoColumns)
}

func IsDegenerateStatError(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrNotComputable)
}
