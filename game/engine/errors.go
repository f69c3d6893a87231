package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimension = errors.New("invalid grid dimension")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrPositionOccupied = errors.New("position already occupied")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Error kind codes used by transports
const (
	KindInvalidDimension = "invalid_dimension"
	KindInvalidDirection = "invalid_direction"
	KindOutOfBounds      = "out_of_bounds"
	KindPositionOccupied = "position_occupied"
	KindInvalidOperation = "invalid_operation"
)

// ErrorKind maps an engine error to a stable machine-friendly code.
// It returns "" for nil and for errors that did not come from the engine.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidDimension):
		return KindInvalidDimension
	case errors.Is(err, ErrInvalidDirection):
		return KindInvalidDirection
	case errors.Is(err, ErrOutOfBounds):
		return KindOutOfBounds
	case errors.Is(err, ErrPositionOccupied):
		return KindPositionOccupied
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	}
	return ""
}

// IsValidationError reports whether err is one of the engine's error kinds
func IsValidationError(err error) bool {
	return ErrorKind(err) != ""
}

// SequenceError reports the operation that aborted a command sequence.
// When it wraps ErrOutOfBounds or ErrPositionOccupied the rover has already
// been returned to its initial placement.
type SequenceError struct {
	Index     int       // zero-based position of the failing operation
	Operation byte      // 'L', 'R' or 'M'
	From      Placement // placement before the failing operation
	Err       error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("operation %c at index %d from (%s): %v", e.Operation, e.Index, e.From, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}
