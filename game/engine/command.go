package engine

import (
	"fmt"
	"regexp"
)

// Operations understood by ApplySequence
const (
	OpLeft    = 'L'
	OpRight   = 'R'
	OpForward = 'M'
)

var operationsPattern = regexp.MustCompile(`^[MRL]*$`)

// ValidateOperations checks that ops only contains L, R and M.
// The empty string is valid.
func ValidateOperations(ops string) error {
	if operationsPattern.MatchString(ops) {
		return nil
	}
	for i := 0; i < len(ops); i++ {
		switch ops[i] {
		case OpLeft, OpRight, OpForward:
		default:
			return fmt.Errorf("%w: %q at index %d, only 'L', 'M' or 'R' accepted", ErrInvalidOperation, ops[i], i)
		}
	}
	return fmt.Errorf("%w: only 'L', 'M' or 'R' accepted", ErrInvalidOperation)
}

// ApplySequence runs ops against the rover in order.
//
// The whole string is validated before anything is applied. The first failing
// operation aborts the sequence; the rover has then already been returned to
// its initial placement and the returned *SequenceError wraps the failure kind.
// Recording the final position in the grid is left to the caller.
func ApplySequence(r *Rover, ops string) error {
	if err := ValidateOperations(ops); err != nil {
		return err
	}

	for i := 0; i < len(ops); i++ {
		from := r.Placement()

		var err error
		switch ops[i] {
		case OpLeft:
			r.TurnLeft()
		case OpRight:
			r.TurnRight()
		case OpForward:
			err = r.MoveForward()
		}

		if err != nil {
			return &SequenceError{Index: i, Operation: ops[i], From: from, Err: err}
		}
	}
	return nil
}
