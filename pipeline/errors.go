package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Sentinel error kinds, matched with errors.Is. These mirror the
// exception hierarchy of the originating C++ library, translated into
// Go's error-value idiom instead of panicking control flow.
var (
	// ErrAssignmentMismatch is returned when accept() is given an output
	// or value whose payload type does not match the port's declared type.
	ErrAssignmentMismatch = errors.New("pipeline: payload type mismatch on assignment")

	// ErrNullPointer is returned when an input or output is dereferenced
	// while unvalued.
	ErrNullPointer = errors.New("pipeline: dereference of an unvalued port")

	// ErrNotEnoughInputs/ErrNotEnoughOutputs are returned when a port is
	// looked up by an out-of-range ordinal.
	ErrNotEnoughInputs  = errors.New("pipeline: not enough inputs")
	ErrNotEnoughOutputs = errors.New("pipeline: not enough outputs")

	// ErrNoSuchInput/ErrNoSuchOutput are returned when a port is looked up
	// by a name that was never registered.
	ErrNoSuchInput  = errors.New("pipeline: no such input")
	ErrNoSuchOutput = errors.New("pipeline: no such output")
)

// AssignmentError reports the concrete types involved in a failed accept.
type AssignmentError struct {
	From, To string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("pipeline: cannot assign value of type %s to port of type %s", e.From, e.To)
}

func (e *AssignmentError) Unwrap() error { return ErrAssignmentMismatch }

// NamedPortError reports a port name that was never registered.
type NamedPortError struct {
	Name string
	Kind error // ErrNoSuchInput or ErrNoSuchOutput
}

func (e *NamedPortError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind, e.Name)
}

func (e *NamedPortError) Unwrap() error { return e.Kind }

// IndexedPortError reports a port ordinal that is out of range.
type IndexedPortError struct {
	Index, Len int
	Kind       error // ErrNotEnoughInputs or ErrNotEnoughOutputs
}

func (e *IndexedPortError) Error() string {
	return fmt.Sprintf("%s: index %d, have %d", e.Kind, e.Index, e.Len)
}

func (e *IndexedPortError) Unwrap() error { return e.Kind }

// CombineErrors folds multiple independent failures from a single
// updateOutputs call (e.g. two required inputs each failing their own
// validation) into one error that still satisfies errors.Is against each
// original, instead of a node reporting only the first problem it found.
// The combined error is what a node's compute function should return;
// UpdateInputs and ValueHandle.Get return it to their caller, and an
// output's Update callback logs it once via logr.Logger.Error.
func CombineErrors(errs ...error) error {
	return multierr.Combine(errs...)
}
