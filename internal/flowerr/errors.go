// Package flowerr defines the error taxonomy shared by the dataflow core.
//
// Structural errors are sentinels, wrapped with context via fmt.Errorf("%w")
// and checked by callers with errors.Is. A failure raised by a node's own
// logic is carried by *ComputeError, which names the node and keeps the
// underlying cause reachable through errors.Unwrap.
package flowerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural failures. None of the operations returning
// them mutate graph state.
var (
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrDirectionMismatch      = errors.New("direction mismatch")
	ErrDuplicatePinName       = errors.New("duplicate pin name")
	ErrCycleDetected          = errors.New("cycle detected")
	ErrExecutionDepthExceeded = errors.New("execution depth exceeded")
	ErrNodeComputeFailure     = errors.New("node compute failure")
	ErrUnknownNode            = errors.New("unknown node")
	ErrUnknownPin             = errors.New("unknown pin")
	ErrUnknownType            = errors.New("unknown type")
	ErrDuplicateType          = errors.New("type already registered")
	ErrRegistrySealed         = errors.New("registry is sealed")
	ErrPinOccupied            = errors.New("input pin already connected")
	ErrAlreadyConnected       = errors.New("pins already connected")
	ErrNotConnected           = errors.New("pins not connected")
	ErrNodeFailed             = errors.New("node is in failed state")
	ErrNotCallable            = errors.New("node is not callable")
	ErrDuplicateNode          = errors.New("node already exists")
	ErrDynamicPinsUnsupported = errors.New("node does not accept dynamic pins")
)

// ErrIncompatibleType is returned when two pins cannot be connected because
// their registered types are not compatible. It is a TypeMismatch.
var ErrIncompatibleType = fmt.Errorf("%w: incompatible pin types", ErrTypeMismatch)

// ErrSelfConnection is returned when both ends of a connection belong to the
// same node. A self-loop is the smallest possible cycle.
var ErrSelfConnection = fmt.Errorf("%w: pin connects back to its own node", ErrCycleDetected)

// ComputeError records a failure raised by a node's compute logic.
type ComputeError struct {
	NodeID   string
	NodeName string
	NodeType string
	Cause    error
}

// Error implements the error interface.
func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: node %q (%s, %s): %v", ErrNodeComputeFailure, e.NodeName, e.NodeID, e.NodeType, e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *ComputeError) Unwrap() error {
	return e.Cause
}

// Is reports ErrNodeComputeFailure as a match so callers can check the class
// of failure without caring about the cause.
func (e *ComputeError) Is(target error) bool {
	return target == ErrNodeComputeFailure
}

// PanicError wraps a value recovered from a panicking compute call.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("compute panicked: %v", e.Value)
}
