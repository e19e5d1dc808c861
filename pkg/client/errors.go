package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for socket and program conditions.
var (
	// ErrNotConnected is returned when sending while the transport is not open.
	ErrNotConnected = errors.New("client: not connected")

	// ErrSocketClosed is returned when using a socket after Close.
	ErrSocketClosed = errors.New("client: socket closed")

	// ErrUnknownProgram is returned when removing a program the socket does
	// not track. It signals an inconsistent registry.
	ErrUnknownProgram = errors.New("client: unknown program")

	// ErrInvalidTransition is returned when a program is asked to move to a
	// state its lifecycle does not allow.
	ErrInvalidTransition = errors.New("client: invalid state transition")

	// ErrNotJoined is returned when a program needs a server id it does not
	// have yet.
	ErrNotJoined = errors.New("client: program not joined")

	// ErrRemoveRoot is returned when a patch tries to remove a program root.
	ErrRemoveRoot = errors.New("client: cannot remove program root")

	// ErrInvalidMount is returned for a mount without root or name.
	ErrInvalidMount = errors.New("client: invalid mount")

	// ErrLoopStopped is returned by Loop.Do once the loop has stopped.
	ErrLoopStopped = errors.New("client: loop stopped")
)

// ProgramError wraps an error with program context for debugging.
type ProgramError struct {
	Program   string
	ProgramID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with program context.
func (e *ProgramError) Error() string {
	if e.ProgramID == "" {
		return fmt.Sprintf("client: program %s: %s: %v", e.Program, e.Op, e.Err)
	}
	return fmt.Sprintf("client: program %s (%s): %s: %v", e.Program, e.ProgramID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *ProgramError) Unwrap() error {
	return e.Err
}

// NewProgramError creates a ProgramError for p.
func NewProgramError(p *Program, op string, err error) *ProgramError {
	return &ProgramError{
		Program:   p.name,
		ProgramID: p.id,
		Op:        op,
		Err:       err,
	}
}
