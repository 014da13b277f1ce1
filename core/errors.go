package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start when the runner left the
	// Created state before.
	ErrAlreadyStarted = errors.New("threadctl: already started")

	// ErrNotStarted is returned by lifecycle operations invoked before Start.
	ErrNotStarted = errors.New("threadctl: not started")

	// ErrJoinTimeout is returned by Join when the deadline elapses while
	// the thread keeps running.
	ErrJoinTimeout = errors.New("threadctl: join timed out")

	// ErrResultTimeout is returned by Result when the deadline elapses
	// before the work reaches a terminal state.
	ErrResultTimeout = errors.New("threadctl: result wait timed out")

	// ErrTerminated is the terminal result of work that was forcibly
	// killed before completing. Distinct from a work error so callers can
	// tell "errored" from "was cut off".
	ErrTerminated = errors.New("threadctl: terminated before completion")

	// ErrCycleDone may be returned by a cycle work callable to end the
	// loop gracefully from inside. The runner reaches Stopped and the
	// sentinel is not reported as a work error.
	ErrCycleDone = errors.New("threadctl: cycle done")
)

// WorkError wraps an error produced by the work callable, either returned
// directly or recovered from a panic.
type WorkError struct {
	Runner    string
	Iteration uint64 // 0 for once runners
	Cause     error
}

func (e *WorkError) Error() string {
	if e.Iteration > 0 {
		return fmt.Sprintf("threadctl: work failed in runner %q (iteration %d): %v", e.Runner, e.Iteration, e.Cause)
	}
	return fmt.Sprintf("threadctl: work failed in runner %q: %v", e.Runner, e.Cause)
}

func (e *WorkError) Unwrap() error {
	return e.Cause
}

// PanicError carries a panic value recovered from the work callable along
// with the stack captured at the recovery point.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("threadctl: work panicked: %v", e.Value)
}

// TerminationError reports a kill request that could not be delivered.
// Non-fatal: Terminate is idempotent, the caller may retry or ignore.
type TerminationError struct {
	ThreadID uint64
	Reason   string
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("threadctl: cannot terminate thread %d: %s", e.ThreadID, e.Reason)
}
