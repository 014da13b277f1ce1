package core

import (
	"context"
	"sync/atomic"
)

// ThreadIdentity is an opaque handle identifying one live managed thread.
// It is created by ManagedThread at spawn time and held privately by its
// owner; it is never placed in any shared table, so a kill request cannot
// target a stale or foreign thread. The zero value is invalid.
type ThreadIdentity struct {
	id   uint64
	kill context.CancelCauseFunc
	done <-chan struct{}
}

// ID returns the numeric thread id, for logging only.
func (id ThreadIdentity) ID() uint64 {
	return id.id
}

func (id ThreadIdentity) valid() bool {
	return id.kill != nil
}

var threadSeq atomic.Uint64

// ForceTerminator delivers best-effort kill requests to managed threads.
//
// The mechanism this models injects an asynchronous exception into a
// running interpreter thread. Go has no safe equivalent: a goroutine
// cannot be preempted from outside. The same contract is delivered here
// as a cancellation cause on the context handed to the work callable,
// observed at safe points (loop-iteration boundaries, and the select
// guarding an in-flight once invocation). Work blocked in code that
// ignores its context keeps its goroutine alive until it returns; the
// owning runner still resolves to Terminated immediately, and the
// abandoned call's side effects may be partially applied. This is a
// semantic difference from true mid-call preemption, not an oversight.
type ForceTerminator struct {
	logger Logger
}

// NewForceTerminator creates a ForceTerminator logging through logger.
func NewForceTerminator(logger Logger) *ForceTerminator {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ForceTerminator{logger: logger}
}

// Terminate requests asynchronous termination of the thread identified by
// id. The request never blocks and does not wait for the target to
// unwind. Terminating a thread that already exited is a successful no-op;
// only a zero (never-spawned) identity is an error.
func (f *ForceTerminator) Terminate(id ThreadIdentity) error {
	if !id.valid() {
		return &TerminationError{ThreadID: id.id, Reason: "invalid thread identity"}
	}

	select {
	case <-id.done:
		// Already exited, nothing to deliver.
		f.logger.Debug("terminate on dead thread is a no-op", F("thread", id.id))
		return nil
	default:
	}

	id.kill(ErrTerminated)
	f.logger.Debug("termination requested", F("thread", id.id))
	return nil
}
