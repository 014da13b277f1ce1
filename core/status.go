package core

import "sync/atomic"

// RunnerStatus describes where a runner is in its lifecycle.
//
// The happy paths are:
//   - once:  Created -> Running -> Finished
//   - cycle: Created -> Running (<-> Paused) -> Stopping -> Stopped
//
// Terminated and Errored are alternate terminal states reachable from any
// non-terminal state via a forced kill or a fatal work error.
type RunnerStatus int32

const (
	StatusCreated RunnerStatus = iota
	StatusRunning
	StatusPaused
	StatusStopping
	StatusStopped
	StatusFinished
	StatusTerminated
	StatusErrored
)

func (s RunnerStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	case StatusFinished:
		return "finished"
	case StatusTerminated:
		return "terminated"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status can never change again.
func (s RunnerStatus) Terminal() bool {
	switch s {
	case StatusStopped, StatusFinished, StatusTerminated, StatusErrored:
		return true
	default:
		return false
	}
}

// statusCell holds a RunnerStatus with atomic transitions.
// Invariant: once a terminal status is stored it is never overwritten,
// so the first terminal event (kill vs natural exit) wins the race.
type statusCell struct {
	v atomic.Int32
}

func (c *statusCell) load() RunnerStatus {
	return RunnerStatus(c.v.Load())
}

func (c *statusCell) transition(from, to RunnerStatus) bool {
	return c.v.CompareAndSwap(int32(from), int32(to))
}

// storeTerminal records a terminal status unless one is already set.
// Returns true if this call performed the transition.
func (c *statusCell) storeTerminal(to RunnerStatus) bool {
	for {
		cur := c.load()
		if cur.Terminal() {
			return false
		}
		if c.v.CompareAndSwap(int32(cur), int32(to)) {
			return true
		}
	}
}
