package core

import "time"

// RunnerSnapshot represents point-in-time observability state for a runner.
type RunnerSnapshot struct {
	Name       string
	Kind       string // "once" or "cycle"
	Status     RunnerStatus
	Alive      bool
	Iterations uint64
	WorkErrors uint64
	StartedAt  time.Time
	LastWorkAt time.Time
}

// Observable is implemented by runners that can report a snapshot.
type Observable interface {
	Snapshot() RunnerSnapshot
}
