package core

import (
	"context"
	"runtime/debug"
	"sync"
	"time"
)

// Work is a unit of work executed exactly once, producing a value of type
// T or an error. It receives the runner's kill context and may (but is
// not required to) observe ctx.Done() to become terminable mid-call.
type Work[T any] func(ctx context.Context) (T, error)

// OnceRunner runs its work callable exactly one time on a dedicated
// managed thread, captures the return value or error, and hands it out
// through Result. The result slot is written exactly once; reads after
// resolution are idempotent.
//
// State machine: Created -> Running -> {Finished, Errored, Terminated}.
type OnceRunner[T any] struct {
	name   string
	work   Work[T]
	cfg    *RunnerConfig
	thread *ManagedThread
	status statusCell

	// One-shot result slot: value/err are written exactly once, strictly
	// before completed is closed. Readers block on completed first.
	completed chan struct{}
	resolve   sync.Once
	value     T
	err       error

	obsMu      sync.Mutex
	startedAt  time.Time
	lastWorkAt time.Time
	workErrors uint64
}

// NewOnceRunner creates a runner for work. An empty name gets a generated
// one; a nil config selects defaults. The thread is not spawned until
// Start.
func NewOnceRunner[T any](name string, work Work[T], cfg *RunnerConfig) *OnceRunner[T] {
	if name == "" {
		name = generateName("once")
	}
	c := cfg.withDefaults()
	return &OnceRunner[T]{
		name:      name,
		work:      work,
		cfg:       c,
		thread:    NewManagedThread(name, c.Logger),
		completed: make(chan struct{}),
	}
}

// Name returns the runner's label.
func (r *OnceRunner[T]) Name() string {
	return r.name
}

// Status returns the current lifecycle status.
func (r *OnceRunner[T]) Status() RunnerStatus {
	return r.status.load()
}

// IsAlive reports whether the runner's thread is still running.
func (r *OnceRunner[T]) IsAlive() bool {
	return r.thread.IsAlive()
}

// Start spawns the managed thread executing the work callable.
// Returns ErrAlreadyStarted if the runner ever left Created.
func (r *OnceRunner[T]) Start() error {
	if !r.status.transition(StatusCreated, StatusRunning) {
		return ErrAlreadyStarted
	}

	r.obsMu.Lock()
	r.startedAt = time.Now()
	r.obsMu.Unlock()

	if err := r.thread.Start(r.run); err != nil {
		return err
	}
	if r.cfg.Registry != nil {
		r.cfg.Registry.register(r)
	}
	return nil
}

// Terminate requests a forced kill of the running work.
// Returns ErrNotStarted before Start; after a terminal state it is a
// successful no-op.
func (r *OnceRunner[T]) Terminate() error {
	if r.status.load() == StatusCreated {
		return ErrNotStarted
	}
	return r.thread.Terminate()
}

// Join blocks until the runner's thread exits or timeout elapses
// (0 waits forever).
func (r *OnceRunner[T]) Join(timeout time.Duration) error {
	return r.thread.Join(timeout)
}

// Result blocks until the work reaches a terminal state or timeout
// elapses (0 waits forever), then returns the stored value or error:
// a *WorkError if the callable returned an error or panicked,
// ErrTerminated if it was killed first, ErrResultTimeout on deadline.
// Once resolved, Result returns the same outcome on every call.
func (r *OnceRunner[T]) Result(timeout time.Duration) (T, error) {
	var zero T
	if r.status.load() == StatusCreated {
		return zero, ErrNotStarted
	}

	if timeout <= 0 {
		<-r.completed
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-r.completed:
		case <-timer.C:
			return zero, ErrResultTimeout
		}
	}
	return r.value, r.err
}

// Snapshot reports current observability state.
func (r *OnceRunner[T]) Snapshot() RunnerSnapshot {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	return RunnerSnapshot{
		Name:       r.name,
		Kind:       "once",
		Status:     r.status.load(),
		Alive:      r.thread.IsAlive(),
		WorkErrors: r.workErrors,
		StartedAt:  r.startedAt,
		LastWorkAt: r.lastWorkAt,
	}
}

type onceOutcome[T any] struct {
	value T
	err   error
}

// run is the managed thread's body. The work callable executes on a
// child goroutine so that a kill request resolves the result immediately
// even while the callable is blocked in code that ignores its context;
// the abandoned call unwinds whenever it next observes ctx.
func (r *OnceRunner[T]) run(ctx context.Context) {
	started := time.Now()
	out := make(chan onceOutcome[T], 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				r.cfg.PanicHandler.HandlePanic(r.name, 0, rec, stack)
				out <- onceOutcome[T]{err: &WorkError{
					Runner: r.name,
					Cause:  &PanicError{Value: rec, Stack: stack},
				}}
			}
		}()
		v, err := r.work(ctx)
		if err != nil {
			err = &WorkError{Runner: r.name, Cause: err}
		}
		out <- onceOutcome[T]{value: v, err: err}
	}()

	var o onceOutcome[T]
	select {
	case <-ctx.Done():
		r.publishTerminated()
		return
	case o = <-out:
	}

	// Terminated wins once a kill request was accepted, even if the work
	// finished or failed in the same instant.
	if context.Cause(ctx) != nil {
		if o.err != nil {
			r.cfg.Logger.Debug("work error lost race against termination",
				F("runner", r.name), F("error", o.err))
		}
		r.publishTerminated()
		return
	}

	r.cfg.Metrics.RecordWorkDuration(r.name, time.Since(started))
	if o.err != nil {
		r.publish(o.value, o.err, StatusErrored)
	} else {
		r.publish(o.value, nil, StatusFinished)
	}
}

func (r *OnceRunner[T]) publishTerminated() {
	var zero T
	r.publish(zero, ErrTerminated, StatusTerminated)
}

func (r *OnceRunner[T]) publish(v T, err error, st RunnerStatus) {
	r.resolve.Do(func() {
		r.value = v
		r.err = err
		r.status.storeTerminal(st)

		r.obsMu.Lock()
		r.lastWorkAt = time.Now()
		if err != nil {
			r.workErrors++
		}
		r.obsMu.Unlock()

		switch st {
		case StatusErrored:
			r.cfg.Logger.Error("work failed", F("runner", r.name), F("error", err))
			r.cfg.Metrics.RecordWorkError(r.name)
			if r.cfg.ErrorHandler != nil {
				r.cfg.ErrorHandler(r.name, 0, err)
			}
		case StatusTerminated:
			r.cfg.Logger.Warn("work terminated", F("runner", r.name))
		default:
			r.cfg.Logger.Debug("work finished", F("runner", r.name))
		}
		r.cfg.Metrics.RecordTermination(r.name, st.String())

		if r.cfg.Registry != nil {
			r.cfg.Registry.unregister(r.name)
		}

		close(r.completed)
	})
}
