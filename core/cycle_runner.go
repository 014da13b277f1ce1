package core

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// CycleWork is invoked once per loop iteration of a CycleRunner.
// Returning ErrCycleDone ends the loop gracefully from inside; any other
// error is routed through the runner's error policy.
type CycleWork func(ctx context.Context) error

// CycleRunner repeatedly invokes its work callable on a dedicated managed
// thread until a cooperative stop is requested, the work returns
// ErrCycleDone, the error policy gives up, or the thread is
// force-terminated. The inter-iteration delay is adjustable while running.
//
// State machine: Created -> Running (<-> Paused) -> Stopping -> Stopped,
// with Terminated and Errored as alternate terminal states.
type CycleRunner struct {
	name   string
	work   CycleWork
	cfg    *RunnerConfig
	thread *ManagedThread
	status statusCell

	interval      atomic.Int64 // nanoseconds
	stopRequested atomic.Bool
	iterations    atomic.Uint64
	workErrors    atomic.Uint64

	// resumeCh is non-nil exactly while the loop is paused; closing it
	// releases the loop. Guarded by pauseMu together with the
	// Paused<->Running status transitions.
	pauseMu  sync.Mutex
	resumeCh chan struct{}

	obsMu      sync.Mutex
	startedAt  time.Time
	lastWorkAt time.Time
}

// NewCycleRunner creates a runner invoking work every interval. An empty
// name gets a generated one; a nil config selects defaults. The thread is
// not spawned until Start.
func NewCycleRunner(name string, work CycleWork, interval time.Duration, cfg *RunnerConfig) *CycleRunner {
	if name == "" {
		name = generateName("cycle")
	}
	c := cfg.withDefaults()
	r := &CycleRunner{
		name:   name,
		work:   work,
		cfg:    c,
		thread: NewManagedThread(name, c.Logger),
	}
	r.interval.Store(int64(interval))
	return r
}

// Name returns the runner's label.
func (r *CycleRunner) Name() string {
	return r.name
}

// Status returns the current lifecycle status.
func (r *CycleRunner) Status() RunnerStatus {
	return r.status.load()
}

// IsRunning reports whether the loop is still in charge (Running, Paused
// or Stopping). It flips to false as soon as a terminal state is reached.
func (r *CycleRunner) IsRunning() bool {
	switch r.status.load() {
	case StatusRunning, StatusPaused, StatusStopping:
		return true
	default:
		return false
	}
}

// IsAlive reports whether the runner's thread is still running.
func (r *CycleRunner) IsAlive() bool {
	return r.thread.IsAlive()
}

// Iterations returns the number of iterations begun so far.
func (r *CycleRunner) Iterations() uint64 {
	return r.iterations.Load()
}

// Interval returns the current inter-iteration delay.
func (r *CycleRunner) Interval() time.Duration {
	return time.Duration(r.interval.Load())
}

// SetInterval adjusts the inter-iteration delay. Takes effect from the
// next sleep; a sleep already in progress keeps its old duration.
func (r *CycleRunner) SetInterval(d time.Duration) {
	r.interval.Store(int64(d))
}

// Start spawns the managed thread running the loop.
// Returns ErrAlreadyStarted if the runner ever left Created.
func (r *CycleRunner) Start() error {
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

// Stop requests a cooperative stop and returns without blocking. No new
// iteration begins afterwards; an in-flight iteration or sleep interval
// still runs out. Returns ErrNotStarted before Start; a no-op once
// terminal.
func (r *CycleRunner) Stop() error {
	if r.status.load() == StatusCreated {
		return ErrNotStarted
	}
	r.stopRequested.Store(true)
	if !r.status.transition(StatusRunning, StatusStopping) {
		r.status.transition(StatusPaused, StatusStopping)
	}
	r.releasePause()
	r.cfg.Logger.Debug("stop requested", F("runner", r.name))
	return nil
}

// Pause parks the loop at its next safe point. Pausing a runner that is
// not Running is logged and ignored, matching Resume.
func (r *CycleRunner) Pause() {
	r.pauseMu.Lock()
	defer r.pauseMu.Unlock()
	if !r.status.transition(StatusRunning, StatusPaused) {
		r.cfg.Logger.Warn("cannot pause runner",
			F("runner", r.name), F("status", r.status.load()))
		return
	}
	r.resumeCh = make(chan struct{})
	r.cfg.Logger.Debug("runner paused", F("runner", r.name))
}

// Resume releases a paused loop.
func (r *CycleRunner) Resume() {
	r.pauseMu.Lock()
	defer r.pauseMu.Unlock()
	if !r.status.transition(StatusPaused, StatusRunning) {
		r.cfg.Logger.Warn("cannot resume runner",
			F("runner", r.name), F("status", r.status.load()))
		return
	}
	if r.resumeCh != nil {
		close(r.resumeCh)
		r.resumeCh = nil
	}
	r.cfg.Logger.Debug("runner resumed", F("runner", r.name))
}

// Terminate forces an immediate kill regardless of loop position. The
// runner's status flips to Terminated as soon as the request is accepted;
// the thread unwinds at its next safe point. Returns ErrNotStarted before
// Start; a no-op on an already-dead thread.
func (r *CycleRunner) Terminate() error {
	if r.status.load() == StatusCreated {
		return ErrNotStarted
	}
	if err := r.thread.Terminate(); err != nil {
		return err
	}
	r.status.storeTerminal(StatusTerminated)
	r.releasePause()
	return nil
}

// Join blocks until the runner's thread exits or timeout elapses
// (0 waits forever).
func (r *CycleRunner) Join(timeout time.Duration) error {
	return r.thread.Join(timeout)
}

// Snapshot reports current observability state.
func (r *CycleRunner) Snapshot() RunnerSnapshot {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	return RunnerSnapshot{
		Name:       r.name,
		Kind:       "cycle",
		Status:     r.status.load(),
		Alive:      r.thread.IsAlive(),
		Iterations: r.iterations.Load(),
		WorkErrors: r.workErrors.Load(),
		StartedAt:  r.startedAt,
		LastWorkAt: r.lastWorkAt,
	}
}

// run is the managed thread's body.
func (r *CycleRunner) run(ctx context.Context) {
	final := r.loop(ctx)
	if ctx.Err() != nil {
		final = StatusTerminated
	}
	r.status.storeTerminal(final)
	actual := r.status.load()

	r.cfg.Logger.Debug("runner loop exited",
		F("runner", r.name), F("status", actual), F("iterations", r.iterations.Load()))
	r.cfg.Metrics.RecordTermination(r.name, actual.String())

	if r.cfg.Registry != nil {
		r.cfg.Registry.unregister(r.name)
	}
}

func (r *CycleRunner) loop(ctx context.Context) RunnerStatus {
	consecutive := 0

	for {
		// Safe point: pending kill and stop requests are observed here.
		if ctx.Err() != nil {
			return StatusTerminated
		}
		if r.stopRequested.Load() {
			return StatusStopped
		}
		if !r.awaitResume(ctx) {
			return StatusTerminated
		}
		if ctx.Err() != nil {
			return StatusTerminated
		}
		if r.stopRequested.Load() {
			return StatusStopped
		}

		iter := r.iterations.Add(1)
		err := r.invoke(ctx, iter)

		r.obsMu.Lock()
		r.lastWorkAt = time.Now()
		r.obsMu.Unlock()
		r.cfg.Metrics.RecordIteration(r.name)

		delay := time.Duration(r.interval.Load())
		switch {
		case err == nil:
			consecutive = 0
		case errors.Is(err, ErrCycleDone):
			r.cfg.Logger.Debug("work requested cycle end",
				F("runner", r.name), F("iteration", iter))
			return StatusStopped
		default:
			consecutive++
			r.workErrors.Add(1)
			r.cfg.Metrics.RecordWorkError(r.name)
			r.cfg.Logger.Error("iteration failed",
				F("runner", r.name), F("iteration", iter), F("error", err))
			if r.cfg.ErrorHandler != nil {
				r.cfg.ErrorHandler(r.name, iter, err)
			}
			if r.cfg.StopOnError {
				return StatusErrored
			}
			if max := r.cfg.Backoff.MaxConsecutive; max > 0 && consecutive >= max {
				r.cfg.Logger.Error("consecutive failure limit reached, stopping loop",
					F("runner", r.name), F("failures", consecutive))
				return StatusErrored
			}
			if d := r.cfg.Backoff.delayFor(consecutive); d > 0 {
				delay = d
			}
		}

		if delay > 0 {
			if !r.sleep(ctx, delay) {
				return StatusTerminated
			}
		}
	}
}

// invoke runs one iteration with panic recovery. A panic becomes a
// WorkError wrapping a PanicError, routed through the PanicHandler and
// the regular error policy.
func (r *CycleRunner) invoke(ctx context.Context, iter uint64) (err error) {
	start := time.Now()
	defer func() {
		r.cfg.Metrics.RecordWorkDuration(r.name, time.Since(start))
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			r.cfg.PanicHandler.HandlePanic(r.name, iter, rec, stack)
			err = &WorkError{
				Runner:    r.name,
				Iteration: iter,
				Cause:     &PanicError{Value: rec, Stack: stack},
			}
		}
	}()

	if err = r.work(ctx); err != nil && !errors.Is(err, ErrCycleDone) {
		err = &WorkError{Runner: r.name, Iteration: iter, Cause: err}
	}
	return err
}

// awaitResume blocks while the runner is paused. Returns false if the
// kill context fired while waiting.
func (r *CycleRunner) awaitResume(ctx context.Context) bool {
	r.pauseMu.Lock()
	ch := r.resumeCh
	r.pauseMu.Unlock()

	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *CycleRunner) releasePause() {
	r.pauseMu.Lock()
	defer r.pauseMu.Unlock()
	if r.resumeCh != nil {
		close(r.resumeCh)
		r.resumeCh = nil
	}
}

// sleep waits d or until the kill context fires; false means killed.
func (r *CycleRunner) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
