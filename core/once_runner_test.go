package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestOnceRunner_ResultValue verifies the happy path and idempotent reads
// Given: Work that returns 42
// When: The runner starts and Result is called three times
// Then: Every call returns 42 and the status is Finished
func TestOnceRunner_ResultValue(t *testing.T) {
	// Arrange
	r := NewOnceRunner("once-value", func(ctx context.Context) (int, error) {
		return 42, nil
	}, quietConfig())

	// Act
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Assert
	for i := 0; i < 3; i++ {
		v, err := r.Result(time.Second)
		if err != nil {
			t.Fatalf("Result #%d failed: %v", i, err)
		}
		if v != 42 {
			t.Errorf("Result #%d = %d, want 42", i, v)
		}
	}
	if got := r.Status(); got != StatusFinished {
		t.Errorf("Status() = %v, want finished", got)
	}
}

// TestOnceRunner_WorkError verifies error propagation
// Given: Work that returns an error
// When: Result is called
// Then: A WorkError wrapping the original cause is returned and the
// configured ErrorHandler observed it
func TestOnceRunner_WorkError(t *testing.T) {
	// Arrange
	cause := errors.New("boom")
	var handled atomic.Int32
	cfg := quietConfig()
	cfg.ErrorHandler = func(runnerName string, iteration uint64, err error) {
		handled.Add(1)
	}
	r := NewOnceRunner("once-error", func(ctx context.Context) (int, error) {
		return 0, cause
	}, cfg)

	// Act
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, err := r.Result(time.Second)

	// Assert
	var workErr *WorkError
	if !errors.As(err, &workErr) {
		t.Fatalf("Result error = %v, want *WorkError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Result error does not wrap the original cause: %v", err)
	}
	if got := r.Status(); got != StatusErrored {
		t.Errorf("Status() = %v, want errored", got)
	}
	if handled.Load() != 1 {
		t.Errorf("error handler calls = %d, want 1", handled.Load())
	}
}

// TestOnceRunner_TerminateBlockedWork verifies forced kill of stuck work
// Given: Work that sleeps 5 seconds without checking its context, then returns 42
// When: Terminate is called 100ms after Start
// Then: Result(1s) returns ErrTerminated, never 42
func TestOnceRunner_TerminateBlockedWork(t *testing.T) {
	// Arrange
	r := NewOnceRunner("once-stuck", func(ctx context.Context) (int, error) {
		time.Sleep(5 * time.Second) // deliberately ignores ctx
		return 42, nil
	}, quietConfig())

	// Act
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := r.Terminate(); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	v, err := r.Result(time.Second)

	// Assert
	if !errors.Is(err, ErrTerminated) {
		t.Fatalf("Result = (%d, %v), want ErrTerminated", v, err)
	}
	if got := r.Status(); got != StatusTerminated {
		t.Errorf("Status() = %v, want terminated", got)
	}

	// The runner's own thread must be reaped even though the abandoned
	// work callable is still sleeping.
	if err := r.Join(time.Second); err != nil {
		t.Errorf("Join after terminate = %v, want nil", err)
	}
}

// TestOnceRunner_TerminateCooperativeWork verifies ctx-aware work unwinds
// Given: Work blocked on its context
// When: Terminate is called
// Then: Result resolves to ErrTerminated and the work observed the kill cause
func TestOnceRunner_TerminateCooperativeWork(t *testing.T) {
	// Arrange
	var cause atomic.Value
	r := NewOnceRunner("once-coop", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		cause.Store(context.Cause(ctx))
		return 0, ctx.Err()
	}, quietConfig())

	// Act
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Terminate(); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	_, err := r.Result(time.Second)

	// Assert
	if !errors.Is(err, ErrTerminated) {
		t.Fatalf("Result = %v, want ErrTerminated", err)
	}
	if err := r.Join(time.Second); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	got, _ := cause.Load().(error)
	if !errors.Is(got, ErrTerminated) {
		t.Errorf("work observed cause %v, want ErrTerminated", got)
	}
}

// TestOnceRunner_ResultTimeout verifies the Result deadline
// Given: Work blocked on its context
// When: Result is called with a 30ms timeout
// Then: ErrResultTimeout is returned and a later Result still resolves
func TestOnceRunner_ResultTimeout(t *testing.T) {
	// Arrange
	r := NewOnceRunner("once-slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, quietConfig())
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Act
	_, err := r.Result(30 * time.Millisecond)

	// Assert
	if !errors.Is(err, ErrResultTimeout) {
		t.Fatalf("Result = %v, want ErrResultTimeout", err)
	}

	if err := r.Terminate(); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if _, err := r.Result(time.Second); !errors.Is(err, ErrTerminated) {
		t.Errorf("Result after terminate = %v, want ErrTerminated", err)
	}
}

// TestOnceRunner_LifecycleGuards verifies the state-machine guards
// Given: A fresh runner
// When: Result and Terminate are called before Start, and Start twice
// Then: ErrNotStarted and ErrAlreadyStarted are surfaced
func TestOnceRunner_LifecycleGuards(t *testing.T) {
	r := NewOnceRunner("once-guards", func(ctx context.Context) (int, error) {
		return 1, nil
	}, quietConfig())

	if _, err := r.Result(10 * time.Millisecond); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Result before Start = %v, want ErrNotStarted", err)
	}
	if err := r.Terminate(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Terminate before Start = %v, want ErrNotStarted", err)
	}
	if r.IsAlive() {
		t.Error("IsAlive() = true before Start, want false")
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	if _, err := r.Result(time.Second); err != nil {
		t.Fatalf("Result failed: %v", err)
	}
}

// TestOnceRunner_PanicBecomesWorkError verifies panic conversion
// Given: Work that panics
// When: Result is called
// Then: A WorkError wrapping a PanicError is returned and the panic
// handler was invoked with the panic value
func TestOnceRunner_PanicBecomesWorkError(t *testing.T) {
	// Arrange
	handler := &recordingPanicHandler{}
	cfg := quietConfig()
	cfg.PanicHandler = handler
	r := NewOnceRunner("once-panic", func(ctx context.Context) (int, error) {
		panic("kaboom")
	}, cfg)

	// Act
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, err := r.Result(time.Second)

	// Assert
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Result error = %v, want wrapped *PanicError", err)
	}
	if panicErr.Value != "kaboom" {
		t.Errorf("panic value = %v, want kaboom", panicErr.Value)
	}
	if handler.calls.Load() != 1 {
		t.Errorf("panic handler calls = %d, want 1", handler.calls.Load())
	}
}

// TestOnceRunner_TerminateAfterFinish verifies terminate is a terminal no-op
// Given: A runner that already finished
// When: Terminate is called twice
// Then: Both calls succeed and the result stays the finished value
func TestOnceRunner_TerminateAfterFinish(t *testing.T) {
	// Arrange
	r := NewOnceRunner("once-done", func(ctx context.Context) (int, error) {
		return 7, nil
	}, quietConfig())
	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.Result(time.Second); err != nil {
		t.Fatalf("Result failed: %v", err)
	}

	// Act & Assert
	if err := r.Terminate(); err != nil {
		t.Errorf("first Terminate after finish = %v, want nil", err)
	}
	if err := r.Terminate(); err != nil {
		t.Errorf("second Terminate after finish = %v, want nil", err)
	}
	if v, err := r.Result(time.Second); err != nil || v != 7 {
		t.Errorf("Result after terminate = (%d, %v), want (7, nil)", v, err)
	}
}

// =============================================================================
// Test helpers
// =============================================================================

func quietConfig() *RunnerConfig {
	cfg := DefaultRunnerConfig()
	cfg.Logger = NewNoOpLogger()
	return cfg
}

type recordingPanicHandler struct {
	calls atomic.Int32
}

func (h *recordingPanicHandler) HandlePanic(runnerName string, iteration uint64, panicInfo any, stackTrace []byte) {
	h.calls.Add(1)
}
