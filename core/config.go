package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling work panics
// =============================================================================

// PanicHandler is called when a work callable panics during execution.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a work callable panics.
	//
	// Parameters:
	// - runnerName: The name of the runner whose work panicked
	// - iteration: The loop iteration (0 for once runners)
	// - panicInfo: The panic value recovered from the work callable
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(runnerName string, iteration uint64, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(runnerName string, iteration uint64, panicInfo any, stackTrace []byte) {
	if iteration > 0 {
		fmt.Printf("[Runner %s @ iteration %d] Panic: %v\nStack trace:\n%s",
			runnerName, iteration, panicInfo, stackTrace)
	} else {
		fmt.Printf("[Runner %s] Panic: %v\nStack trace:\n%s",
			runnerName, panicInfo, stackTrace)
	}
}

// =============================================================================
// ErrorHandler: callback for work errors
// =============================================================================

// ErrorHandler receives every error produced by the work callable.
// For cycle runners it fires once per failed iteration; for once runners
// it fires at most once. It runs on the runner's thread, so it must not
// block for long.
type ErrorHandler func(runnerName string, iteration uint64, err error)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting runner execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// All methods are optional; implementations should handle nil receivers gracefully.
// Methods should be non-blocking and fast to avoid impacting work execution performance.
type Metrics interface {
	// RecordWorkDuration records how long one work invocation took.
	RecordWorkDuration(runnerName string, duration time.Duration)

	// RecordWorkError records that a work invocation returned an error
	// or panicked.
	RecordWorkError(runnerName string)

	// RecordIteration records that a cycle runner completed one iteration.
	RecordIteration(runnerName string)

	// RecordTermination records that a runner reached a terminal state.
	// reason is the terminal status label ("finished", "stopped",
	// "terminated", "errored").
	RecordTermination(runnerName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordWorkDuration is a no-op.
func (m *NilMetrics) RecordWorkDuration(runnerName string, duration time.Duration) {}

// RecordWorkError is a no-op.
func (m *NilMetrics) RecordWorkError(runnerName string) {}

// RecordIteration is a no-op.
func (m *NilMetrics) RecordIteration(runnerName string) {}

// RecordTermination is a no-op.
func (m *NilMetrics) RecordTermination(runnerName string, reason string) {}

// =============================================================================
// RunnerConfig: Configuration for runners
// =============================================================================

// RunnerConfig holds configuration options shared by OnceRunner and
// CycleRunner. All fields are optional; zero values select defaults.
type RunnerConfig struct {
	// Logger receives lifecycle and error logs. Defaults to DefaultLogger.
	Logger Logger

	// Metrics records execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// PanicHandler is called when the work callable panics.
	// Defaults to DefaultPanicHandler. The panic is additionally converted
	// to a WorkError wrapping a PanicError, never rethrown.
	PanicHandler PanicHandler

	// ErrorHandler, if set, receives every work error. Errors are always
	// logged through Logger regardless.
	ErrorHandler ErrorHandler

	// StopOnError makes a cycle runner exit its loop (status Errored)
	// on the first failed iteration. Ignored by once runners.
	StopOnError bool

	// Backoff paces a cycle runner's loop after failed iterations.
	// Defaults to DefaultErrorBackoff (continue immediately, no cap).
	Backoff ErrorBackoff

	// Registry, if set, tracks the runner by name from Start until its
	// thread exits.
	Registry *Registry
}

// DefaultRunnerConfig returns a config with default handlers.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		Logger:       NewDefaultLogger(),
		Metrics:      &NilMetrics{},
		PanicHandler: &DefaultPanicHandler{},
		Backoff:      DefaultErrorBackoff(),
	}
}

// withDefaults returns a copy of c with nil fields replaced by defaults.
// A nil config yields DefaultRunnerConfig.
func (c *RunnerConfig) withDefaults() *RunnerConfig {
	if c == nil {
		return DefaultRunnerConfig()
	}
	out := *c
	if out.Logger == nil {
		out.Logger = NewDefaultLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	if out.PanicHandler == nil {
		out.PanicHandler = &DefaultPanicHandler{}
	}
	return &out
}
