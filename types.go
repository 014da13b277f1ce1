package threadctl

import (
	"time"

	"github.com/Swind/go-thread-control/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the threadctl package for most use cases.

// Work is a once-executed unit of work producing a value of type T
type Work[T any] = core.Work[T]

// CycleWork is invoked once per loop iteration of a CycleRunner
type CycleWork = core.CycleWork

// ManagedThread wraps one dedicated goroutine with lifecycle control
type ManagedThread = core.ManagedThread

// OnceRunner runs its work exactly once and captures the result
type OnceRunner[T any] = core.OnceRunner[T]

// CycleRunner runs its work repeatedly until stopped or terminated
type CycleRunner = core.CycleRunner

// ForceTerminator delivers best-effort kill requests to managed threads
type ForceTerminator = core.ForceTerminator

// Registry tracks live runners by name
type Registry = core.Registry

// Runner is the common lifecycle surface of both runner kinds
type Runner = core.Runner

// RunnerConfig holds optional runner configuration
type RunnerConfig = core.RunnerConfig

// RunnerStatus describes where a runner is in its lifecycle
type RunnerStatus = core.RunnerStatus

// RunnerSnapshot is a point-in-time observability view of a runner
type RunnerSnapshot = core.RunnerSnapshot

// ErrorBackoff paces a cycle runner's loop after failed iterations
type ErrorBackoff = core.ErrorBackoff

// Logger is the structured logging interface used by runners
type Logger = core.Logger

// Field is a structured logging key-value pair
type Field = core.Field

// Metrics is the execution-metrics collection interface
type Metrics = core.Metrics

// WorkError wraps an error produced by a work callable
type WorkError = core.WorkError

// PanicError carries a recovered work panic
type PanicError = core.PanicError

// TerminationError reports an undeliverable kill request
type TerminationError = core.TerminationError

// Status constants
const (
	StatusCreated    RunnerStatus = core.StatusCreated
	StatusRunning    RunnerStatus = core.StatusRunning
	StatusPaused     RunnerStatus = core.StatusPaused
	StatusStopping   RunnerStatus = core.StatusStopping
	StatusStopped    RunnerStatus = core.StatusStopped
	StatusFinished   RunnerStatus = core.StatusFinished
	StatusTerminated RunnerStatus = core.StatusTerminated
	StatusErrored    RunnerStatus = core.StatusErrored
)

// Sentinel errors
var (
	ErrAlreadyStarted = core.ErrAlreadyStarted
	ErrNotStarted     = core.ErrNotStarted
	ErrJoinTimeout    = core.ErrJoinTimeout
	ErrResultTimeout  = core.ErrResultTimeout
	ErrTerminated     = core.ErrTerminated
	ErrCycleDone      = core.ErrCycleDone
)

// Convenience functions re-exported from core
var (
	F                   = core.F
	DefaultRunnerConfig = core.DefaultRunnerConfig
	DefaultErrorBackoff = core.DefaultErrorBackoff
	NewRegistry         = core.NewRegistry
	NewManagedThread    = core.NewManagedThread
	NewForceTerminator  = core.NewForceTerminator
)

// NewCycleRunner creates a CycleRunner with an explicit config.
// This is re-exported for advanced users; most callers want Cycle.
func NewCycleRunner(name string, work CycleWork, interval time.Duration, cfg *RunnerConfig) *CycleRunner {
	return core.NewCycleRunner(name, work, interval, cfg)
}

// NewOnceRunner creates an OnceRunner with an explicit config.
// This is re-exported for advanced users; most callers want Once.
func NewOnceRunner[T any](name string, work Work[T], cfg *RunnerConfig) *OnceRunner[T] {
	return core.NewOnceRunner(name, work, cfg)
}
