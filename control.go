package threadctl

import (
	"sync"
	"time"

	"github.com/Swind/go-thread-control/core"
)

// =============================================================================
// Default Registry Helper (Singleton)
// =============================================================================

var (
	defaultRegistry *core.Registry
	registryMu      sync.Mutex
)

// DefaultRegistry returns the package-level registry, creating it on
// first use. Runners built with Once and Cycle register here for the
// lifetime of their thread.
func DefaultRegistry() *core.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()

	if defaultRegistry == nil {
		defaultRegistry = core.NewRegistry(nil)
	}
	return defaultRegistry
}

// Get returns the runner registered under name in the default registry,
// or nil.
func Get(name string) core.Runner {
	return DefaultRegistry().Get(name)
}

// StopAll stops every runner in the default registry: cooperative stop
// where supported, join up to timeout per runner, then forced terminate
// for whatever is still alive.
func StopAll(timeout time.Duration) {
	DefaultRegistry().StopAll(timeout)
}

// TerminateAll force-terminates every runner in the default registry.
func TerminateAll() {
	DefaultRegistry().TerminateAll()
}

// =============================================================================
// Convenience Constructors
// =============================================================================

// Once creates an OnceRunner with the default config, tracked by the
// default registry. An empty name gets a generated one. Call Start to
// spawn the thread.
func Once[T any](name string, work Work[T]) *OnceRunner[T] {
	cfg := core.DefaultRunnerConfig()
	cfg.Registry = DefaultRegistry()
	return core.NewOnceRunner(name, work, cfg)
}

// Cycle creates a CycleRunner with the default config, tracked by the
// default registry. An empty name gets a generated one. Call Start to
// spawn the thread.
func Cycle(name string, work CycleWork, interval time.Duration) *CycleRunner {
	cfg := core.DefaultRunnerConfig()
	cfg.Registry = DefaultRegistry()
	return core.NewCycleRunner(name, work, interval, cfg)
}

// Go starts work on a fresh OnceRunner immediately and returns it.
// Shorthand for Once followed by Start.
func Go[T any](name string, work Work[T]) (*OnceRunner[T], error) {
	r := Once(name, work)
	if err := r.Start(); err != nil {
		return nil, err
	}
	return r, nil
}
