package core

import (
	"sync"
	"time"
)

// Runner is the common lifecycle surface of OnceRunner and CycleRunner,
// as seen by a Registry.
type Runner interface {
	Name() string
	Status() RunnerStatus
	IsAlive() bool
	Terminate() error
	Join(timeout time.Duration) error
	Snapshot() RunnerSnapshot
}

// stoppable is satisfied by runners with a cooperative stop (CycleRunner).
type stoppable interface {
	Stop() error
}

// Registry tracks live runners by name. Runners configured with a
// registry register themselves on Start and unregister when their thread
// exits, so the registry only ever holds runners a caller may still want
// to control.
//
// Termination is always routed through the owning runner's handle; the
// registry never touches thread identities directly.
type Registry struct {
	logger Logger

	mu      sync.RWMutex
	runners map[string]Runner
}

// NewRegistry creates an empty registry. A nil logger defaults to
// DefaultLogger.
func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Registry{
		logger:  logger,
		runners: make(map[string]Runner),
	}
}

// register adds r under its name. A duplicate name is logged and the
// newer runner wins; generated names make collisions a caller choice.
func (reg *Registry) register(r Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.runners[r.Name()]; ok {
		reg.logger.Warn("runner name already registered, replacing",
			F("runner", r.Name()))
	}
	reg.runners[r.Name()] = r
}

func (reg *Registry) unregister(name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.runners, name)
}

// Get returns the runner registered under name, or nil.
func (reg *Registry) Get(name string) Runner {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.runners[name]
}

// All returns a copy of the current name-to-runner map.
func (reg *Registry) All() map[string]Runner {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]Runner, len(reg.runners))
	for name, r := range reg.runners {
		out[name] = r
	}
	return out
}

// Len returns the number of registered runners.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.runners)
}

// Snapshots returns snapshots of all registered runners, for dashboards.
func (reg *Registry) Snapshots() []RunnerSnapshot {
	all := reg.All()
	out := make([]RunnerSnapshot, 0, len(all))
	for _, r := range all {
		out = append(out, r.Snapshot())
	}
	return out
}

// StopAll stops every registered runner: a cooperative stop where the
// runner supports one, then a join up to timeout per runner, then a
// forced terminate for whatever is still alive.
func (reg *Registry) StopAll(timeout time.Duration) {
	for name, r := range reg.All() {
		if s, ok := r.(stoppable); ok {
			if err := s.Stop(); err != nil {
				reg.logger.Warn("stop failed", F("runner", name), F("error", err))
			}
		}
		if err := r.Join(timeout); err != nil {
			reg.logger.Warn("runner did not stop in time, terminating",
				F("runner", name))
			if err := r.Terminate(); err != nil {
				reg.logger.Error("terminate failed", F("runner", name), F("error", err))
			}
		}
	}
}

// TerminateAll force-terminates every registered runner without waiting.
func (reg *Registry) TerminateAll() {
	for name, r := range reg.All() {
		if err := r.Terminate(); err != nil {
			reg.logger.Error("terminate failed", F("runner", name), F("error", err))
		}
	}
}
