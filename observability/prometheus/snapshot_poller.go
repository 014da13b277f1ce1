package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-thread-control/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SnapshotPoller periodically exports runner Snapshot() state into
// Prometheus gauges. The poll loop itself runs on a core.CycleRunner.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]core.Observable
	registry    *core.Registry

	runnerStatus     *prom.GaugeVec
	runnerAlive      *prom.GaugeVec
	runnerIterations *prom.GaugeVec
	runnerWorkErrors *prom.GaugeVec

	stateMu sync.Mutex
	poller  *core.CycleRunner
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	runnerStatus := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadctl",
		Name:      "runner_status",
		Help:      "Runner status code (0=created 1=running 2=paused 3=stopping 4=stopped 5=finished 6=terminated 7=errored).",
	}, []string{"runner", "kind"})
	runnerAlive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadctl",
		Name:      "runner_alive",
		Help:      "Runner thread liveness (1=alive, 0=dead).",
	}, []string{"runner", "kind"})
	runnerIterations := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadctl",
		Name:      "runner_iterations",
		Help:      "Iterations begun per runner, snapshot value.",
	}, []string{"runner", "kind"})
	runnerWorkErrors := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadctl",
		Name:      "runner_work_errors",
		Help:      "Failed work invocations per runner, snapshot value.",
	}, []string{"runner", "kind"})

	var err error
	if runnerStatus, err = registerCollector(reg, runnerStatus); err != nil {
		return nil, err
	}
	if runnerAlive, err = registerCollector(reg, runnerAlive); err != nil {
		return nil, err
	}
	if runnerIterations, err = registerCollector(reg, runnerIterations); err != nil {
		return nil, err
	}
	if runnerWorkErrors, err = registerCollector(reg, runnerWorkErrors); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:         interval,
		providers:        make(map[string]core.Observable),
		runnerStatus:     runnerStatus,
		runnerAlive:      runnerAlive,
		runnerIterations: runnerIterations,
		runnerWorkErrors: runnerWorkErrors,
	}, nil
}

// AddRunner adds or replaces an observable runner by name.
func (p *SnapshotPoller) AddRunner(name string, provider core.Observable) {
	if p == nil || provider == nil {
		return
	}
	p.providersMu.Lock()
	p.providers[normalizeLabel(name, "runner")] = provider
	p.providersMu.Unlock()
}

// SetRegistry makes the poller export every runner currently registered
// in reg, in addition to runners added via AddRunner.
func (p *SnapshotPoller) SetRegistry(reg *core.Registry) {
	if p == nil {
		return
	}
	p.providersMu.Lock()
	p.registry = reg
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls while running are no-ops.
func (p *SnapshotPoller) Start() error {
	if p == nil {
		return nil
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.poller != nil && p.poller.IsRunning() {
		return nil
	}

	cfg := core.DefaultRunnerConfig()
	cfg.Logger = core.NewNoOpLogger()
	p.poller = core.NewCycleRunner("snapshot-poller", func(ctx context.Context) error {
		p.collectOnce()
		return nil
	}, p.interval, cfg)
	return p.poller.Start()
}

// Stop stops periodic polling and waits for the poll thread to exit;
// repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	poller := p.poller
	p.poller = nil
	p.stateMu.Unlock()

	if poller == nil {
		return
	}
	if err := poller.Stop(); err != nil {
		return
	}
	_ = poller.Join(0)
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	snapshots := make([]core.RunnerSnapshot, 0, len(p.providers))
	for name, provider := range p.providers {
		s := provider.Snapshot()
		if s.Name == "" {
			s.Name = name
		}
		snapshots = append(snapshots, s)
	}
	registry := p.registry
	p.providersMu.RUnlock()

	if registry != nil {
		snapshots = append(snapshots, registry.Snapshots()...)
	}

	for _, s := range snapshots {
		name := normalizeLabel(s.Name, "runner")
		kind := normalizeLabel(s.Kind, "unknown")
		p.runnerStatus.WithLabelValues(name, kind).Set(float64(s.Status))
		if s.Alive {
			p.runnerAlive.WithLabelValues(name, kind).Set(1)
		} else {
			p.runnerAlive.WithLabelValues(name, kind).Set(0)
		}
		p.runnerIterations.WithLabelValues(name, kind).Set(float64(s.Iterations))
		p.runnerWorkErrors.WithLabelValues(name, kind).Set(float64(s.WorkErrors))
	}
}
