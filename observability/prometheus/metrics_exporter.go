package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-thread-control/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	workDurationSeconds *prom.HistogramVec
	workErrorsTotal     *prom.CounterVec
	iterationsTotal     *prom.CounterVec
	terminationsTotal   *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "threadctl"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "work_duration_seconds",
		Help:      "Work invocation duration in seconds.",
		Buckets:   buckets,
	}, []string{"runner"})
	errorsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "work_errors_total",
		Help:      "Total number of failed work invocations.",
	}, []string{"runner"})
	iterationsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "iterations_total",
		Help:      "Total number of completed cycle iterations.",
	}, []string{"runner"})
	terminationsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "runner_terminations_total",
		Help:      "Total number of runners reaching a terminal state.",
	}, []string{"runner", "reason"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if errorsVec, err = registerCollector(reg, errorsVec); err != nil {
		return nil, err
	}
	if iterationsVec, err = registerCollector(reg, iterationsVec); err != nil {
		return nil, err
	}
	if terminationsVec, err = registerCollector(reg, terminationsVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		workDurationSeconds: durationVec,
		workErrorsTotal:     errorsVec,
		iterationsTotal:     iterationsVec,
		terminationsTotal:   terminationsVec,
	}, nil
}

// RecordWorkDuration records one work invocation's duration.
func (m *MetricsExporter) RecordWorkDuration(runnerName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.workDurationSeconds.WithLabelValues(normalizeLabel(runnerName, "unknown")).Observe(duration.Seconds())
}

// RecordWorkError records a failed work invocation.
func (m *MetricsExporter) RecordWorkError(runnerName string) {
	if m == nil {
		return
	}
	m.workErrorsTotal.WithLabelValues(normalizeLabel(runnerName, "unknown")).Inc()
}

// RecordIteration records a completed cycle iteration.
func (m *MetricsExporter) RecordIteration(runnerName string) {
	if m == nil {
		return
	}
	m.iterationsTotal.WithLabelValues(normalizeLabel(runnerName, "unknown")).Inc()
}

// RecordTermination records a runner reaching a terminal state.
func (m *MetricsExporter) RecordTermination(runnerName string, reason string) {
	if m == nil {
		return
	}
	m.terminationsTotal.WithLabelValues(normalizeLabel(runnerName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
