package execution

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a pipeline.
type Metrics struct {
	events     *prometheus.CounterVec // ProcessEvent calls by task
	skipped    *prometheus.CounterVec // Events skipped by steering
	failures   *prometheus.CounterVec // Failed events by task and stage
	noData     *prometheus.CounterVec // ErrNoData results by task
	warnings   *prometheus.CounterVec // Steering protocol warnings by task
	inputSize  *prometheus.CounterVec // Input bytes by task
	outputSize *prometheus.CounterVec // Output bytes by task
	duration   *prometheus.HistogramVec
	state      prometheus.Gauge
}

// NewMetrics creates the pipeline collectors and registers them with reg.
// Collectors that are already registered are reused. A nil reg leaves the
// collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "events_total",
			Help:      "Events processed by the unit of a task",
		}, []string{"task"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "skipped_events_total",
			Help:      "Events not handed to the unit of a task",
		}, []string{"task"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "failed_events_total",
			Help:      "Events that failed in a task",
		}, []string{"task", "stage"}),
		noData: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "no_data_events_total",
			Help:      "Events for which the unit of a task had no data",
		}, []string{"task"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "steering_warnings_total",
			Help:      "Steering protocol warnings of a task",
		}, []string{"task"}),
		inputSize: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "input_bytes_total",
			Help:      "Bytes delivered to the unit of a task",
		}, []string{"task"}),
		outputSize: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "output_bytes_total",
			Help:      "Bytes published by the unit of a task",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kchain",
			Subsystem: "task",
			Name:      "processing_seconds",
			Help:      "Wall time of ProcessEvent",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"task"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kchain",
			Subsystem: "pipeline",
			Name:      "state",
			Help:      "Lifecycle state of the pipeline",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.events, err = register(reg, m.events); err != nil {
		return nil, err
	}
	if m.skipped, err = register(reg, m.skipped); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.noData, err = register(reg, m.noData); err != nil {
		return nil, err
	}
	if m.warnings, err = register(reg, m.warnings); err != nil {
		return nil, err
	}
	if m.inputSize, err = register(reg, m.inputSize); err != nil {
		return nil, err
	}
	if m.outputSize, err = register(reg, m.outputSize); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.state, err = register(reg, m.state); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metrics: %w", err)
}
