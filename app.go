package kchain

import (
	"context"
	"fmt"
	"sort"

	"github.com/birdayz/kchain/internal/execution"
	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/kdag"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kserde"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/ktransport"
	"github.com/birdayz/kchain/kunit"
	"github.com/birdayz/kchain/units"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Host owns the configurations, the unit registry and the pipeline of one
// chain. It is driven through Init, Configure, Run, Reset and Deinit.
//
// Host is not safe for concurrent use.
type Host struct {
	log           logr.Logger
	libraries     map[string]kunit.Library
	registerer    prometheus.Registerer
	maxBufferSize uint32
	roots         []string
	run           kdata.RunDescriptor
	chainID       string
	benchmark     bool

	configs  *kconfig.Registry
	units    *kunit.Registry
	builder  *kdag.Builder
	pipeline *execution.Pipeline
}

// New creates a host. The built-in units and the Kafka endpoints are
// available as the "builtin" and "kafka" libraries.
func New(opts ...Option) *Host {
	h := &Host{
		log: logr.Discard(),
		libraries: map[string]kunit.Library{
			units.LibraryName:      units.Library,
			ktransport.LibraryName: ktransport.Library,
		},
		configs: kconfig.NewRegistry(),
		units:   kunit.NewRegistry(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.builder = kdag.NewBuilder(h.configs)
	return h
}

// Configurations returns the registry Configure builds from.
func (h *Host) Configurations() *kconfig.Registry {
	return h.configs
}

// Units returns the unit registry filled by Init.
func (h *Host) Units() *kunit.Registry {
	return h.units
}

// Libraries returns the names of the libraries Init accepts.
func (h *Host) Libraries() []string {
	names := make([]string, 0, len(h.libraries))
	for name := range h.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply registers the configurations of a chain file and takes over its
// roots, run descriptor and buffer limit.
func (h *Host) Apply(f *kconfig.File) error {
	if err := f.Register(h.configs); err != nil {
		return err
	}
	if len(f.Roots) > 0 {
		h.roots = f.Roots
	}
	h.run = kdata.RunDescriptor{RunNumber: f.Run.Number, RunType: f.Run.Type}
	if f.MaxBufferSize > 0 {
		h.maxBufferSize = f.MaxBufferSize
	}
	return nil
}

// Init loads the named libraries into the unit registry and creates the
// pipeline.
func (h *Host) Init(libraries ...string) error {
	if h.pipeline != nil {
		return fmt.Errorf("%w: host already initialised", kstatus.ErrInvalidState)
	}
	for _, name := range libraries {
		lib, ok := h.libraries[name]
		if !ok {
			return fmt.Errorf("%w: library %q", kstatus.ErrNotFound, name)
		}
		if err := h.units.Load(lib); err != nil {
			return fmt.Errorf("load library %q: %w", name, err)
		}
		h.log.V(1).Info("Loaded library", "library", name)
	}

	metrics, err := execution.NewMetrics(h.registerer)
	if err != nil {
		return err
	}
	p, err := execution.NewPipeline(execution.PipelineConfig{
		Log:           h.log.WithName("pipeline"),
		Units:         h.units,
		Metrics:       metrics,
		MaxBufferSize: h.maxBufferSize,
		ChainID:       h.chainID,
		Benchmark:     h.benchmark,
	})
	if err != nil {
		return err
	}
	if err := p.LoadConfiguration(); err != nil {
		return err
	}
	p.SetRun(h.run)
	h.pipeline = p
	return nil
}

// Configure builds the task list of every root and installs it in the
// pipeline.
func (h *Host) Configure() error {
	if h.pipeline == nil {
		return fmt.Errorf("%w: Configure before Init", kstatus.ErrInvalidState)
	}

	roots := h.roots
	if len(roots) == 0 {
		for _, cfg := range h.configs.Roots() {
			roots = append(roots, cfg.Name)
		}
	}
	if len(roots) == 0 {
		return fmt.Errorf("%w: no configurations to build", kstatus.ErrNotFound)
	}

	for _, root := range roots {
		if err := h.builder.BuildTaskList(root); err != nil {
			return fmt.Errorf("build task list of %q: %w", root, err)
		}
	}
	list, err := h.builder.Build()
	if err != nil {
		return err
	}
	if err := h.pipeline.SetTasks(list); err != nil {
		return err
	}
	h.log.Info("Configured chain", "roots", roots, "tasks", list.Names())
	return nil
}

// Run processes n data events. n == 0 stops the run and deinitialises the
// units.
func (h *Host) Run(ctx context.Context, n int) error {
	if h.pipeline == nil {
		return fmt.Errorf("%w: Run before Init", kstatus.ErrInvalidState)
	}
	return h.pipeline.Run(ctx, n)
}

// ProcessTrigger processes one data event carrying trigger as its trigger
// data. The chain must have been started by Run.
func (h *Host) ProcessTrigger(ctx context.Context, trigger []byte) error {
	if h.pipeline == nil {
		return fmt.Errorf("%w: no pipeline", kstatus.ErrInvalidState)
	}
	return h.pipeline.ProcessTrigger(ctx, kdata.EventTypeData, trigger)
}

// EventDoneData returns the event done data the task named name set during
// the last event.
func (h *Host) EventDoneData(name string) ([]byte, error) {
	if h.pipeline == nil {
		return nil, fmt.Errorf("%w: no pipeline", kstatus.ErrInvalidState)
	}
	return h.pipeline.EventDoneData(name)
}

// Reconfigure sends a configuration event carrying entry through the
// running chain.
func (h *Host) Reconfigure(ctx context.Context, entry string) error {
	payload, err := kserde.String.Serializer(entry)
	if err != nil {
		return err
	}
	return h.inject(ctx, kdata.EventTypeConfiguration, kdata.ComponentConfiguration, payload)
}

// UpdateCalibration sends a read-calibration event naming modules through
// the running chain. No modules means all of them.
func (h *Host) UpdateCalibration(ctx context.Context, modules ...string) error {
	payload, err := kserde.Fields.Serializer(modules)
	if err != nil {
		return err
	}
	return h.inject(ctx, kdata.EventTypeReadCalibration, kdata.UpdateCalibration, payload)
}

func (h *Host) inject(ctx context.Context, eventType uint32, dt kdata.DataType, payload []byte) error {
	if h.pipeline == nil {
		return fmt.Errorf("%w: no pipeline", kstatus.ErrInvalidState)
	}
	return h.pipeline.Inject(ctx, eventType, []execution.Injection{
		{DataType: dt, Specification: kdata.VoidSpecification, Data: payload},
	})
}

// Reset drops the task list so that Configure can build a new one. A running
// chain is only stopped when force is set.
func (h *Host) Reset(ctx context.Context, force bool) error {
	if h.pipeline == nil {
		h.builder.Clear()
		return nil
	}
	if !force {
		switch h.pipeline.State() {
		case execution.StateStarted, execution.StateRunning:
			return fmt.Errorf("%w: chain is running", kstatus.ErrInvalidState)
		}
	}
	err := h.pipeline.Reset(ctx)
	h.builder.Clear()
	return err
}

// Deinit stops the chain, deinitialises the units, drops the pipeline and
// unloads the libraries. The configurations stay registered.
func (h *Host) Deinit(ctx context.Context) error {
	if h.pipeline == nil {
		return nil
	}
	err := h.pipeline.Reset(ctx)
	h.builder.Clear()
	h.pipeline = nil
	h.units = kunit.NewRegistry()
	return err
}

// State returns the pipeline state, or "Uninitialized" before Init.
func (h *Host) State() string {
	if h.pipeline == nil {
		return execution.StateUninitialized.String()
	}
	return h.pipeline.State().String()
}

// TaskOrder returns the names of the configured tasks in execution order.
func (h *Host) TaskOrder() []string {
	tasks := h.builder.Tasks()
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name()
	}
	return names
}

// Statistics returns the statistics of every initialised task.
func (h *Host) Statistics() []execution.ComponentStatistics {
	if h.pipeline == nil {
		return nil
	}
	var out []execution.ComponentStatistics
	for _, t := range h.pipeline.Tasks() {
		out = append(out, t.Statistics())
	}
	return out
}
