package execution

import (
	"context"
	"fmt"

	"github.com/birdayz/kchain/kdag"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kserde"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
	"go.uber.org/multierr"
)

// DefaultMaxBufferSize limits a single task output buffer.
const DefaultMaxBufferSize = 256 << 20

// PipelineConfig holds configuration for a Pipeline
type PipelineConfig struct {
	Log     logr.Logger
	Units   *kunit.Registry
	Metrics *Metrics
	// MaxBufferSize limits a single task output buffer. Default:
	// DefaultMaxBufferSize.
	MaxBufferSize uint32
	// ChainID is handed to units that do not set chainid themselves.
	ChainID string
	// Benchmark emits statistics blocks on every event.
	Benchmark bool
	// Clock drives the stopwatches. Default: system clock.
	Clock Clock
}

// Pipeline drives a task list event by event. All tasks run sequentially in
// list order on the calling goroutine.
//
// IMPORTANT: Pipeline is NOT safe for concurrent use.
type Pipeline struct {
	log       logr.Logger
	units     *kunit.Registry
	metrics   *Metrics
	limit     uint32
	chainID   string
	benchmark bool

	state  State
	list   *kdag.List
	tasks  []*Task
	arena  *Arena
	timers *TimerStack

	run     kdata.RunDescriptor
	eventID uint64
}

// NewPipeline creates an uninitialized pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Units == nil {
		return nil, fmt.Errorf("%w: pipeline needs a unit registry", kstatus.ErrInvalidArgument)
	}
	if cfg.Log.GetSink() == nil {
		cfg.Log = logr.Discard()
	}
	if cfg.MaxBufferSize == 0 {
		cfg.MaxBufferSize = DefaultMaxBufferSize
	}
	if cfg.Metrics == nil {
		m, err := NewMetrics(nil)
		if err != nil {
			return nil, err
		}
		cfg.Metrics = m
	}
	p := &Pipeline{
		log:       cfg.Log,
		units:     cfg.Units,
		metrics:   cfg.Metrics,
		limit:     cfg.MaxBufferSize,
		chainID:   cfg.ChainID,
		benchmark: cfg.Benchmark,
		timers:    NewTimerStack(cfg.Clock),
	}
	p.setState(StateUninitialized)
	return p, nil
}

// State returns the lifecycle state.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.state = s
	p.metrics.state.Set(float64(s))
}

func (p *Pipeline) expect(op string, allowed ...State) error {
	for _, s := range allowed {
		if p.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed in state %s", kstatus.ErrInvalidState, op, p.state)
}

// Tasks returns the running tasks in list order.
func (p *Pipeline) Tasks() []*Task {
	return append([]*Task(nil), p.tasks...)
}

// Task returns the task named name.
func (p *Pipeline) Task(name string) (*Task, error) {
	for _, t := range p.tasks {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: task %q", kstatus.ErrNotFound, name)
}

// SetRun sets the run descriptor announced by the next StartTasks issued
// through Run.
func (p *Pipeline) SetRun(run kdata.RunDescriptor) {
	p.run = run
}

// LoadConfiguration marks the configuration phase as complete.
func (p *Pipeline) LoadConfiguration() error {
	if err := p.expect("LoadConfiguration", StateUninitialized, StateConfigurationLoaded); err != nil {
		return err
	}
	p.setState(StateConfigurationLoaded)
	return nil
}

// SetTasks installs the task list to run.
func (p *Pipeline) SetTasks(list *kdag.List) error {
	if err := p.expect("SetTasks", StateConfigurationLoaded, StateTaskListBuilt); err != nil {
		return err
	}
	if list == nil || list.Len() == 0 {
		return fmt.Errorf("%w: empty task list", kstatus.ErrInvalidArgument)
	}
	p.list = list
	p.setState(StateTaskListBuilt)
	return nil
}

// InitTasks spawns and initialises the unit of every task in list order
// and negotiates the data types along every edge. The first failure aborts
// and deinitialises the units initialised so far.
func (p *Pipeline) InitTasks() error {
	if err := p.expect("InitTasks", StateTaskListBuilt); err != nil {
		return err
	}

	nodes := p.list.Tasks()
	byNode := make(map[*kdag.Task]*Task, len(nodes))
	tasks := make([]*Task, 0, len(nodes))
	for i, node := range nodes {
		t, err := p.initTask(node, i+1)
		if err != nil {
			p.log.Error(err, "Initialising task failed, aborting", "task", node.Name())
			for j := len(tasks) - 1; j >= 0; j-- {
				if derr := tasks[j].unit.Deinit(); derr != nil {
					p.log.Error(derr, "Deinit after failed initialisation", "task", tasks[j].Name())
				}
			}
			return NewProcessingError(err, StageInit, node.Name(), 0)
		}
		for _, dep := range node.Dependencies() {
			t.deps = append(t.deps, byNode[dep])
		}
		byNode[node] = t
		tasks = append(tasks, t)
	}

	for _, t := range tasks {
		p.negotiate(t)
	}

	p.tasks = tasks
	p.arena = NewArena(len(tasks))
	p.eventID = 0
	p.setState(StateReady)
	p.log.Info("Tasks initialised", "tasks", p.list.Names())
	return nil
}

func (p *Pipeline) initTask(node *kdag.Task, slot int) (*Task, error) {
	cfg := node.Configuration()
	u, err := p.units.Spawn(cfg.Kind)
	if err != nil {
		return nil, err
	}
	kind, err := kunit.KindOf(u)
	if err != nil {
		return nil, err
	}
	args, err := kunit.ScanArguments(cfg.ArgumentList())
	if err != nil {
		return nil, err
	}
	if args.ChainID == "" {
		args.ChainID = p.chainID
	}

	env := kunit.NewEnvironment(p.log, cfg.Name, cfg.Kind, args)
	if err := u.Init(env, args.Rest); err != nil {
		return nil, err
	}

	t := &Task{
		node:       node,
		slot:       slot,
		log:        p.log.WithValues("task", cfg.Name),
		unit:       u,
		kind:       kind,
		env:        env,
		negotiated: make(map[string][]kdata.DataType),
	}
	if c, ok := u.(kunit.Consumer); ok {
		t.patterns = c.InputDataTypes()
	}
	if prod, ok := u.(kunit.Producer); ok {
		t.estimate = prod.OutputDataSize()
	}
	t.router = NewRouter(t.log, u, args.ChainID)
	return t, nil
}

func (p *Pipeline) negotiate(t *Task) {
	consumer, ok := t.unit.(kunit.Consumer)
	for _, d := range t.deps {
		producer, isProducer := d.unit.(kunit.Producer)
		if !ok || !isProducer {
			p.log.Info("No data can flow along edge", "from", d.Name(), "to", t.Name(), "warning", true)
			continue
		}
		types := kdata.FindMatchingTypes(producer, consumer)
		if len(types) == 0 && !anyMatches(kdata.OutputTypes(producer), t.patterns) {
			p.log.Info("No matching data types along edge", "from", d.Name(), "to", t.Name(), "warning", true)
		}
		t.negotiated[d.Name()] = types
		p.log.V(1).Info("Negotiated data types", "from", d.Name(), "to", t.Name(), "types", fmt.Sprint(types))
	}
}

func anyMatches(types, patterns []kdata.DataType) bool {
	for _, dt := range types {
		if dt.MatchesAny(patterns) {
			return true
		}
	}
	return false
}

// StartTasks sends the start-of-run event through the chain.
func (p *Pipeline) StartTasks(ctx context.Context, run kdata.RunDescriptor) error {
	if err := p.expect("StartTasks", StateReady); err != nil {
		return err
	}
	payload, err := kserde.RunDescriptor.Serializer(run)
	if err != nil {
		return fmt.Errorf("encode start of run: %w", err)
	}
	runType, err := kserde.Uint32.Serializer(run.RunType)
	if err != nil {
		return fmt.Errorf("encode run type: %w", err)
	}
	p.run = run
	p.setState(StateStarted)

	p.log.Info("Starting run", "run", run.RunNumber, "runType", run.RunType)
	return p.event(ctx, kdata.EventTypeStartOfRun, nil, []Injection{
		{DataType: kdata.StartOfRun, Specification: kdata.VoidSpecification, Data: payload},
		{DataType: kdata.RunType, Specification: kdata.VoidSpecification, Data: runType},
	})
}

// ProcessTasks runs one event of the given type through the chain. Unit
// failures are returned aggregated; they do not stop the chain.
func (p *Pipeline) ProcessTasks(ctx context.Context, eventType uint32) error {
	return p.ProcessTrigger(ctx, eventType, nil)
}

// ProcessTrigger is like ProcessTasks and hands trigger to every unit as
// the trigger data of the event.
func (p *Pipeline) ProcessTrigger(ctx context.Context, eventType uint32, trigger []byte) error {
	if err := p.expect("ProcessTasks", StateStarted); err != nil {
		return err
	}
	return p.event(ctx, eventType, trigger, nil)
}

// Inject sends a steering event carrying the given blocks through the
// chain.
func (p *Pipeline) Inject(ctx context.Context, eventType uint32, blocks []Injection) error {
	if err := p.expect("Inject", StateStarted); err != nil {
		return err
	}
	return p.event(ctx, eventType, nil, blocks)
}

// StopTasks sends the end-of-run event through the chain.
func (p *Pipeline) StopTasks(ctx context.Context) error {
	if err := p.expect("StopTasks", StateStarted); err != nil {
		return err
	}
	payload, err := kserde.RunDescriptor.Serializer(p.run)
	if err != nil {
		return fmt.Errorf("encode end of run: %w", err)
	}
	err = p.event(ctx, kdata.EventTypeEndOfRun, nil, []Injection{
		{DataType: kdata.EndOfRun, Specification: kdata.VoidSpecification, Data: payload},
	})
	p.setState(StateReady)
	p.log.Info("Run stopped", "run", p.run.RunNumber, "events", p.eventID)
	return err
}

// DeinitTasks deinitialises every unit in list order.
func (p *Pipeline) DeinitTasks() error {
	if err := p.expect("DeinitTasks", StateReady); err != nil {
		return err
	}
	var errs error
	for _, t := range p.tasks {
		if err := t.unit.Deinit(); err != nil {
			errs = multierr.Append(errs, NewProcessingError(err, StageDeinit, t.Name(), p.eventID))
		}
	}
	p.tasks = nil
	p.arena = nil
	p.setState(StateTaskListBuilt)
	return errs
}

// Run processes n data events, initialising and starting the chain first
// if needed. n == 0 is the stop sequence: the run is stopped and the units
// deinitialised. A cancelled ctx ends the event loop between events.
func (p *Pipeline) Run(ctx context.Context, n int) error {
	if n == 0 {
		return p.stopSequence(ctx)
	}
	if n < 0 {
		return fmt.Errorf("%w: negative event count %d", kstatus.ErrInvalidArgument, n)
	}
	if err := p.expect("Run", StateTaskListBuilt, StateReady, StateStarted); err != nil {
		return err
	}

	if p.state == StateTaskListBuilt {
		if err := p.InitTasks(); err != nil {
			return err
		}
	}

	var errs error
	if p.state == StateReady {
		errs = multierr.Append(errs, p.StartTasks(ctx, p.run))
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, p.ProcessTasks(ctx, kdata.EventTypeData))
	}
	return errs
}

func (p *Pipeline) stopSequence(ctx context.Context) error {
	var errs error
	if p.state == StateStarted {
		errs = multierr.Append(errs, p.StopTasks(ctx))
	}
	if p.state == StateReady {
		errs = multierr.Append(errs, p.DeinitTasks())
	}
	return errs
}

// Reset stops and deinitialises a running chain and drops the task list.
func (p *Pipeline) Reset(ctx context.Context) error {
	err := p.stopSequence(ctx)
	p.list = nil
	p.tasks = nil
	p.arena = nil
	if p.state != StateUninitialized {
		p.setState(StateConfigurationLoaded)
	}
	return err
}

// Injection is a steering block injected by the executor.
type Injection struct {
	DataType      kdata.DataType
	Specification kdata.Specification
	Data          []byte
}

func (p *Pipeline) event(ctx context.Context, eventType uint32, trigger []byte, blocks []Injection) error {
	p.setState(StateRunning)
	defer p.setState(StateStarted)

	p.eventID++
	p.arena.Reset(kdata.InjectionSlot)
	for _, b := range blocks {
		p.arena.Append(kdata.InjectionSlot, b.Data, b.DataType, b.Specification)
	}
	p.arena.Append(kdata.InjectionSlot, nil, kdata.EventTypeMarker, kdata.Specification(eventType))

	ec := &eventContext{
		id:        p.eventID,
		trigger:   trigger,
		arena:     p.arena,
		timers:    p.timers,
		limit:     p.limit,
		metrics:   p.metrics,
		benchmark: p.benchmark,
	}
	var errs error
	for _, t := range p.tasks {
		errs = multierr.Append(errs, t.process(ctx, ec))
	}
	if errs != nil {
		p.log.V(1).Info("Event finished with failures", "event", p.eventID,
			"type", kdata.EventTypeName(eventType), "failures", len(multierr.Errors(errs)))
	}
	return errs
}

// EventDoneData returns the event done data set by the unit of the task
// named name during the last event.
func (p *Pipeline) EventDoneData(name string) ([]byte, error) {
	t, err := p.Task(name)
	if err != nil {
		return nil, err
	}
	return t.EventDoneData(), nil
}

// Output returns the blocks published by the task named name for the last
// event together with their payloads.
func (p *Pipeline) Output(name string) ([]kunit.InputBlock, error) {
	t, err := p.Task(name)
	if err != nil {
		return nil, err
	}
	out := make([]kunit.InputBlock, len(t.output))
	for i, b := range t.output {
		out[i] = kunit.InputBlock{BlockDescriptor: b.BlockDescriptor, Data: p.arena.Data(b)}
	}
	return out, nil
}
