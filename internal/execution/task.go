package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birdayz/kchain/kdag"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
)

// Task runs one unit of the chain. It owns arena slot `slot`.
type Task struct {
	node *kdag.Task
	slot int
	log  logr.Logger

	unit     kunit.Unit
	kind     kunit.Kind
	env      kunit.Environment
	patterns []kdata.DataType
	estimate kunit.SizeEstimate

	deps   []*Task
	router *Router

	// Output of the last event, valid until the next one.
	output    []kdata.Block
	eventDone []byte
	// Types negotiated per dependency name.
	negotiated map[string][]kdata.DataType

	watches Stopwatches

	processed  uint64
	skipped    uint64
	failures   uint64
	noData     uint64
	inputSize  uint64
	outputSize uint64

	reportedWarnings uint64
}

// Name returns the configuration name of the task.
func (t *Task) Name() string {
	return t.node.Name()
}

// Unit returns the unit run by the task.
func (t *Task) Unit() kunit.Unit {
	return t.unit
}

// Kind returns the capability variant of the unit.
func (t *Task) Kind() kunit.Kind {
	return t.kind
}

// Router returns the steering router of the task.
func (t *Task) Router() *Router {
	return t.router
}

// EventDoneData returns the event done data the unit set during the last
// event. It is empty when the unit failed or was skipped.
func (t *Task) EventDoneData() []byte {
	return t.eventDone
}

// Stopwatches returns the accumulated timings of the task.
func (t *Task) Stopwatches() *Stopwatches {
	return &t.watches
}

// Negotiated returns the data types that may flow from the dependency
// named dep into this task.
func (t *Task) Negotiated(dep string) []kdata.DataType {
	return t.negotiated[dep]
}

// Statistics returns the statistics entry of the task.
func (t *Task) Statistics() ComponentStatistics {
	wall, cpu := t.watches.Total()
	return ComponentStatistics{
		Task:       t.Name(),
		Component:  t.node.Configuration().Kind,
		Level:      t.level(),
		Events:     t.processed,
		Failures:   t.failures,
		NoData:     t.noData,
		InputSize:  t.inputSize,
		OutputSize: t.outputSize,
		Wall:       wall,
		CPU:        cpu,
		Algorithm:  t.watches.Get(CategoryAlgorithm).Wall(),
	}
}

func (t *Task) level() int {
	level := 0
	for _, d := range t.deps {
		if l := d.level() + 1; l > level {
			level = l
		}
	}
	return level
}

func (t *Task) tableEntry() TableEntry {
	return TableEntry{
		Task:      t.Name(),
		Component: t.node.Configuration().Kind,
		Sources:   t.node.Configuration().Sources,
	}
}

// gather collects the input blocks of the task: the injected blocks for
// tasks without dependencies, otherwise the dependency output selected by
// the declared input types. Steering blocks are always delivered, each
// block at most once.
func (t *Task) gather(arena *Arena) []kdata.Block {
	if len(t.deps) == 0 {
		return append([]kdata.Block(nil), arena.Blocks(kdata.InjectionSlot)...)
	}

	var blocks []kdata.Block
	seen := make(map[kdata.Block]bool)
	for _, d := range t.deps {
		for _, b := range d.output {
			if seen[b] {
				continue
			}
			if !b.DataType.IsControl() && !b.DataType.MatchesAny(t.patterns) {
				continue
			}
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	return blocks
}

type eventContext struct {
	id        uint64
	trigger   []byte
	arena     *Arena
	timers    *TimerStack
	limit     uint32
	metrics   *Metrics
	benchmark bool
}

// process runs one event through the task. Steering blocks are forwarded
// even when the unit fails.
func (t *Task) process(ctx context.Context, ec *eventContext) error {
	ec.timers.Push(t.watches.Get(CategoryBase))
	defer ec.timers.Pop()

	ec.timers.Push(t.watches.Get(CategoryInput))
	blocks := t.gather(ec.arena)
	decision := t.router.Route(blocks, ec.arena.Data)
	if w := t.router.Warnings(); w > t.reportedWarnings {
		ec.metrics.warnings.WithLabelValues(t.Name()).Add(float64(w - t.reportedWarnings))
		t.reportedWarnings = w
	}
	ec.timers.Pop()

	ec.arena.Reset(t.slot)
	t.output = nil
	t.eventDone = t.eventDone[:0]

	var procErr error
	if decision.Process {
		procErr = t.runUnit(ctx, ec, blocks, decision)
	} else {
		t.skipped++
		ec.metrics.skipped.WithLabelValues(t.Name()).Inc()
	}

	ec.timers.Push(t.watches.Get(CategoryOutput))
	t.publishSteering(ec, decision)
	t.output = ec.arena.Blocks(t.slot)
	ec.timers.Pop()

	return procErr
}

func (t *Task) runUnit(ctx context.Context, ec *eventContext, blocks []kdata.Block, decision Decision) error {
	evt := &kunit.Event{
		ID:      ec.id,
		Type:    decision.EventType,
		Blocks:  make([]kunit.InputBlock, len(blocks)),
		Trigger: ec.trigger,
	}
	if run, ok := t.router.Run(); ok {
		evt.Run = run
	}
	for i, b := range blocks {
		evt.Blocks[i] = kunit.InputBlock{BlockDescriptor: b.BlockDescriptor, Data: ec.arena.Data(b)}
	}
	inputSize := evt.InputSize()

	out, err := ec.arena.Allocate(t.slot, t.estimate.Size(inputSize), ec.limit)
	if err != nil {
		return t.fail(ec, err, StageAllocation)
	}

	ec.timers.Push(t.watches.Get(CategoryAlgorithm))
	start := time.Now()
	unitErr := t.unit.ProcessEvent(ctx, evt, out)
	ec.metrics.duration.WithLabelValues(t.Name()).Observe(time.Since(start).Seconds())
	ec.timers.Pop()

	t.processed++
	t.inputSize += inputSize
	ec.metrics.events.WithLabelValues(t.Name()).Inc()
	ec.metrics.inputSize.WithLabelValues(t.Name()).Add(float64(inputSize))

	published := out.finish(unitErr)
	switch {
	case errors.Is(unitErr, kstatus.ErrNoData):
		t.noData++
		ec.metrics.noData.WithLabelValues(t.Name()).Inc()
		return nil
	case unitErr != nil:
		return t.fail(ec, unitErr, StageProcessing)
	case out.Err() != nil:
		return t.fail(ec, out.Err(), StageOutput)
	}

	t.eventDone = append(t.eventDone[:0], out.EventDoneData()...)

	size := kdata.TotalSize(published)
	t.outputSize += size
	ec.metrics.outputSize.WithLabelValues(t.Name()).Add(float64(size))
	return nil
}

func (t *Task) fail(ec *eventContext, err error, stage ProcessingStage) error {
	t.failures++
	ec.metrics.failures.WithLabelValues(t.Name(), string(stage)).Inc()
	perr := NewProcessingError(err, stage, t.Name(), ec.id)
	t.log.Error(perr, "Event failed")
	return perr
}

// publishSteering forwards the steering blocks and, at run boundaries or in
// benchmark mode, appends the aggregated statistics and component table.
func (t *Task) publishSteering(ec *eventContext, d Decision) {
	for _, b := range d.Forward {
		ec.arena.Forward(t.slot, b)
	}

	boundary := d.StartOfRun || d.EndOfRun
	if boundary || ec.benchmark || t.env.Benchmark {
		stats := mergeStatistics(d.Statistics, []ComponentStatistics{t.Statistics()})
		if payload, err := statisticsSerde.Serializer(stats); err == nil {
			ec.arena.Append(t.slot, payload, kdata.ComponentStatistics, kdata.VoidSpecification)
		} else {
			t.log.Error(err, "Encoding statistics failed")
		}
	}
	if boundary {
		table := mergeTable(d.Table, []TableEntry{t.tableEntry()})
		if payload, err := tableSerde.Serializer(table); err == nil {
			ec.arena.Append(t.slot, payload, kdata.ComponentTable, kdata.VoidSpecification)
		} else {
			t.log.Error(err, "Encoding component table failed")
		}
	}
}

func (t *Task) String() string {
	return fmt.Sprintf("%s {%s}", t.Name(), t.node.Configuration().Kind)
}
