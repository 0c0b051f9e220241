package kchain

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/birdayz/kchain/units"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// probeLibrary registers a Counter whose latest instance is kept in *c.
func probeLibrary(c **units.Counter) kunit.Library {
	return func(r *kunit.Registry) error {
		return r.Register("Probe", func() kunit.Unit {
			*c = &units.Counter{}
			return *c
		}, "counter kept by the test")
	}
}

func newChainHost(t *testing.T, counter **units.Counter, opts ...Option) *Host {
	t.Helper()
	h := New(append([]Option{WithLibrary("probe", probeLibrary(counter))}, opts...)...)
	reg := h.Configurations()
	reg.MustAdd(kconfig.MustNew("A", "Generator", nil, "-size=16"))
	reg.MustAdd(kconfig.MustNew("B", "Relay", []string{"A"}, ""))
	reg.MustAdd(kconfig.MustNew("C", "Probe", []string{"B"}, ""))
	return h
}

func TestHostLifecycle(t *testing.T) {
	ctx := context.Background()
	var counter *units.Counter
	h := newChainHost(t, &counter, WithRun(kdata.RunDescriptor{RunNumber: 7, RunType: 1}), WithChainID("test"))

	assert.Equal(t, []string{"builtin", "kafka", "probe"}, h.Libraries())
	assert.Equal(t, "Uninitialized", h.State())

	assert.NoError(t, h.Init("builtin", "probe"))
	assert.NoError(t, h.Configure())
	assert.Equal(t, []string{"A", "B", "C"}, h.TaskOrder())
	assert.Equal(t, "TaskListBuilt", h.State())

	assert.NoError(t, h.Run(ctx, 3))
	assert.Equal(t, "Started", h.State())
	assert.Equal(t, uint64(3), counter.Events())
	assert.Equal(t, units.Count{Blocks: 3, Bytes: 48}, counter.Counts()[kdata.MustDataType("RAW", "GEN")])
	assert.Equal(t, uint32(7), counter.Run().RunNumber)

	stats := h.Statistics()
	assert.Equal(t, 3, len(stats))
	assert.Equal(t, "C", stats[2].Task)

	// A configuration event resets the counter without counting as an event.
	assert.NoError(t, h.Reconfigure(ctx, "counters"))
	assert.Equal(t, 0, len(counter.Counts()))
	assert.NoError(t, h.UpdateCalibration(ctx, "TPC"))

	err := h.Reset(ctx, false)
	assert.True(t, errors.Is(err, kstatus.ErrInvalidState))

	assert.NoError(t, h.Run(ctx, 0))
	assert.Equal(t, "TaskListBuilt", h.State())

	assert.NoError(t, h.Reset(ctx, false))
	assert.Equal(t, "ConfigurationLoaded", h.State())
	assert.Equal(t, 0, len(h.TaskOrder()))

	assert.NoError(t, h.Configure())
	assert.NoError(t, h.Run(ctx, 1))
	assert.NoError(t, h.Reset(ctx, true))

	assert.NoError(t, h.Deinit(ctx))
	assert.Equal(t, "Uninitialized", h.State())
	assert.NoError(t, h.Init("builtin", "probe"))
}

func TestHostRoots(t *testing.T) {
	var counter *units.Counter
	h := newChainHost(t, &counter, WithRoots("B"))
	assert.NoError(t, h.Init("builtin", "probe"))
	assert.NoError(t, h.Configure())
	assert.Equal(t, []string{"A", "B"}, h.TaskOrder())
}

func TestHostApply(t *testing.T) {
	f := &kconfig.File{
		Roots: []string{"B"},
		Run:   kconfig.RunSpec{Number: 12},
		Configurations: []kconfig.Entry{
			{Name: "A", Component: "Generator"},
			{Name: "B", Component: "Counter", Sources: []string{"A"}},
			{Name: "unused", Component: "Counter", Sources: []string{"A"}},
		},
	}
	h := New()
	assert.NoError(t, h.Apply(f))
	assert.NoError(t, h.Init("builtin"))
	assert.NoError(t, h.Configure())
	assert.Equal(t, []string{"A", "B"}, h.TaskOrder())
	assert.NoError(t, h.Run(context.Background(), 2))
	assert.NoError(t, h.Deinit(context.Background()))
}

func TestHostMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	var counter *units.Counter
	h := newChainHost(t, &counter, WithRegisterer(reg))
	assert.NoError(t, h.Init("builtin", "probe"))
	assert.NoError(t, h.Configure())
	assert.NoError(t, h.Run(context.Background(), 2))

	n, err := testutil.GatherAndCount(reg, "kchain_task_events_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStatus(t *testing.T) {
	s := &Status{Host: New()}

	assert.Equal(t, kstatus.CodeNotFound, s.Init("nope"))
	assert.True(t, errors.Is(s.Err(), kstatus.ErrNotFound))
	assert.Equal(t, kstatus.CodeBusy, s.Configure())
	assert.Equal(t, kstatus.CodeBusy, s.Run(1))

	assert.Equal(t, kstatus.OK, s.Init("builtin"))
	assert.NoError(t, s.Err())
	assert.Equal(t, kstatus.CodeBusy, s.Init("builtin"))
	assert.Equal(t, kstatus.CodeNotFound, s.Configure())

	reg := s.Host.Configurations()
	reg.MustAdd(kconfig.MustNew("A", "Relay", []string{"B"}, ""))
	reg.MustAdd(kconfig.MustNew("B", "Relay", []string{"A"}, ""))
	s.Host.roots = []string{"A"}
	assert.Equal(t, kstatus.CodeLoop, s.Configure())

	assert.Equal(t, kstatus.OK, s.Reset(false))
	assert.Equal(t, kstatus.OK, s.Deinit())
	assert.Equal(t, kstatus.OK, s.Init("builtin"))
	assert.Equal(t, kstatus.CodeInvalid, s.Run(-1))
}

// triggerEcho answers every data event with its trigger data as event done
// data.
type triggerEcho struct {
	triggers []string
}

func (e *triggerEcho) Init(kunit.Environment, []string) error { return nil }
func (e *triggerEcho) Deinit() error                          { return nil }
func (e *triggerEcho) InputDataTypes() []kdata.DataType       { return []kdata.DataType{kdata.Any} }

func (e *triggerEcho) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	if !kdata.IsDataEvent(evt.Type) {
		return nil
	}
	e.triggers = append(e.triggers, string(evt.Trigger))
	out.SetEventDoneData(evt.Trigger)
	return nil
}

func TestHostTrigger(t *testing.T) {
	ctx := context.Background()
	echo := &triggerEcho{}
	h := New(WithLibrary("echo", func(r *kunit.Registry) error {
		return r.Register("Echo", func() kunit.Unit { return echo }, "")
	}))
	h.Configurations().MustAdd(kconfig.MustNew("A", "Generator", nil, "-size=4"))
	h.Configurations().MustAdd(kconfig.MustNew("B", "Echo", []string{"A"}, ""))

	err := h.ProcessTrigger(ctx, []byte("L0"))
	assert.True(t, errors.Is(err, kstatus.ErrInvalidState))
	_, err = h.EventDoneData("B")
	assert.True(t, errors.Is(err, kstatus.ErrInvalidState))

	assert.NoError(t, h.Init("builtin", "echo"))
	assert.NoError(t, h.Configure())
	assert.NoError(t, h.Run(ctx, 1))
	assert.NoError(t, h.ProcessTrigger(ctx, []byte("L1")))
	assert.Equal(t, []string{"", "L1"}, echo.triggers)

	done, err := h.EventDoneData("B")
	assert.NoError(t, err)
	assert.Equal(t, "L1", string(done))

	_, err = h.EventDoneData("missing")
	assert.True(t, errors.Is(err, kstatus.ErrNotFound))
	assert.NoError(t, h.Deinit(ctx))
}
