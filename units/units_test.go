package units

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/internal/execution"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
)

var env = kunit.Environment{Log: logr.Discard()}

func allocate(t *testing.T, size uint64) *execution.Output {
	t.Helper()
	a := execution.NewArena(1)
	out, err := a.Allocate(1, size, 1<<20)
	assert.NoError(t, err)
	return out
}

func TestLibrary(t *testing.T) {
	r := kunit.NewRegistry()
	assert.NoError(t, r.Load(Library))
	assert.Equal(t, []string{"Counter", "Generator", "Relay"}, r.Kinds())

	for kind, want := range map[string]kunit.Kind{
		"Generator": kunit.KindSource,
		"Relay":     kunit.KindProcessor,
		"Counter":   kunit.KindSink,
	} {
		u, err := r.Spawn(kind)
		assert.NoError(t, err)
		got, err := kunit.KindOf(u)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestGenerator(t *testing.T) {
	g := &Generator{}
	assert.NoError(t, g.Init(env, []string{"-datatype=CLUSTERS:TPC", "-size=16", "-spec=3"}))
	assert.Equal(t, kdata.MustDataType("CLUSTERS", "TPC"), g.OutputDataType())
	assert.Equal(t, kunit.SizeEstimate{ConstBase: 16}, g.OutputDataSize())

	out := allocate(t, uint64(g.OutputDataSize().ConstBase))
	assert.NoError(t, g.ProcessEvent(context.Background(), &kunit.Event{ID: 9, Type: kdata.EventTypeData}, out))
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(out.Buffer()))

	// Steering events produce nothing.
	out = allocate(t, 16)
	assert.NoError(t, g.ProcessEvent(context.Background(), &kunit.Event{Type: kdata.EventTypeStartOfRun}, out))
	assert.NoError(t, g.Deinit())
	assert.Equal(t, uint64(1), g.emitted)
}

func TestGeneratorArguments(t *testing.T) {
	for _, args := range [][]string{
		{"-datatype=TOOLONGID:TPC"},
		{"-datatype=********:TPC"},
		{"-size=x"},
		{"stray"},
	} {
		err := (&Generator{}).Init(env, args)
		assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
	}
}

func TestRelay(t *testing.T) {
	r := &Relay{}
	assert.NoError(t, r.Init(env, []string{"-input=RAW:*"}))
	assert.Equal(t, kdata.MultipleOutputTypes, r.OutputDataType())
	assert.Equal(t, []kdata.DataType{kdata.AllDataTypes}, kdata.OutputTypes(r))

	raw := kdata.MustDataType("RAW", "TPC")
	evt := &kunit.Event{Type: kdata.EventTypeData, Blocks: []kunit.InputBlock{
		{BlockDescriptor: kdata.BlockDescriptor{Size: 3, DataType: raw, Specification: 1}, Data: []byte("abc")},
		{BlockDescriptor: kdata.BlockDescriptor{DataType: kdata.EventTypeMarker}},
		{BlockDescriptor: kdata.BlockDescriptor{Size: 2, DataType: raw, Specification: 2}, Data: []byte("de")},
	}}

	size := r.OutputDataSize().Size(evt.InputSize())
	out := allocate(t, size)
	assert.NoError(t, r.ProcessEvent(context.Background(), evt, out))
	assert.NoError(t, out.Err())
	assert.Equal(t, "abcde", string(out.Buffer()[:5]))

	small := allocate(t, 2)
	err := r.ProcessEvent(context.Background(), evt, small)
	assert.True(t, errors.Is(err, kstatus.ErrInsufficientSpace))
}

func TestCounter(t *testing.T) {
	c := &Counter{}
	assert.NoError(t, c.Init(env, nil))
	assert.Equal(t, []kdata.DataType{kdata.Any}, c.InputDataTypes())

	raw := kdata.MustDataType("RAW", "TPC")
	evt := &kunit.Event{Type: kdata.EventTypeData, Blocks: []kunit.InputBlock{
		{BlockDescriptor: kdata.BlockDescriptor{Size: 3, DataType: raw}},
		{BlockDescriptor: kdata.BlockDescriptor{Size: 4, DataType: raw}},
		{BlockDescriptor: kdata.BlockDescriptor{DataType: kdata.EventTypeMarker}},
	}}
	for i := 0; i < 2; i++ {
		assert.NoError(t, c.ProcessEvent(context.Background(), evt, nil))
	}
	assert.NoError(t, c.ProcessEvent(context.Background(), &kunit.Event{Type: kdata.EventTypeEndOfRun}, nil))

	assert.Equal(t, uint64(2), c.Events())
	assert.Equal(t, Count{Blocks: 4, Bytes: 14}, c.Counts()[raw])

	c.SetRunNumber(kdata.RunDescriptor{RunNumber: 5})
	assert.Equal(t, uint32(5), c.Run().RunNumber)

	assert.NoError(t, c.Reconfigure("entry", "chain"))
	assert.Equal(t, 0, len(c.Counts()))
	assert.NoError(t, c.Deinit())
}
