package kunit

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

type baseUnit struct{}

func (baseUnit) Init(Environment, []string) error                   { return nil }
func (baseUnit) Deinit() error                                      { return nil }
func (baseUnit) ProcessEvent(context.Context, *Event, Output) error { return nil }

type sourceUnit struct{ baseUnit }

func (sourceUnit) OutputDataType() kdata.DataType { return kdata.MustDataType("RAW", "TPC") }
func (sourceUnit) OutputDataSize() SizeEstimate   { return SizeEstimate{ConstBase: 64} }

type sinkUnit struct{ baseUnit }

func (sinkUnit) InputDataTypes() []kdata.DataType { return []kdata.DataType{kdata.Any} }

type processorUnit struct {
	sourceUnit
}

func (processorUnit) InputDataTypes() []kdata.DataType { return []kdata.DataType{kdata.Any} }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		want Kind
	}{
		{name: "source", unit: sourceUnit{}, want: KindSource},
		{name: "sink", unit: sinkUnit{}, want: KindSink},
		{name: "processor", unit: processorUnit{}, want: KindProcessor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindOf(tt.unit)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := KindOf(baseUnit{})
	assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
}

func TestSizeEstimate(t *testing.T) {
	assert.Equal(t, uint64(2000), SizeEstimate{ConstBase: 1000, InputMultiplier: 2.0}.Size(500))
	assert.Equal(t, uint64(64), SizeEstimate{ConstBase: 64}.Size(1<<20))
	assert.Equal(t, uint64(2), SizeEstimate{InputMultiplier: 0.5}.Size(3))
}

func TestScanArguments(t *testing.T) {
	args, err := ScanArguments([]string{"loglevel=0x7", "-object-compression=5", "chainid=chain-1", "benchmark", "-size=64", "x"})
	assert.NoError(t, err)
	assert.Equal(t, LogMask(0x7), args.LogLevel)
	assert.Equal(t, 5, args.ObjectCompression)
	assert.Equal(t, "chain-1", args.ChainID)
	assert.True(t, args.Benchmark)
	assert.Equal(t, []string{"-size=64", "x"}, args.Rest)

	defaults, err := ScanArguments(nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultLogMask, defaults.LogLevel)
	assert.Equal(t, DefaultObjectCompression, defaults.ObjectCompression)
	assert.Equal(t, 0, len(defaults.Rest))

	dash, err := ScanArguments([]string{"-loglevel=f"})
	assert.NoError(t, err)
	assert.Equal(t, LogMask(0xf), dash.LogLevel)

	for _, bad := range []string{"loglevel=zz", "-object-compression=10", "-object-compression=x", "chainid="} {
		t.Run(bad, func(t *testing.T) {
			_, err := ScanArguments([]string{bad})
			assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register("Source", func() Unit { return sourceUnit{} }, "test source"))
	assert.NoError(t, r.Register("Broken", func() Unit { return baseUnit{} }, ""))

	err := r.Register("Source", func() Unit { return sourceUnit{} }, "")
	assert.True(t, errors.Is(err, kstatus.ErrAlreadyExists))

	u, err := r.Spawn("Source")
	assert.NoError(t, err)
	kind, err := KindOf(u)
	assert.NoError(t, err)
	assert.Equal(t, KindSource, kind)

	_, err = r.Spawn("Missing")
	assert.True(t, errors.Is(err, kstatus.ErrNotFound))

	_, err = r.Spawn("Broken")
	assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))

	assert.Equal(t, []string{"Broken", "Source"}, r.Kinds())
	assert.Equal(t, "test source", r.Description("Source"))
}

func TestRegistryLoad(t *testing.T) {
	r := NewRegistry()
	lib := func(r *Registry) error {
		return r.Register("Sink", func() Unit { return sinkUnit{} }, "")
	}
	assert.NoError(t, r.Load(lib))
	// Loading the same library twice collides.
	err := r.Load(lib)
	assert.True(t, errors.Is(err, kstatus.ErrAlreadyExists))
}

func TestEventHelpers(t *testing.T) {
	raw := kdata.MustDataType("RAW", "TPC")
	evt := &Event{Blocks: []InputBlock{
		{BlockDescriptor: kdata.BlockDescriptor{Size: 4, DataType: kdata.EventTypeMarker}},
		{BlockDescriptor: kdata.BlockDescriptor{Size: 10, DataType: raw}},
	}}
	assert.Equal(t, uint64(14), evt.InputSize())
	assert.Equal(t, 1, len(evt.DataBlocks()))
	assert.Equal(t, 1, len(evt.Find(kdata.DataType{ID: kdata.AnyID, Origin: raw.Origin})))
}
