package execution

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
)

func TestArenaAllocate(t *testing.T) {
	a := NewArena(1)
	assert.Equal(t, 2, a.Slots())

	size := kunit.SizeEstimate{ConstBase: 1000, InputMultiplier: 2.0}.Size(500)
	out, err := a.Allocate(1, size, 4096)
	assert.NoError(t, err)
	assert.Equal(t, 2000, len(out.Buffer()))
	assert.Equal(t, 2000, cap(out.Buffer()))

	_, err = a.Allocate(1, 4097, 4096)
	assert.True(t, errors.Is(err, kstatus.ErrOutOfMemory))
}

func TestOutputPushBack(t *testing.T) {
	a := NewArena(1)
	out, err := a.Allocate(1, 8, 64)
	assert.NoError(t, err)

	assert.NoError(t, out.PushBack([]byte("abc"), rawTPC, 1))
	assert.NoError(t, out.PushBack([]byte("defg"), rawTPC, 2))

	blocks := out.finish(nil)
	assert.Equal(t, 2, len(blocks))
	assert.Equal(t, "abc", string(a.Data(blocks[0])))
	assert.Equal(t, "defg", string(a.Data(blocks[1])))
	assert.Equal(t, kdata.Specification(2), blocks[1].Specification)
	assert.Equal(t, 1, blocks[1].Slot)

	// Framework blocks go right after the unit data.
	b := a.Append(1, []byte("xy"), kdata.ComponentTable, kdata.VoidSpecification)
	assert.Equal(t, uint32(7), b.Offset)
	assert.Equal(t, 3, len(a.Blocks(1)))
}

func TestOutputOverflow(t *testing.T) {
	a := NewArena(1)
	out, err := a.Allocate(1, 4, 64)
	assert.NoError(t, err)

	assert.NoError(t, out.PushBack([]byte("ab"), rawTPC, 0))
	err = out.PushBack([]byte("cde"), rawTPC, 0)
	assert.True(t, errors.Is(err, kstatus.ErrInsufficientSpace))

	// Later writes that would fit do not revive the event.
	assert.NoError(t, out.PushBack([]byte("c"), rawTPC, 0))
	assert.True(t, errors.Is(out.Err(), kstatus.ErrInsufficientSpace))
	assert.Equal(t, 0, len(out.finish(nil)))
	assert.Equal(t, 0, len(a.Blocks(1)))
}

func TestOutputCommit(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		a := NewArena(1)
		out, err := a.Allocate(1, 16, 64)
		assert.NoError(t, err)
		copy(out.Buffer(), "hello world")
		assert.NoError(t, out.Commit(11, []kdata.BlockDescriptor{
			{Offset: 0, Size: 5, DataType: rawTPC},
			{Offset: 6, Size: 5, DataType: rawTPC},
		}))
		blocks := out.finish(nil)
		assert.Equal(t, "world", string(a.Data(blocks[1])))
	})

	tests := []struct {
		name   string
		size   uint32
		blocks []kdata.BlockDescriptor
		want   error
	}{
		{name: "size beyond buffer", size: 17, want: kstatus.ErrInsufficientSpace},
		{name: "block beyond size", size: 4, blocks: []kdata.BlockDescriptor{{Offset: 2, Size: 4, DataType: rawTPC}}, want: kstatus.ErrInsufficientSpace},
		{name: "wildcard type", size: 4, blocks: []kdata.BlockDescriptor{{Size: 4, DataType: kdata.Any}}, want: kstatus.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena(1)
			out, err := a.Allocate(1, 16, 64)
			assert.NoError(t, err)
			err = out.Commit(tt.size, tt.blocks)
			assert.True(t, errors.Is(err, tt.want))
			assert.Equal(t, 0, len(out.finish(nil)))
		})
	}
}

func TestOutputMixedStyles(t *testing.T) {
	a := NewArena(1)
	out, err := a.Allocate(1, 16, 64)
	assert.NoError(t, err)
	assert.NoError(t, out.PushBack([]byte("a"), rawTPC, 0))
	err = out.Commit(1, nil)
	assert.True(t, errors.Is(err, kunit.ErrMixedOutput))
	assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))

	out, err = a.Allocate(1, 16, 64)
	assert.NoError(t, err)
	assert.NoError(t, out.Commit(0, nil))
	err = out.PushBack([]byte("a"), rawTPC, 0)
	assert.True(t, errors.Is(err, kunit.ErrMixedOutput))
	assert.Equal(t, 0, len(out.finish(nil)))
}

func TestOutputWildcardPushBack(t *testing.T) {
	a := NewArena(1)
	out, err := a.Allocate(1, 16, 64)
	assert.NoError(t, err)
	err = out.PushBack([]byte("a"), kdata.AllDataTypes, 0)
	assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
}

func TestOutputUnitError(t *testing.T) {
	a := NewArena(1)
	out, err := a.Allocate(1, 16, 64)
	assert.NoError(t, err)
	assert.NoError(t, out.PushBack([]byte("a"), rawTPC, 0))
	out.SetEventDoneData([]byte("done"))
	assert.Equal(t, "done", string(out.EventDoneData()))
	assert.Equal(t, 0, len(out.finish(errors.New("unit failed"))))
}
