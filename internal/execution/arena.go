package execution

import (
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

// Arena owns one output buffer per task plus the injection slot of the
// executor. Blocks refer into it by slot index and offset.
type Arena struct {
	slots []*slot
}

type slot struct {
	buf    []byte
	blocks []kdata.Block
}

// NewArena creates an arena with n task slots after the injection slot.
func NewArena(n int) *Arena {
	a := &Arena{slots: make([]*slot, n+1)}
	for i := range a.slots {
		a.slots[i] = &slot{}
	}
	return a
}

// Slots returns the number of slots including the injection slot.
func (a *Arena) Slots() int {
	return len(a.slots)
}

// Reset drops the content of slot i. The memory is kept for the next event.
func (a *Arena) Reset(i int) {
	s := a.slots[i]
	s.buf = s.buf[:0]
	s.blocks = s.blocks[:0]
}

// Blocks returns the blocks published in slot i.
func (a *Arena) Blocks(i int) []kdata.Block {
	return a.slots[i].blocks
}

// Data returns the bytes referenced by b.
func (a *Arena) Data(b kdata.Block) []byte {
	s := a.slots[b.Slot]
	return s.buf[b.Offset:b.End():b.End()]
}

// Append copies data to the end of slot i and publishes it as one block.
func (a *Arena) Append(i int, data []byte, dt kdata.DataType, spec kdata.Specification) kdata.Block {
	s := a.slots[i]
	b := kdata.Block{
		BlockDescriptor: kdata.BlockDescriptor{
			Offset:        uint32(len(s.buf)),
			Size:          uint32(len(data)),
			DataType:      dt,
			Specification: spec,
		},
		Slot: i,
	}
	s.buf = append(s.buf, data...)
	s.blocks = append(s.blocks, b)
	return b
}

// Forward publishes a block owned by another slot in slot i without copying.
func (a *Arena) Forward(i int, b kdata.Block) {
	a.slots[i].blocks = append(a.slots[i].blocks, b)
}

// Allocate prepares slot i for a unit writing up to size bytes. Sizes above
// limit fail with kstatus.ErrOutOfMemory.
func (a *Arena) Allocate(i int, size uint64, limit uint32) (*Output, error) {
	if size > uint64(limit) {
		return nil, fmt.Errorf("%w: output buffer of %d bytes exceeds limit of %d bytes",
			kstatus.ErrOutOfMemory, size, limit)
	}
	s := a.slots[i]
	if uint64(cap(s.buf)) < size {
		s.buf = make([]byte, size)
	} else {
		s.buf = s.buf[:size]
		clear(s.buf)
	}
	s.blocks = s.blocks[:0]
	return &Output{arena: a, slot: i, size: uint32(size)}, nil
}
