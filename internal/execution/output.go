package execution

import (
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
)

type outputStyle int

const (
	styleNone outputStyle = iota
	stylePushBack
	styleCommit
)

// Output implements kunit.Output on top of an arena slot.
type Output struct {
	arena *Arena
	slot  int
	size  uint32

	style  outputStyle
	used   uint32
	blocks []kdata.BlockDescriptor
	// err is the first failure of the event. It discards every block.
	err       error
	eventDone []byte
}

var _ kunit.Output = (*Output)(nil)

// Buffer returns the unit's view of the slot, limited to the allocation.
func (o *Output) Buffer() []byte {
	return o.arena.slots[o.slot].buf[:o.size:o.size]
}

// Commit publishes a block list written directly into Buffer.
func (o *Output) Commit(size uint32, blocks []kdata.BlockDescriptor) error {
	switch o.style {
	case stylePushBack:
		return o.fail(kunit.ErrMixedOutput)
	case styleCommit:
		return o.fail(fmt.Errorf("%w: Commit called twice in one event", kstatus.ErrInvalidArgument))
	}
	o.style = styleCommit

	if size > o.size {
		return o.fail(fmt.Errorf("%w: committed %d bytes into a buffer of %d bytes",
			kstatus.ErrInsufficientSpace, size, o.size))
	}
	for _, b := range blocks {
		if err := b.Validate(size); err != nil {
			return o.fail(err)
		}
	}
	o.used = size
	o.blocks = append(o.blocks[:0], blocks...)
	return nil
}

// PushBack copies data behind the previously pushed blocks.
func (o *Output) PushBack(data []byte, dt kdata.DataType, spec kdata.Specification) error {
	if o.style == styleCommit {
		return o.fail(kunit.ErrMixedOutput)
	}
	o.style = stylePushBack

	if dt.IsWildcard() {
		return o.fail(fmt.Errorf("%w: block of wildcard type %s", kstatus.ErrInvalidArgument, dt))
	}
	if uint64(o.used)+uint64(len(data)) > uint64(o.size) {
		return o.fail(fmt.Errorf("%w: %d bytes do not fit, %d of %d bytes used",
			kstatus.ErrInsufficientSpace, len(data), o.used, o.size))
	}
	copy(o.Buffer()[o.used:], data)
	o.blocks = append(o.blocks, kdata.BlockDescriptor{
		Offset:        o.used,
		Size:          uint32(len(data)),
		DataType:      dt,
		Specification: spec,
	})
	o.used += uint32(len(data))
	return nil
}

// SetEventDoneData attaches event completion data.
func (o *Output) SetEventDoneData(data []byte) {
	o.eventDone = append(o.eventDone[:0], data...)
}

// EventDoneData returns the data set by the unit.
func (o *Output) EventDoneData() []byte {
	return o.eventDone
}

// Err returns the first output failure of the event.
func (o *Output) Err() error {
	return o.err
}

func (o *Output) fail(err error) error {
	if o.err == nil {
		o.err = err
	}
	return err
}

// finish publishes the unit blocks in the slot. With an output failure or
// unitErr set nothing is published. The slot is truncated to the used bytes
// so framework blocks are appended right after the unit data.
func (o *Output) finish(unitErr error) []kdata.Block {
	s := o.arena.slots[o.slot]
	if o.err != nil || unitErr != nil {
		s.buf = s.buf[:0]
		s.blocks = s.blocks[:0]
		return nil
	}
	s.buf = s.buf[:o.used]
	s.blocks = s.blocks[:0]
	for _, d := range o.blocks {
		s.blocks = append(s.blocks, kdata.Block{BlockDescriptor: d, Slot: o.slot})
	}
	return s.blocks
}
