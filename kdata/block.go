package kdata

import (
	"fmt"

	"github.com/birdayz/kchain/kstatus"
)

// BlockDescriptor describes a contiguous region inside the output buffer of
// the producing task. It never owns memory.
type BlockDescriptor struct {
	Offset        uint32
	Size          uint32
	DataType      DataType
	Specification Specification
}

// End returns the offset of the first byte after the block.
func (d BlockDescriptor) End() uint64 {
	return uint64(d.Offset) + uint64(d.Size)
}

// Validate checks that the descriptor is concrete and fits into a buffer of
// the given size.
func (d BlockDescriptor) Validate(bufferSize uint32) error {
	if d.DataType.IsWildcard() {
		return fmt.Errorf("%w: block of wildcard type %s", kstatus.ErrInvalidArgument, d.DataType)
	}
	if d.End() > uint64(bufferSize) {
		return fmt.Errorf("%w: block [%d,%d) exceeds buffer of %d bytes",
			kstatus.ErrInsufficientSpace, d.Offset, d.End(), bufferSize)
	}
	return nil
}

func (d BlockDescriptor) String() string {
	return fmt.Sprintf("%s/0x%08x@%d+%d", d.DataType, uint32(d.Specification), d.Offset, d.Size)
}

// InjectionSlot is the arena slot owned by the executor for blocks it
// injects into source tasks.
const InjectionSlot = 0

// Block is a descriptor bound to the arena slot of the task that owns the
// referenced bytes.
type Block struct {
	BlockDescriptor
	Slot int
}

// TotalSize sums the sizes of the given blocks.
func TotalSize(blocks []Block) uint64 {
	var total uint64
	for _, b := range blocks {
		total += uint64(b.Size)
	}
	return total
}
