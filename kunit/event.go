package kunit

import (
	"github.com/birdayz/kchain/kdata"
)

// InputBlock is a block delivered to a unit. Data aliases the producer's
// buffer and is only valid during ProcessEvent.
type InputBlock struct {
	kdata.BlockDescriptor
	Data []byte
}

// Event is the input of one ProcessEvent call.
type Event struct {
	ID uint64
	// Type is the event type announced by the EventTypeMarker block, or
	// kdata.EventTypeUnknown when the event carries no marker.
	Type    uint32
	Run     kdata.RunDescriptor
	Blocks  []InputBlock
	Trigger []byte
}

// Find returns the input blocks selected by pattern.
func (e *Event) Find(pattern kdata.DataType) []InputBlock {
	var out []InputBlock
	for _, b := range e.Blocks {
		if b.DataType.Matches(pattern) {
			out = append(out, b)
		}
	}
	return out
}

// DataBlocks returns the input blocks that are not steering blocks.
func (e *Event) DataBlocks() []InputBlock {
	var out []InputBlock
	for _, b := range e.Blocks {
		if !b.DataType.IsControl() {
			out = append(out, b)
		}
	}
	return out
}

// InputSize returns the total size of the input blocks.
func (e *Event) InputSize() uint64 {
	var total uint64
	for _, b := range e.Blocks {
		total += uint64(b.Size)
	}
	return total
}
