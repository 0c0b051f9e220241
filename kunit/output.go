package kunit

import (
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

// ErrMixedOutput is returned when a unit uses both PushBack and Commit for
// the same event.
var ErrMixedOutput = fmt.Errorf("%w: PushBack and Commit used in the same event", kstatus.ErrInvalidArgument)

// Output is the per-event output of a task.
//
// Units either append blocks one by one with PushBack, or write into Buffer
// directly and describe the written regions with a single Commit. The two
// styles cannot be mixed within one event.
type Output interface {
	// Buffer returns the task's output buffer for this event. Its length
	// is the allocated size.
	Buffer() []byte
	// Commit publishes size bytes of Buffer described by blocks. Offsets
	// are relative to the start of Buffer.
	Commit(size uint32, blocks []kdata.BlockDescriptor) error
	// PushBack copies data to the output and describes it with one block.
	PushBack(data []byte, dt kdata.DataType, spec kdata.Specification) error
	// SetEventDoneData attaches event completion data.
	SetEventDoneData(data []byte)
}
