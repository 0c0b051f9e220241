package units

import (
	"context"
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
)

// Relay copies every data block it receives to its output, keeping type and
// specification. It writes the output buffer directly and commits once.
type Relay struct {
	inputs  kdata.List
	outputs kdata.List
}

func (r *Relay) Init(env kunit.Environment, args []string) error {
	r.inputs = kdata.List{kdata.Any}
	r.outputs = kdata.List{kdata.AllDataTypes}

	fs := newFlagSet("Relay")
	fs.Var(&r.inputs, "input", "comma separated input data types")
	fs.Var(&r.outputs, "output", "comma separated output data types")
	return parseFlags(fs, args)
}

func (r *Relay) Deinit() error {
	return nil
}

func (r *Relay) InputDataTypes() []kdata.DataType {
	return r.inputs
}

func (r *Relay) OutputDataType() kdata.DataType {
	return kdata.MultipleOutputTypes
}

func (r *Relay) OutputDataTypes() []kdata.DataType {
	return r.outputs
}

func (r *Relay) OutputDataSize() kunit.SizeEstimate {
	return kunit.SizeEstimate{InputMultiplier: 1.0}
}

func (r *Relay) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	buf := out.Buffer()
	var (
		used   uint32
		blocks []kdata.BlockDescriptor
	)
	for _, b := range evt.DataBlocks() {
		if int(used)+len(b.Data) > len(buf) {
			return fmt.Errorf("%w: Relay: output buffer of %d bytes too small", kstatus.ErrInsufficientSpace, len(buf))
		}
		copy(buf[used:], b.Data)
		blocks = append(blocks, kdata.BlockDescriptor{
			Offset:        used,
			Size:          b.Size,
			DataType:      b.DataType,
			Specification: b.Specification,
		})
		used += b.Size
	}
	return out.Commit(used, blocks)
}
