package units

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
)

// Generator emits one block of -size bytes per data event. The first eight
// bytes carry the event id.
type Generator struct {
	log      logr.Logger
	dataType kdata.DataType
	spec     uint
	size     uint

	run     kdata.RunDescriptor
	emitted uint64
	payload []byte
}

func (g *Generator) Init(env kunit.Environment, args []string) error {
	g.log = env.Log
	g.dataType = kdata.MustDataType("RAW", "GEN")

	types := kdata.List{g.dataType}
	fs := newFlagSet("Generator")
	fs.Var(&types, "datatype", "data type of the emitted blocks")
	fs.UintVar(&g.spec, "spec", 0, "specification of the emitted blocks")
	fs.UintVar(&g.size, "size", 64, "block size in bytes")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if len(types) != 1 || types[0].IsWildcard() {
		return fmt.Errorf("%w: Generator: -datatype must name one concrete type", kstatus.ErrInvalidArgument)
	}
	g.dataType = types[0]
	g.payload = make([]byte, g.size)
	for i := range g.payload {
		g.payload[i] = byte(i)
	}
	return nil
}

func (g *Generator) Deinit() error {
	g.log.Info("Generator finished", "blocks", g.emitted)
	return nil
}

func (g *Generator) OutputDataType() kdata.DataType {
	return g.dataType
}

func (g *Generator) OutputDataSize() kunit.SizeEstimate {
	return kunit.SizeEstimate{ConstBase: uint32(g.size)}
}

func (g *Generator) SetRunNumber(run kdata.RunDescriptor) {
	g.run = run
}

func (g *Generator) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	if !kdata.IsDataEvent(evt.Type) {
		return nil
	}
	if len(g.payload) >= 8 {
		binary.LittleEndian.PutUint64(g.payload, evt.ID)
	}
	if err := out.PushBack(g.payload, g.dataType, kdata.Specification(g.spec)); err != nil {
		return err
	}
	g.emitted++
	return nil
}
