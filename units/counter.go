package units

import (
	"context"
	"sync"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
)

// Count is the tally of one data type.
type Count struct {
	Blocks uint64
	Bytes  uint64
}

// Counter counts the blocks and bytes it receives per data type.
// Reconfiguration resets the tally.
type Counter struct {
	log    logr.Logger
	inputs kdata.List

	mu     sync.Mutex
	counts map[kdata.DataType]Count
	events uint64
	run    kdata.RunDescriptor
}

func (c *Counter) Init(env kunit.Environment, args []string) error {
	c.log = env.Log
	c.inputs = kdata.List{kdata.Any}
	c.counts = make(map[kdata.DataType]Count)

	fs := newFlagSet("Counter")
	fs.Var(&c.inputs, "input", "comma separated input data types")
	return parseFlags(fs, args)
}

func (c *Counter) Deinit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for dt, n := range c.counts {
		c.log.Info("Counted", "dataType", dt.String(), "blocks", n.Blocks, "bytes", n.Bytes)
	}
	return nil
}

func (c *Counter) InputDataTypes() []kdata.DataType {
	return c.inputs
}

func (c *Counter) SetRunNumber(run kdata.RunDescriptor) {
	c.mu.Lock()
	c.run = run
	c.mu.Unlock()
}

func (c *Counter) Reconfigure(entry, chainID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Info("Resetting counts", "entry", entry, "chainID", chainID)
	c.counts = make(map[kdata.DataType]Count)
	c.events = 0
	return nil
}

func (c *Counter) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	if !kdata.IsDataEvent(evt.Type) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events++
	for _, b := range evt.DataBlocks() {
		n := c.counts[b.DataType]
		n.Blocks++
		n.Bytes += uint64(b.Size)
		c.counts[b.DataType] = n
	}
	return nil
}

// Counts returns a copy of the tally.
func (c *Counter) Counts() map[kdata.DataType]Count {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[kdata.DataType]Count, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Events returns the number of data events seen.
func (c *Counter) Events() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

// Run returns the run announced to the counter.
func (c *Counter) Run() kdata.RunDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}
