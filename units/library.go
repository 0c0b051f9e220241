package units

import (
	"flag"
	"fmt"
	"io"

	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
)

// LibraryName is the name the built-in units are selected by.
const LibraryName = "builtin"

// Library registers the built-in units.
func Library(r *kunit.Registry) error {
	if err := r.Register("Generator", func() kunit.Unit { return &Generator{} },
		"emits one block per data event (-datatype, -spec, -size)"); err != nil {
		return err
	}
	if err := r.Register("Relay", func() kunit.Unit { return &Relay{} },
		"copies matching input blocks to its output (-input, -output)"); err != nil {
		return err
	}
	return r.Register("Counter", func() kunit.Unit { return &Counter{} },
		"counts blocks and bytes per data type (-input)")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", kstatus.ErrInvalidArgument, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", kstatus.ErrInvalidArgument, fs.Name(), fs.Args())
	}
	return nil
}
