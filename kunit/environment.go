package kunit

import (
	"github.com/go-logr/logr"
)

// Environment is handed to a unit on Init.
type Environment struct {
	Log logr.Logger
	// Name is the configuration name of the task running the unit.
	Name              string
	Kind              string
	ChainID           string
	ObjectCompression int
	Benchmark         bool
}

// NewEnvironment builds the environment of a unit from the scanned
// arguments. The logger is named after the task and filtered by the
// loglevel mask.
func NewEnvironment(base logr.Logger, name, kind string, args Arguments) Environment {
	log := WithLogMask(base, args.LogLevel).WithName(name).WithValues("component", kind)
	return Environment{
		Log:               log,
		Name:              name,
		Kind:              kind,
		ChainID:           args.ChainID,
		ObjectCompression: args.ObjectCompression,
		Benchmark:         args.Benchmark,
	}
}
