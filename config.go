package kchain

import (
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Option is a function that configures a Host
type Option func(*Host)

// WithLog sets the logger for the host, its pipeline and every unit
var WithLog = func(log logr.Logger) Option {
	return func(h *Host) {
		h.log = log
	}
}

// WithLibrary makes a compiled-in unit library available to Init under name
var WithLibrary = func(name string, lib kunit.Library) Option {
	return func(h *Host) {
		h.libraries[name] = lib
	}
}

// WithRegisterer registers the pipeline metrics with reg
var WithRegisterer = func(reg prometheus.Registerer) Option {
	return func(h *Host) {
		h.registerer = reg
	}
}

// WithMaxBufferSize limits a single task output buffer
var WithMaxBufferSize = func(size uint32) Option {
	return func(h *Host) {
		h.maxBufferSize = size
	}
}

// WithRoots sets the configurations Configure builds task lists for.
// Without roots every configuration that is not a source of another one is
// built.
var WithRoots = func(roots ...string) Option {
	return func(h *Host) {
		h.roots = roots
	}
}

// WithRun sets the run descriptor announced by the start-of-run event
var WithRun = func(run kdata.RunDescriptor) Option {
	return func(h *Host) {
		h.run = run
	}
}

// WithChainID sets the chain id handed to units without a chainid argument
var WithChainID = func(id string) Option {
	return func(h *Host) {
		h.chainID = id
	}
}

// WithBenchmark emits component statistics on every event
var WithBenchmark = func(enabled bool) Option {
	return func(h *Host) {
		h.benchmark = enabled
	}
}
