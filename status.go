package kchain

import (
	"context"

	"github.com/birdayz/kchain/kstatus"
)

// Status drives a Host through calls that return signed status codes: 0 on
// success, a negative errno value from kstatus on failure. The last error is
// kept for inspection.
type Status struct {
	Host *Host
	err  error
}

func (s *Status) status(err error) int {
	s.err = err
	if err != nil {
		s.Host.log.Error(err, "Host call failed", "status", kstatus.Code(err))
	}
	return kstatus.Code(err)
}

// Err returns the error of the last call.
func (s *Status) Err() error {
	return s.err
}

func (s *Status) Init(libraries ...string) int {
	return s.status(s.Host.Init(libraries...))
}

func (s *Status) Configure() int {
	return s.status(s.Host.Configure())
}

func (s *Status) Run(n int) int {
	return s.status(s.Host.Run(context.Background(), n))
}

func (s *Status) Reset(force bool) int {
	return s.status(s.Host.Reset(context.Background(), force))
}

func (s *Status) Deinit() int {
	return s.status(s.Host.Deinit(context.Background()))
}
