package kunit

import (
	"github.com/go-logr/logr"
)

// LogMask selects the log classes a unit emits.
type LogMask uint32

const (
	LogDebug LogMask = 1 << iota
	LogInfo
	LogError

	LogNone LogMask = 0
	LogAll  LogMask = LogDebug | LogInfo | LogError

	DefaultLogMask = LogInfo | LogError
)

// WithLogMask returns a logger that drops the classes not set in mask.
// logr verbosity 0 is info, every higher verbosity is debug.
func WithLogMask(base logr.Logger, mask LogMask) logr.Logger {
	sink := base.GetSink()
	if sink == nil {
		return base
	}
	return logr.New(&maskSink{sink: sink, mask: mask})
}

type maskSink struct {
	sink logr.LogSink
	mask LogMask
}

var _ logr.CallDepthLogSink = (*maskSink)(nil)

func (s *maskSink) Init(info logr.RuntimeInfo) {
	info.CallDepth++
	s.sink.Init(info)
}

func classOf(level int) LogMask {
	if level > 0 {
		return LogDebug
	}
	return LogInfo
}

func (s *maskSink) Enabled(level int) bool {
	return s.mask&classOf(level) != 0 && s.sink.Enabled(level)
}

func (s *maskSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if s.mask&classOf(level) == 0 {
		return
	}
	s.sink.Info(level, msg, keysAndValues...)
}

func (s *maskSink) Error(err error, msg string, keysAndValues ...interface{}) {
	if s.mask&LogError == 0 {
		return
	}
	s.sink.Error(err, msg, keysAndValues...)
}

func (s *maskSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return &maskSink{sink: s.sink.WithValues(keysAndValues...), mask: s.mask}
}

func (s *maskSink) WithName(name string) logr.LogSink {
	return &maskSink{sink: s.sink.WithName(name), mask: s.mask}
}

func (s *maskSink) WithCallDepth(depth int) logr.LogSink {
	if cd, ok := s.sink.(logr.CallDepthLogSink); ok {
		return &maskSink{sink: cd.WithCallDepth(depth), mask: s.mask}
	}
	return s
}
