package log

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

// New returns a zerolog backed logr.Logger. Inside Kubernetes it writes JSON
// to stderr, otherwise a console format to stdout. verbosity is the highest
// logr V level that is emitted.
func New(verbosity int) logr.Logger {
	var output io.Writer
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05.999Z07:00"}
	}
	return NewWithWriter(output, verbosity)
}

// NewWithWriter is like New with an explicit writer.
func NewWithWriter(w io.Writer, verbosity int) logr.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	// zerologr maps V(n) to zerolog level 1-n.
	zl := zerolog.New(w).Level(zerolog.Level(1 - verbosity)).With().Timestamp().Logger()
	return zerologr.New(&zl)
}
