package ktransport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/birdayz/kchain/kstatus"
	"github.com/go-logr/logr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTimeout bounds every send and receive of an endpoint.
const DefaultTimeout = 5 * time.Second

// endpoint holds the connection state shared by publisher and subscriber.
// After a timeout the client is closed and dialed again.
type endpoint struct {
	log  logr.Logger
	name string
	dial Dialer
	opts []kgo.Opt

	brokers    string
	topic      string
	timeout    time.Duration
	partitions int

	client Client
	dials  int
}

func (e *endpoint) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&e.brokers, "brokers", "localhost:9092", "comma separated seed brokers")
	fs.StringVar(&e.topic, "topic", "", "topic carrying the event frames")
	fs.DurationVar(&e.timeout, "timeout", DefaultTimeout, "send and receive timeout")
	fs.IntVar(&e.partitions, "partitions", 1, "partitions of the topic when it is created")
	return fs
}

func (e *endpoint) parse(fs *flag.FlagSet, args []string) error {
	e.name = fs.Name()
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", kstatus.ErrInvalidArgument, e.name, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", kstatus.ErrInvalidArgument, e.name, fs.Args())
	}
	if e.topic == "" {
		return fmt.Errorf("%w: %s: -topic is required", kstatus.ErrInvalidArgument, e.name)
	}
	if e.timeout <= 0 {
		return fmt.Errorf("%w: %s: -timeout must be positive", kstatus.ErrInvalidArgument, e.name)
	}
	if e.partitions <= 0 {
		return fmt.Errorf("%w: %s: -partitions must be positive", kstatus.ErrInvalidArgument, e.name)
	}
	return nil
}

func (e *endpoint) seeds() []string {
	var out []string
	for _, b := range strings.Split(e.brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (e *endpoint) connect() error {
	client, err := e.dial(e.seeds(), e.opts...)
	if err != nil {
		return fmt.Errorf("%s: dial %s: %w", e.name, e.brokers, err)
	}
	e.dials++

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	if err := client.CreateTopics(ctx, int32(e.partitions), e.topic); err != nil {
		client.Close()
		return fmt.Errorf("%s: %w", e.name, err)
	}

	e.client = client
	e.log.V(1).Info("Connected", "brokers", e.brokers, "topic", e.topic)
	return nil
}

// ensureClient dials again when a failed reconnect left the endpoint
// without a client.
func (e *endpoint) ensureClient() error {
	if e.client != nil {
		return nil
	}
	return e.connect()
}

// reconnect replaces the client after a timeout. On failure the endpoint
// stays without a client until ensureClient succeeds.
func (e *endpoint) reconnect() error {
	e.log.Info("Timeout, re-creating client", "topic", e.topic, "timeout", e.timeout)
	e.close()
	return e.connect()
}

func (e *endpoint) close() {
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
