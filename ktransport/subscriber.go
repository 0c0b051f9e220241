package ktransport

import (
	"context"
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kserde"
	"github.com/birdayz/kchain/kstatus"
	"github.com/birdayz/kchain/kunit"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultMaxFrameSize is the output buffer a subscriber requests per event.
const DefaultMaxFrameSize = 1 << 20

// Subscriber is a source that turns one frame received from a Kafka topic
// into the output blocks of one data event. When nothing arrives within the
// timeout the event reports no data and the client is re-created.
type Subscriber struct {
	endpoint
	outputs kdata.List
	maxSize uint
	group   string

	pending     []*kgo.Record
	received    uint64
	lastEventID uint64
}

func (s *Subscriber) Init(env kunit.Environment, args []string) error {
	s.log = env.Log
	s.outputs = kdata.List{kdata.AllDataTypes}

	fs := s.flags("KafkaSubscriber")
	fs.Var(&s.outputs, "output", "comma separated data types taken from the frames")
	fs.UintVar(&s.maxSize, "max-size", DefaultMaxFrameSize, "largest frame payload in bytes")
	fs.StringVar(&s.group, "group", "", "consumer group, none to read the topic from the start")
	if err := s.parse(fs, args); err != nil {
		return err
	}

	s.opts = []kgo.Opt{
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if s.group != "" {
		s.opts = append(s.opts, kgo.ConsumerGroup(s.group))
	}
	return s.connect()
}

func (s *Subscriber) Deinit() error {
	s.log.Info("Subscriber finished", "topic", s.topic, "frames", s.received, "dropped", len(s.pending))
	s.pending = nil
	s.close()
	return nil
}

func (s *Subscriber) OutputDataType() kdata.DataType {
	return kdata.MultipleOutputTypes
}

func (s *Subscriber) OutputDataTypes() []kdata.DataType {
	return s.outputs
}

func (s *Subscriber) OutputDataSize() kunit.SizeEstimate {
	return kunit.SizeEstimate{ConstBase: uint32(s.maxSize)}
}

// Received returns the number of frames turned into events.
func (s *Subscriber) Received() uint64 {
	return s.received
}

// LastEventID returns the publisher's event ID of the last received frame.
func (s *Subscriber) LastEventID() uint64 {
	return s.lastEventID
}

func (s *Subscriber) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	if !kdata.IsDataEvent(evt.Type) {
		return nil
	}
	if len(s.pending) == 0 {
		if err := s.poll(ctx); err != nil {
			return err
		}
	}

	record := s.pending[0]
	s.pending = s.pending[1:]

	frame, err := kserde.EventFrame.Deserializer(record.Value)
	if err != nil {
		return fmt.Errorf("%s: record %s/%d@%d: %w", s.name, record.Topic, record.Partition, record.Offset, err)
	}
	s.received++
	s.lastEventID = frame.EventID
	s.log.V(1).Info("Received frame", "event", frame.EventID, "blocks", len(frame.Blocks), "offset", record.Offset)

	// The trigger data of the publishing chain leaves this chain as event
	// done data.
	if len(frame.Trigger) > 0 {
		out.SetEventDoneData(frame.Trigger)
	}

	for _, b := range frame.Blocks {
		if !b.Descriptor.DataType.MatchesAny(s.outputs) {
			continue
		}
		if err := out.PushBack(b.Data, b.Descriptor.DataType, b.Descriptor.Specification); err != nil {
			return err
		}
	}
	return nil
}

func (s *Subscriber) poll(ctx context.Context) error {
	if err := s.ensureClient(); err != nil {
		return fmt.Errorf("%w: %v", kstatus.ErrNoData, err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.client.Poll(pollCtx)
	switch {
	case isTimeout(err):
		if rerr := s.reconnect(); rerr != nil {
			return fmt.Errorf("%w: %v", kstatus.ErrNoData, rerr)
		}
		return fmt.Errorf("%w: %s: nothing received within %s", kstatus.ErrNoData, s.name, s.timeout)
	case err != nil:
		return fmt.Errorf("%s: %w", s.name, err)
	case len(records) == 0:
		return fmt.Errorf("%w: %s: empty fetch", kstatus.ErrNoData, s.name)
	}
	s.pending = records
	return nil
}
