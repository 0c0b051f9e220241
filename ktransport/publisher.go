package ktransport

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kserde"
	"github.com/birdayz/kchain/kunit"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher is a sink that sends the data blocks of every data event as one
// frame to a Kafka topic. The record key is the event id.
type Publisher struct {
	endpoint
	inputs kdata.List

	published uint64
}

func (p *Publisher) Init(env kunit.Environment, args []string) error {
	p.log = env.Log
	p.inputs = kdata.List{kdata.Any}

	fs := p.flags("KafkaPublisher")
	fs.Var(&p.inputs, "input", "comma separated input data types")
	if err := p.parse(fs, args); err != nil {
		return err
	}
	return p.connect()
}

func (p *Publisher) Deinit() error {
	p.log.Info("Publisher finished", "topic", p.topic, "frames", p.published)
	p.close()
	return nil
}

func (p *Publisher) InputDataTypes() []kdata.DataType {
	return p.inputs
}

// Published returns the number of frames sent.
func (p *Publisher) Published() uint64 {
	return p.published
}

func (p *Publisher) ProcessEvent(ctx context.Context, evt *kunit.Event, _ kunit.Output) error {
	if !kdata.IsDataEvent(evt.Type) {
		return nil
	}
	data := evt.DataBlocks()
	if len(data) == 0 {
		return nil
	}

	frame := kserde.Frame{
		EventID:   evt.ID,
		EventType: evt.Type,
		Trigger:   evt.Trigger,
		Blocks:    make([]kserde.FrameBlock, len(data)),
	}
	for i, b := range data {
		frame.Blocks[i] = kserde.FrameBlock{Descriptor: b.BlockDescriptor, Data: b.Data}
	}
	value, err := kserde.EventFrame.Serializer(frame)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, evt.ID)

	if err := p.ensureClient(); err != nil {
		return fmt.Errorf("%s: send event %d: %w", p.name, evt.ID, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.client.Produce(sendCtx, &kgo.Record{Topic: p.topic, Key: key, Value: value})
	if isTimeout(err) {
		if rerr := p.reconnect(); rerr != nil {
			return fmt.Errorf("%s: send event %d: %w", p.name, evt.ID, rerr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s: send event %d: %w", p.name, evt.ID, err)
	}
	p.published++
	return nil
}
