package ktransport

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Client is the part of a Kafka client the endpoints use.
type Client interface {
	// Produce sends the records and waits for every acknowledgement.
	Produce(ctx context.Context, records ...*kgo.Record) error
	// Poll returns the next fetched records. It returns ctx.Err() when the
	// context ends before anything arrived.
	Poll(ctx context.Context) ([]*kgo.Record, error)
	// CreateTopics creates the topics. Existing topics are not an error.
	CreateTopics(ctx context.Context, partitions int32, topics ...string) error
	Close()
}

// Dialer creates a client connected to brokers.
type Dialer func(brokers []string, opts ...kgo.Opt) (Client, error)

// Dial is the Dialer backed by franz-go.
func Dial(brokers []string, opts ...kgo.Opt) (Client, error) {
	cl, err := kgo.NewClient(append([]kgo.Opt{kgo.SeedBrokers(brokers...)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &kafkaClient{
		client: cl,
		admin:  kadm.NewClient(cl),
	}, nil
}

type kafkaClient struct {
	client *kgo.Client
	admin  *kadm.Client
}

func (c *kafkaClient) Produce(ctx context.Context, records ...*kgo.Record) error {
	return c.client.ProduceSync(ctx, records...).FirstErr()
}

func (c *kafkaClient) Poll(ctx context.Context) ([]*kgo.Record, error) {
	f := c.client.PollFetches(ctx)
	if f.IsClientClosed() {
		return nil, kgo.ErrClientClosed
	}
	for _, fe := range f.Errors() {
		if errors.Is(fe.Err, context.DeadlineExceeded) || errors.Is(fe.Err, context.Canceled) {
			continue
		}
		return nil, fmt.Errorf("fetch error on topic %s, partition %d: %w", fe.Topic, fe.Partition, fe.Err)
	}
	records := f.Records()
	if len(records) == 0 && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return records, nil
}

func (c *kafkaClient) CreateTopics(ctx context.Context, partitions int32, topics ...string) error {
	resp, err := c.admin.CreateTopics(ctx, partitions, 1, nil, topics...)
	if err != nil {
		return err
	}
	for _, topic := range topics {
		r, ok := resp[topic]
		if !ok {
			continue
		}
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", topic, r.Err)
		}
	}
	return nil
}

func (c *kafkaClient) Close() {
	c.client.Close()
}
