package ktransport

import "github.com/birdayz/kchain/kunit"

// LibraryName is the name the Kafka endpoints are selected by.
const LibraryName = "kafka"

// Library registers the Kafka endpoints with the franz-go dialer.
func Library(r *kunit.Registry) error {
	return NewLibrary(Dial)(r)
}

// NewLibrary returns a library whose endpoints connect through dial.
func NewLibrary(dial Dialer) kunit.Library {
	return func(r *kunit.Registry) error {
		if err := r.Register("KafkaPublisher", func() kunit.Unit {
			return &Publisher{endpoint: endpoint{dial: dial}}
		}, "sends data blocks as event frames to a topic (-brokers, -topic, -input, -timeout)"); err != nil {
			return err
		}
		return r.Register("KafkaSubscriber", func() kunit.Unit {
			return &Subscriber{endpoint: endpoint{dial: dial}}
		}, "emits the blocks of event frames read from a topic (-brokers, -topic, -output, -group, -max-size)")
	}
}
