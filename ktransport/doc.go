// Package ktransport connects chains across process boundaries over Kafka.
//
// A KafkaPublisher sink serializes the data blocks of each data event into
// one kserde.EventFrame record. A KafkaSubscriber source reads those records
// and re-emits the blocks as its own output, one frame per event. Both
// bound every broker round trip by -timeout and re-create their client when
// it expires.
//
//	pub {KafkaPublisher} -> tracker ; arguments="-topic=tracks -brokers=kafka:9092"
//	sub {KafkaSubscriber} ; arguments="-topic=tracks -output=TRACKS:*"
package ktransport
