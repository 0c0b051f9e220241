// Package kserde contains the wire codecs used at the boundaries of a chain:
// the fixed binary layouts of block and run descriptors, the event frame
// exchanged by transport endpoints and JSON payloads of the statistics and
// component table blocks.
package kserde

// Serde pairs a serializer with its deserializer.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

type Serializer[T any] func(T) ([]byte, error)

type Deserializer[T any] func([]byte) (T, error)
