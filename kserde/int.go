package kserde

import (
	"fmt"

	"github.com/birdayz/kchain/kstatus"
)

// Uint32Serializer serializes uint32 to little-endian bytes
var Uint32Serializer = func(data uint32) ([]byte, error) {
	buf := make([]byte, 4)
	byteOrder.PutUint32(buf, data)
	return buf, nil
}

// Uint32Deserializer deserializes little-endian bytes to uint32
var Uint32Deserializer = func(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("%w: uint32 deserialization requires exactly 4 bytes, got %d",
			kstatus.ErrInvalidArgument, len(data))
	}
	return byteOrder.Uint32(data), nil
}

// Uint32 is a SerDe for uint32 values, used for the run type block
var Uint32 = Serde[uint32]{
	Serializer:   Uint32Serializer,
	Deserializer: Uint32Deserializer,
}
