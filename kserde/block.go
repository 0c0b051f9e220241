package kserde

import (
	"encoding/binary"
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

// Wire sizes of the fixed binary structures.
const (
	BlockDescriptorSize = 24
	RunDescriptorSize   = 8
)

var byteOrder = binary.LittleEndian

// PutBlockDescriptor encodes d into the first BlockDescriptorSize bytes of
// buf: offset u32, size u32, id [8], origin [4], specification u32.
func PutBlockDescriptor(buf []byte, d kdata.BlockDescriptor) {
	_ = buf[BlockDescriptorSize-1]
	byteOrder.PutUint32(buf[0:4], d.Offset)
	byteOrder.PutUint32(buf[4:8], d.Size)
	copy(buf[8:16], d.DataType.ID[:])
	copy(buf[16:20], d.DataType.Origin[:])
	byteOrder.PutUint32(buf[20:24], uint32(d.Specification))
}

// ReadBlockDescriptor decodes a descriptor written by PutBlockDescriptor.
func ReadBlockDescriptor(buf []byte) (kdata.BlockDescriptor, error) {
	var d kdata.BlockDescriptor
	if len(buf) < BlockDescriptorSize {
		return d, fmt.Errorf("%w: block descriptor requires %d bytes, got %d",
			kstatus.ErrInvalidArgument, BlockDescriptorSize, len(buf))
	}
	d.Offset = byteOrder.Uint32(buf[0:4])
	d.Size = byteOrder.Uint32(buf[4:8])
	copy(d.DataType.ID[:], buf[8:16])
	copy(d.DataType.Origin[:], buf[16:20])
	d.Specification = kdata.Specification(byteOrder.Uint32(buf[20:24]))
	return d, nil
}

var BlockDescriptorSerializer = func(d kdata.BlockDescriptor) ([]byte, error) {
	buf := make([]byte, BlockDescriptorSize)
	PutBlockDescriptor(buf, d)
	return buf, nil
}

var BlockDescriptorDeserializer = func(data []byte) (kdata.BlockDescriptor, error) {
	if len(data) != BlockDescriptorSize {
		return kdata.BlockDescriptor{}, fmt.Errorf("%w: block descriptor requires exactly %d bytes, got %d",
			kstatus.ErrInvalidArgument, BlockDescriptorSize, len(data))
	}
	return ReadBlockDescriptor(data)
}

var BlockDescriptor = Serde[kdata.BlockDescriptor]{
	Serializer:   BlockDescriptorSerializer,
	Deserializer: BlockDescriptorDeserializer,
}

var RunDescriptorSerializer = func(r kdata.RunDescriptor) ([]byte, error) {
	buf := make([]byte, RunDescriptorSize)
	byteOrder.PutUint32(buf[0:4], r.RunNumber)
	byteOrder.PutUint32(buf[4:8], r.RunType)
	return buf, nil
}

var RunDescriptorDeserializer = func(data []byte) (kdata.RunDescriptor, error) {
	if len(data) < RunDescriptorSize {
		return kdata.RunDescriptor{}, fmt.Errorf("%w: run descriptor requires %d bytes, got %d",
			kstatus.ErrInvalidArgument, RunDescriptorSize, len(data))
	}
	return kdata.RunDescriptor{
		RunNumber: byteOrder.Uint32(data[0:4]),
		RunType:   byteOrder.Uint32(data[4:8]),
	}, nil
}

var RunDescriptor = Serde[kdata.RunDescriptor]{
	Serializer:   RunDescriptorSerializer,
	Deserializer: RunDescriptorDeserializer,
}
