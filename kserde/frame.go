package kserde

import (
	"fmt"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

const (
	frameMagic      = "KCHN"
	frameVersion    = 1
	frameHeaderSize = 4 + 2 + 2 + 8 + 4 + 4 + 4
)

// FrameBlock is a block with its payload copied out of the producer's
// buffer.
type FrameBlock struct {
	Descriptor kdata.BlockDescriptor
	Data       []byte
}

// Frame is one event as it crosses a transport boundary.
type Frame struct {
	EventID   uint64
	EventType uint32
	Trigger   []byte
	Blocks    []FrameBlock
}

// FrameSerializer lays out a frame as header, trigger data, descriptor table
// and payload area. Descriptor offsets are rewritten relative to the start
// of the payload area.
var FrameSerializer = func(f Frame) ([]byte, error) {
	payloadSize := 0
	for _, b := range f.Blocks {
		if uint64(len(b.Data)) != uint64(b.Descriptor.Size) {
			return nil, fmt.Errorf("%w: block %s carries %d bytes", kstatus.ErrInvalidArgument, b.Descriptor, len(b.Data))
		}
		payloadSize += len(b.Data)
	}

	size := frameHeaderSize + len(f.Trigger) + len(f.Blocks)*BlockDescriptorSize + payloadSize
	buf := make([]byte, size)

	copy(buf[0:4], frameMagic)
	byteOrder.PutUint16(buf[4:6], frameVersion)
	byteOrder.PutUint64(buf[8:16], f.EventID)
	byteOrder.PutUint32(buf[16:20], f.EventType)
	byteOrder.PutUint32(buf[20:24], uint32(len(f.Blocks)))
	byteOrder.PutUint32(buf[24:28], uint32(len(f.Trigger)))

	pos := frameHeaderSize
	pos += copy(buf[pos:], f.Trigger)

	payloadStart := pos + len(f.Blocks)*BlockDescriptorSize
	offset := uint32(0)
	for _, b := range f.Blocks {
		d := b.Descriptor
		d.Offset = offset
		PutBlockDescriptor(buf[pos:], d)
		pos += BlockDescriptorSize
		copy(buf[payloadStart+int(offset):], b.Data)
		offset += d.Size
	}

	return buf, nil
}

// FrameDeserializer decodes a frame. Block data aliases the input slice.
var FrameDeserializer = func(data []byte) (Frame, error) {
	var f Frame
	if len(data) < frameHeaderSize {
		return f, fmt.Errorf("%w: frame of %d bytes is shorter than its header", kstatus.ErrInvalidArgument, len(data))
	}
	if string(data[0:4]) != frameMagic {
		return f, fmt.Errorf("%w: bad frame magic %q", kstatus.ErrInvalidArgument, data[0:4])
	}
	if v := byteOrder.Uint16(data[4:6]); v != frameVersion {
		return f, fmt.Errorf("%w: unknown frame version %d", kstatus.ErrInvalidArgument, v)
	}

	f.EventID = byteOrder.Uint64(data[8:16])
	f.EventType = byteOrder.Uint32(data[16:20])
	count := uint64(byteOrder.Uint32(data[20:24]))
	triggerLen := uint64(byteOrder.Uint32(data[24:28]))

	pos := uint64(frameHeaderSize)
	payloadStart := pos + triggerLen + count*BlockDescriptorSize
	if payloadStart > uint64(len(data)) {
		return f, fmt.Errorf("%w: frame truncated, %d blocks announced", kstatus.ErrInvalidArgument, count)
	}
	if triggerLen > 0 {
		f.Trigger = data[pos : pos+triggerLen]
	}
	pos += triggerLen

	payload := data[payloadStart:]
	f.Blocks = make([]FrameBlock, 0, count)
	for i := uint64(0); i < count; i++ {
		d, err := ReadBlockDescriptor(data[pos:])
		if err != nil {
			return f, err
		}
		pos += BlockDescriptorSize
		if d.End() > uint64(len(payload)) {
			return f, fmt.Errorf("%w: block %d [%d,%d) outside payload of %d bytes",
				kstatus.ErrInvalidArgument, i, d.Offset, d.End(), len(payload))
		}
		f.Blocks = append(f.Blocks, FrameBlock{
			Descriptor: d,
			Data:       payload[d.Offset:d.End()],
		})
	}

	return f, nil
}

var EventFrame = Serde[Frame]{
	Serializer:   FrameSerializer,
	Deserializer: FrameDeserializer,
}
