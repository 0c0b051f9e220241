package kunit

import (
	"context"
	"fmt"
	"math"

	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kstatus"
)

// Unit is a processing unit. The executor calls Init once before the first
// event, ProcessEvent once per event in task list order and Deinit once at
// the end.
type Unit interface {
	Init(env Environment, args []string) error
	Deinit() error
	ProcessEvent(ctx context.Context, evt *Event, out Output) error
}

// Producer is implemented by units that emit data.
type Producer interface {
	kdata.Producer
	// OutputDataSize estimates the output buffer needed for an event.
	OutputDataSize() SizeEstimate
}

// MultiProducer is implemented by producers whose OutputDataType returns
// kdata.MultipleOutputTypes.
type MultiProducer = kdata.MultiProducer

// Consumer is implemented by units that receive data from their sources.
type Consumer = kdata.Consumer

// SizeEstimate is the output buffer estimate of a producer:
// ConstBase + InputMultiplier * total input size.
type SizeEstimate struct {
	ConstBase       uint32
	InputMultiplier float64
}

// Size returns the estimated buffer size for the given total input size.
func (e SizeEstimate) Size(inputSize uint64) uint64 {
	size := float64(e.ConstBase) + e.InputMultiplier*float64(inputSize)
	if size <= 0 {
		return 0
	}
	if size >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Ceil(size))
}

// Kind is the capability variant of a unit.
type Kind int

const (
	KindSource Kind = iota
	KindProcessor
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindProcessor:
		return "processor"
	case KindSink:
		return "sink"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindOf classifies u by the capabilities it implements.
func KindOf(u Unit) (Kind, error) {
	_, produces := u.(Producer)
	_, consumes := u.(Consumer)
	switch {
	case produces && consumes:
		return KindProcessor, nil
	case produces:
		return KindSource, nil
	case consumes:
		return KindSink, nil
	default:
		return 0, fmt.Errorf("%w: unit %T neither produces nor consumes data", kstatus.ErrInvalidArgument, u)
	}
}

// Reconfigurer is implemented by units that reload their configuration when
// a ComponentConfiguration block reaches them.
type Reconfigurer interface {
	Reconfigure(entry, chainID string) error
}

// CalibrationReader is implemented by units that reload calibration values
// when an UpdateCalibration block reaches them. modules lists the detector
// modules to reload, empty means all of them.
type CalibrationReader interface {
	ReadCalibrationValues(modules []string) error
}

// RunNumberSetter is notified when a run starts.
type RunNumberSetter interface {
	SetRunNumber(run kdata.RunDescriptor)
}

// ControlBlockReceiver is implemented by units that want ProcessEvent to be
// called for events that carry only steering blocks.
type ControlBlockReceiver interface {
	ReceivesControlBlocks() bool
}
