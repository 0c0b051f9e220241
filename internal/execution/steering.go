package execution

import (
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kserde"
	"github.com/birdayz/kchain/kunit"
	"github.com/go-logr/logr"
)

// Router intercepts steering blocks before a unit sees an event. It keeps
// the run state of one task.
type Router struct {
	log     logr.Logger
	unit    kunit.Unit
	chainID string

	run      *kdata.RunDescriptor
	events   uint64
	warnings uint64
}

// NewRouter creates the router of a task running u.
func NewRouter(log logr.Logger, u kunit.Unit, chainID string) *Router {
	return &Router{log: log, unit: u, chainID: chainID}
}

// Decision is the outcome of routing one event.
type Decision struct {
	// Process reports whether the unit's ProcessEvent is called.
	Process bool
	// EventType is the marker specification, or kdata.EventTypeUnknown.
	EventType uint32
	// StartOfRun and EndOfRun report the run boundaries seen.
	StartOfRun bool
	EndOfRun   bool
	// Forward are the input blocks to publish verbatim in the task output.
	Forward []kdata.Block
	// Statistics and Table hold the merged entries of incoming aggregate
	// blocks.
	Statistics []ComponentStatistics
	Table      []TableEntry
}

// Route classifies the input blocks of an event, applies the run state
// transitions and unit hooks, and decides whether the unit processes it.
// data returns the payload of a block.
func (r *Router) Route(blocks []kdata.Block, data func(kdata.Block) []byte) Decision {
	d := Decision{EventType: kdata.EventTypeUnknown}

	hasData := false
	marker := -1
	for i, b := range blocks {
		switch b.DataType {
		case kdata.StartOfRun:
			d.StartOfRun = true
			d.Forward = append(d.Forward, b)
			r.startOfRun(data(b))
		case kdata.EndOfRun:
			d.EndOfRun = true
			d.Forward = append(d.Forward, b)
			r.endOfRun(data(b))
		case kdata.RunType, kdata.DDLList:
			d.Forward = append(d.Forward, b)
		case kdata.ComponentConfiguration:
			d.Forward = append(d.Forward, b)
			r.reconfigure(data(b))
		case kdata.UpdateCalibration:
			d.Forward = append(d.Forward, b)
			r.readCalibration(data(b))
		case kdata.EventTypeMarker:
			d.Forward = append(d.Forward, b)
			if marker < 0 {
				marker = i
				d.EventType = uint32(b.Specification)
			}
		case kdata.ComponentStatistics:
			entries, err := statisticsSerde.Deserializer(data(b))
			if err != nil {
				r.warn("dropping malformed statistics block", "error", err.Error())
				continue
			}
			d.Statistics = mergeStatistics(d.Statistics, entries)
		case kdata.ComponentTable:
			entries, err := tableSerde.Deserializer(data(b))
			if err != nil {
				r.warn("dropping malformed component table block", "error", err.Error())
				continue
			}
			d.Table = mergeTable(d.Table, entries)
		default:
			hasData = true
		}
	}

	optIn := false
	if rcv, ok := r.unit.(kunit.ControlBlockReceiver); ok {
		optIn = rcv.ReceivesControlBlocks()
	}
	d.Process = hasData || d.StartOfRun || d.EndOfRun || len(blocks) == 0 || optIn

	if marker >= 0 {
		switch d.EventType {
		case kdata.EventTypeConfiguration, kdata.EventTypeReadCalibration:
			d.Process = false
		}
		if len(blocks) == 1 && kdata.IsDataEvent(d.EventType) {
			d.Process = true
		}
		if kdata.IsDataEvent(d.EventType) {
			r.events++
		}
	}
	return d
}

func (r *Router) startOfRun(payload []byte) {
	run, err := kserde.RunDescriptor.Deserializer(payload)
	if err != nil {
		r.warn("ignoring malformed StartOfRun block", "error", err.Error())
		return
	}
	if r.run != nil {
		if r.run.RunNumber != run.RunNumber {
			r.warn("ignoring StartOfRun while another run is active",
				"activeRun", r.run.RunNumber, "run", run.RunNumber)
		}
		return
	}
	r.run = &run
	r.log.V(1).Info("Run started", "run", run.RunNumber, "runType", run.RunType)
	if setter, ok := r.unit.(kunit.RunNumberSetter); ok {
		setter.SetRunNumber(run)
	}
}

func (r *Router) endOfRun(payload []byte) {
	if r.run == nil {
		r.warn("ignoring EndOfRun without an active run")
		return
	}
	run, err := kserde.RunDescriptor.Deserializer(payload)
	if err != nil {
		r.warn("malformed EndOfRun block", "error", err.Error())
	} else if run.RunNumber != r.run.RunNumber {
		r.warn("EndOfRun does not match the active run",
			"activeRun", r.run.RunNumber, "run", run.RunNumber)
	}
	r.log.V(1).Info("Run ended", "run", r.run.RunNumber)
	r.run = nil
}

func (r *Router) reconfigure(payload []byte) {
	rc, ok := r.unit.(kunit.Reconfigurer)
	if !ok {
		return
	}
	entry, err := kserde.String.Deserializer(payload)
	if err != nil {
		r.warn("ignoring malformed ComponentConfiguration block", "error", err.Error())
		return
	}
	if err := rc.Reconfigure(entry, r.chainID); err != nil {
		r.log.Error(err, "Reconfiguration failed", "entry", entry)
	}
}

func (r *Router) readCalibration(payload []byte) {
	cr, ok := r.unit.(kunit.CalibrationReader)
	if !ok {
		return
	}
	modules, err := kserde.Fields.Deserializer(payload)
	if err != nil {
		r.warn("ignoring malformed UpdateCalibration block", "error", err.Error())
		return
	}
	if err := cr.ReadCalibrationValues(modules); err != nil {
		r.log.Error(err, "Reading calibration values failed", "modules", modules)
	}
}

func (r *Router) warn(msg string, keysAndValues ...interface{}) {
	r.warnings++
	r.log.Info(msg, append(keysAndValues, "warning", true)...)
}

// Run returns the active run descriptor.
func (r *Router) Run() (kdata.RunDescriptor, bool) {
	if r.run == nil {
		return kdata.RunDescriptor{}, false
	}
	return *r.run, true
}

// Events returns the number of data events seen.
func (r *Router) Events() uint64 {
	return r.events
}

// Warnings returns the number of protocol warnings recorded.
func (r *Router) Warnings() uint64 {
	return r.warnings
}

// Reset forgets the run state and counters.
func (r *Router) Reset() {
	r.run = nil
	r.events = 0
	r.warnings = 0
}
