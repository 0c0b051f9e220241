package kdata

// Control block data types. All steering blocks carry the private origin.
var (
	StartOfRun             = DataType{ID: ID{'S', 'T', 'A', 'R', 'T', 'O', 'F', 'R'}, Origin: OriginPrivate}
	EndOfRun               = DataType{ID: ID{'E', 'N', 'D', 'O', 'F', 'R', 'U', 'N'}, Origin: OriginPrivate}
	RunType                = DataType{ID: ID{'R', 'U', 'N', 'T', 'Y', 'P', 'E', ' '}, Origin: OriginPrivate}
	DDLList                = DataType{ID: ID{'D', 'D', 'L', 'L', 'I', 'S', 'T', ' '}, Origin: OriginPrivate}
	ComponentConfiguration = DataType{ID: ID{'C', 'O', 'M', 'P', 'C', 'O', 'N', 'F'}, Origin: OriginPrivate}
	UpdateCalibration      = DataType{ID: ID{'U', 'P', 'D', 'T', 'C', 'A', 'L', 'I'}, Origin: OriginPrivate}
	EventTypeMarker        = DataType{ID: ID{'E', 'V', 'E', 'N', 'T', 'T', 'Y', 'P'}, Origin: OriginPrivate}
	ComponentStatistics    = DataType{ID: ID{'C', 'O', 'M', 'P', 'S', 'T', 'A', 'T'}, Origin: OriginPrivate}
	ComponentTable         = DataType{ID: ID{'C', 'O', 'M', 'P', 'T', 'A', 'B', 'L'}, Origin: OriginPrivate}
)

var controlTypes = []DataType{
	StartOfRun,
	EndOfRun,
	RunType,
	DDLList,
	ComponentConfiguration,
	UpdateCalibration,
	EventTypeMarker,
	ComponentStatistics,
	ComponentTable,
}

// ControlTypes returns the reserved steering data types.
func ControlTypes() []DataType {
	out := make([]DataType, len(controlTypes))
	copy(out, controlTypes)
	return out
}

// IsControl reports whether dt is one of the reserved steering types.
func (dt DataType) IsControl() bool {
	for _, c := range controlTypes {
		if dt == c {
			return true
		}
	}
	return false
}

// Event types carried as the specification of an EventTypeMarker block.
const (
	EventTypeStartOfRun      uint32 = 0x1
	EventTypeData            uint32 = 0x2
	EventTypeEndOfRun        uint32 = 0x4
	EventTypeCorrupt         uint32 = 0x8
	EventTypeCalibration     uint32 = 0x10
	EventTypeDataReplay      uint32 = 0x20
	EventTypeConfiguration   uint32 = 0x40
	EventTypeReadCalibration uint32 = 0x80
	EventTypeTick            uint32 = 0x100
	EventTypeUnknown         uint32 = 0xFFFFFFFF
)

// IsDataEvent reports whether the event type counts as a physics data
// event.
func IsDataEvent(eventType uint32) bool {
	switch eventType {
	case EventTypeData, EventTypeDataReplay, EventTypeCalibration:
		return true
	}
	return false
}

// EventTypeName returns a human readable name for an event type.
func EventTypeName(eventType uint32) string {
	switch eventType {
	case EventTypeStartOfRun:
		return "StartOfRun"
	case EventTypeData:
		return "Data"
	case EventTypeEndOfRun:
		return "EndOfRun"
	case EventTypeCorrupt:
		return "Corrupt"
	case EventTypeCalibration:
		return "Calibration"
	case EventTypeDataReplay:
		return "DataReplay"
	case EventTypeConfiguration:
		return "Configuration"
	case EventTypeReadCalibration:
		return "ReadCalibration"
	case EventTypeTick:
		return "Tick"
	default:
		return "Unknown"
	}
}

// RunDescriptor identifies the current run.
type RunDescriptor struct {
	RunNumber uint32
	RunType   uint32
}
