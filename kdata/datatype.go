package kdata

import (
	"fmt"
	"strings"

	"github.com/birdayz/kchain/kstatus"
)

// ID is the 8 byte data type identifier.
type ID [8]byte

// Origin is the 4 byte data origin.
type Origin [4]byte

// Reserved identifiers and origins.
var (
	AnyID                 = ID{'*', '*', '*', '*', '*', '*', '*', '*'}
	VoidID                = ID{}
	MultipleOutputTypesID = ID{'M', 'U', 'L', 'T', 'I', 'P', 'L', 'E'}

	AnyOrigin     = Origin{'*', '*', '*', '*'}
	VoidOrigin    = Origin{}
	OriginPrivate = Origin{'P', 'R', 'I', 'V'}
)

// DataType classifies a data block by identifier and origin.
type DataType struct {
	ID     ID
	Origin Origin
}

// Reserved data types.
var (
	// Any matches every identifier from every origin.
	Any = DataType{ID: AnyID, Origin: AnyOrigin}
	// Void is the unset data type.
	Void = DataType{ID: VoidID, Origin: VoidOrigin}
	// AllDataTypes is the private-origin wildcard. It is the pass-through
	// channel: a producer declaring it matches every consumer.
	AllDataTypes = DataType{ID: AnyID, Origin: OriginPrivate}
	// MultipleOutputTypes is returned by producers that publish their
	// output types through MultiProducer.OutputDataTypes.
	MultipleOutputTypes = DataType{ID: MultipleOutputTypesID, Origin: OriginPrivate}
)

// NewDataType builds a DataType from string identifiers. id is padded with
// blanks to 8 bytes and origin to 4 bytes. Longer strings are rejected.
func NewDataType(id, origin string) (DataType, error) {
	var dt DataType
	if len(id) > len(dt.ID) {
		return dt, fmt.Errorf("%w: data type id %q longer than %d bytes", kstatus.ErrInvalidArgument, id, len(dt.ID))
	}
	if len(origin) > len(dt.Origin) {
		return dt, fmt.Errorf("%w: data origin %q longer than %d bytes", kstatus.ErrInvalidArgument, origin, len(dt.Origin))
	}
	copy(dt.ID[:], padRight(id, len(dt.ID)))
	copy(dt.Origin[:], padRight(origin, len(dt.Origin)))
	return dt, nil
}

// MustDataType is like NewDataType but panics on error.
func MustDataType(id, origin string) DataType {
	dt, err := NewDataType(id, origin)
	if err != nil {
		panic(err)
	}
	return dt
}

// ParseDataType parses the "ID:ORIGIN" notation produced by String. A field
// given as a single "*" is the wildcard of that field.
func ParseDataType(s string) (DataType, error) {
	id, origin, ok := strings.Cut(s, ":")
	if !ok {
		return DataType{}, fmt.Errorf("%w: data type %q is not of the form ID:ORIGIN", kstatus.ErrInvalidArgument, s)
	}
	if id == "*" {
		id = string(AnyID[:])
	}
	if origin == "*" {
		origin = string(AnyOrigin[:])
	}
	return NewDataType(id, origin)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// String renders the data type as "ID:ORIGIN" with trailing blanks and
// zero bytes trimmed.
func (dt DataType) String() string {
	return trim(dt.ID[:]) + ":" + trim(dt.Origin[:])
}

func trim(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

// IsWildcard reports whether any field of the data type is a wildcard.
// Wildcards may only appear in matcher input.
func (dt DataType) IsWildcard() bool {
	return dt.ID == AnyID || dt.Origin == AnyOrigin || dt == MultipleOutputTypes
}

// Matches reports whether the concrete data type dt is selected by pattern.
// AllDataTypes and Any select everything, an AnyID or AnyOrigin field selects
// every value of that field.
func (dt DataType) Matches(pattern DataType) bool {
	if pattern == AllDataTypes || pattern == Any {
		return true
	}
	if pattern.ID != AnyID && pattern.ID != dt.ID {
		return false
	}
	if pattern.Origin != AnyOrigin && pattern.Origin != dt.Origin {
		return false
	}
	return true
}

// MatchesAny reports whether dt is selected by at least one pattern.
func (dt DataType) MatchesAny(patterns []DataType) bool {
	for _, p := range patterns {
		if dt.Matches(p) {
			return true
		}
	}
	return false
}

// Specification is an opaque, origin defined qualifier distinguishing
// otherwise same-typed blocks.
type Specification uint32

// VoidSpecification marks an unspecified block.
const VoidSpecification Specification = 0xFFFFFFFF
