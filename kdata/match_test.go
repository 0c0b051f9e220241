package kdata

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

type testProducer struct {
	out   DataType
	multi []DataType
}

func (p *testProducer) OutputDataType() DataType { return p.out }

type testMultiProducer struct {
	testProducer
}

func (p *testMultiProducer) OutputDataTypes() []DataType { return p.multi }

type testConsumer struct {
	in []DataType
}

func (c *testConsumer) InputDataTypes() []DataType { return c.in }

func TestFindMatchingTypes(t *testing.T) {
	clusters := MustDataType("CLUSTERS", "TPC")
	tracks := MustDataType("TRACKS", "TPC")
	digits := MustDataType("DIGITS", "ITS")

	t.Run("exact match among several inputs", func(t *testing.T) {
		p := &testProducer{out: clusters}
		c := &testConsumer{in: []DataType{digits, clusters, tracks}}
		assert.Equal(t, []DataType{clusters}, FindMatchingTypes(p, c))
	})

	t.Run("private wildcard passes regardless of consumer", func(t *testing.T) {
		p := &testProducer{out: AllDataTypes}
		c := &testConsumer{in: []DataType{digits}}
		assert.Equal(t, []DataType{AllDataTypes}, FindMatchingTypes(p, c))

		c = &testConsumer{}
		assert.Equal(t, []DataType{AllDataTypes}, FindMatchingTypes(p, c))
	})

	t.Run("no partial wildcard matching", func(t *testing.T) {
		p := &testProducer{out: clusters}
		c := &testConsumer{in: []DataType{{ID: AnyID, Origin: clusters.Origin}}}
		assert.Equal(t, 0, len(FindMatchingTypes(p, c)))
	})

	t.Run("multiple output types keep producer order", func(t *testing.T) {
		p := &testMultiProducer{testProducer{out: MultipleOutputTypes, multi: []DataType{tracks, digits, clusters}}}
		c := &testConsumer{in: []DataType{clusters, tracks}}
		assert.Equal(t, []DataType{tracks, clusters}, FindMatchingTypes(p, c))
	})

	t.Run("multiple output types without list", func(t *testing.T) {
		p := &testProducer{out: MultipleOutputTypes}
		c := &testConsumer{in: []DataType{clusters}}
		assert.Equal(t, 0, len(FindMatchingTypes(p, c)))
	})
}

func TestMatches(t *testing.T) {
	clusters := MustDataType("CLUSTERS", "TPC")

	assert.True(t, clusters.Matches(clusters))
	assert.True(t, clusters.Matches(Any))
	assert.True(t, clusters.Matches(AllDataTypes))
	assert.True(t, clusters.Matches(DataType{ID: AnyID, Origin: clusters.Origin}))
	assert.True(t, clusters.Matches(DataType{ID: clusters.ID, Origin: AnyOrigin}))
	assert.False(t, clusters.Matches(MustDataType("CLUSTERS", "ITS")))
	assert.False(t, clusters.Matches(DataType{ID: AnyID, Origin: MustDataType("X", "ITS").Origin}))
	assert.True(t, clusters.MatchesAny([]DataType{MustDataType("TRACKS", "TPC"), clusters}))
	assert.False(t, clusters.MatchesAny(nil))
}

func TestDataTypeString(t *testing.T) {
	dt := MustDataType("RAW", "TPC")
	assert.Equal(t, "RAW:TPC", dt.String())

	parsed, err := ParseDataType("RAW:TPC")
	assert.NoError(t, err)
	assert.Equal(t, dt, parsed)

	_, err = ParseDataType("RAW")
	assert.Error(t, err)

	_, err = NewDataType("WAYTOOLONGID", "TPC")
	assert.Error(t, err)
}

func TestWildcardsAndControlTypes(t *testing.T) {
	assert.True(t, Any.IsWildcard())
	assert.True(t, AllDataTypes.IsWildcard())
	assert.True(t, MultipleOutputTypes.IsWildcard())
	assert.False(t, MustDataType("RAW", "TPC").IsWildcard())

	for _, c := range ControlTypes() {
		assert.True(t, c.IsControl())
		assert.False(t, c.IsWildcard())
	}
	assert.False(t, MustDataType("RAW", "TPC").IsControl())
}

func TestBlockDescriptorValidate(t *testing.T) {
	raw := MustDataType("RAW", "TPC")

	assert.NoError(t, BlockDescriptor{Offset: 0, Size: 10, DataType: raw}.Validate(10))
	assert.Error(t, BlockDescriptor{Offset: 4, Size: 10, DataType: raw}.Validate(10))
	assert.Error(t, BlockDescriptor{Size: 1, DataType: Any}.Validate(10))

	blocks := []Block{{BlockDescriptor: BlockDescriptor{Size: 3}}, {BlockDescriptor: BlockDescriptor{Size: 4}}}
	assert.Equal(t, uint64(7), TotalSize(blocks))
}

func TestIsDataEvent(t *testing.T) {
	assert.True(t, IsDataEvent(EventTypeData))
	assert.True(t, IsDataEvent(EventTypeDataReplay))
	assert.True(t, IsDataEvent(EventTypeCalibration))
	assert.False(t, IsDataEvent(EventTypeConfiguration))
	assert.False(t, IsDataEvent(EventTypeStartOfRun))
	assert.Equal(t, "ReadCalibration", EventTypeName(EventTypeReadCalibration))
}

func TestList(t *testing.T) {
	var l List
	assert.NoError(t, l.Set("CLUSTERS:TPC, RAW:*"))
	assert.Equal(t, List{MustDataType("CLUSTERS", "TPC"), {ID: ID{'R', 'A', 'W', ' ', ' ', ' ', ' ', ' '}, Origin: AnyOrigin}}, l)
	assert.Equal(t, "CLUSTERS:TPC,RAW:****", l.String())

	assert.Error(t, l.Set("CLUSTERS"))
}
