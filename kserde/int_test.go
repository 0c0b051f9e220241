package kserde

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kstatus"
)

func TestUint32(t *testing.T) {
	buf, err := Uint32.Serializer(0x01020304)
	assert.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1}, buf)

	v, err := Uint32.Deserializer(buf)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)

	_, err = Uint32.Deserializer(buf[:3])
	assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
}

func TestJSON(t *testing.T) {
	type entry struct {
		Task   string `json:"task"`
		Events uint64 `json:"events"`
	}
	serde := JSON[[]entry]()

	buf, err := serde.Serializer([]entry{{Task: "A", Events: 3}})
	assert.NoError(t, err)
	assert.Equal(t, `[{"task":"A","events":3}]`, string(buf))

	decoded, err := serde.Deserializer(buf)
	assert.NoError(t, err)
	assert.Equal(t, []entry{{Task: "A", Events: 3}}, decoded)

	_, err = serde.Deserializer([]byte("{"))
	assert.Error(t, err)
}
