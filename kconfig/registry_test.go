package kconfig

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kstatus"
)

func TestRegistryAdd(t *testing.T) {
	t.Run("identical definition twice is a no-op", func(t *testing.T) {
		r := NewRegistry()
		assert.NoError(t, r.Add(MustNew("A", "Generator", nil, "-size=8")))
		assert.NoError(t, r.Add(MustNew("A", "Generator", nil, "-size=8")))
		assert.Equal(t, 1, r.Len())
	})

	t.Run("different definition keeps the first", func(t *testing.T) {
		r := NewRegistry()
		first := MustNew("A", "Generator", nil, "-size=8")
		assert.NoError(t, r.Add(first))

		err := r.Add(MustNew("A", "Generator", nil, "-size=16"))
		assert.True(t, errors.Is(err, kstatus.ErrAlreadyExists))
		assert.Equal(t, kstatus.CodeExists, kstatus.Code(err))

		got, err := r.Find("A")
		assert.NoError(t, err)
		assert.True(t, got == first)
	})

	t.Run("nil configuration", func(t *testing.T) {
		r := NewRegistry()
		err := r.Add(nil)
		assert.True(t, errors.Is(err, kstatus.ErrInvalidArgument))
	})
}

func TestRegistryFindRemove(t *testing.T) {
	r := NewRegistry()
	a := MustNew("A", "Generator", nil, "")
	r.MustAdd(a)

	_, err := r.Find("missing")
	assert.True(t, errors.Is(err, kstatus.ErrNotFound))

	// A different object with the same definition is not the registered one.
	err = r.Remove(MustNew("A", "Generator", nil, ""))
	assert.True(t, errors.Is(err, kstatus.ErrNotFound))

	assert.NoError(t, r.Remove(a))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, []*Configuration{}, r.Configurations())
}

func TestRegistryRoots(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(MustNew("A", "Generator", nil, ""))
	r.MustAdd(MustNew("B", "Relay", []string{"A"}, ""))
	r.MustAdd(MustNew("C", "Counter", []string{"B"}, ""))
	r.MustAdd(MustNew("D", "Counter", []string{"A"}, ""))

	var names []string
	for _, cfg := range r.Roots() {
		names = append(names, cfg.Name)
	}
	assert.Equal(t, []string{"C", "D"}, names)
	assert.Equal(t, []string{"A", "B", "C", "D"}, r.Names())

	r.Clear()
	assert.Equal(t, 0, r.Len())
}
