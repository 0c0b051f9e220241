package kunit

import (
	"fmt"
	"sync"

	"github.com/birdayz/kchain/kstatus"
	"golang.org/x/exp/slices"
)

// Factory creates a fresh unit instance.
type Factory func() Unit

// Library registers the units it provides. Libraries are compiled in and
// selected by name at host initialisation.
type Library func(r *Registry) error

type factoryEntry struct {
	factory     Factory
	description string
}

// Registry maps component kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]factoryEntry
}

// NewRegistry creates an empty unit registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]factoryEntry),
	}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind string, factory Factory, description string) error {
	if kind == "" {
		return fmt.Errorf("%w: component kind cannot be empty", kstatus.ErrInvalidArgument)
	}
	if factory == nil {
		return fmt.Errorf("%w: component %q has no factory", kstatus.ErrInvalidArgument, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: component %q", kstatus.ErrAlreadyExists, kind)
	}
	r.factories[kind] = factoryEntry{factory: factory, description: description}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind string, factory Factory, description string) {
	if err := r.Register(kind, factory, description); err != nil {
		panic(err)
	}
}

// Load runs the given libraries against the registry.
func (r *Registry) Load(libs ...Library) error {
	for _, lib := range libs {
		if err := lib(r); err != nil {
			return err
		}
	}
	return nil
}

// Spawn creates a new unit of the given kind and checks its capabilities.
func (r *Registry) Spawn(kind string) (Unit, error) {
	r.mu.RLock()
	entry, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: component %q is not registered", kstatus.ErrNotFound, kind)
	}

	u := entry.factory()
	if u == nil {
		return nil, fmt.Errorf("%w: factory of component %q returned nil", kstatus.ErrInvalidArgument, kind)
	}
	if _, err := KindOf(u); err != nil {
		return nil, fmt.Errorf("component %q: %w", kind, err)
	}
	return u, nil
}

// Kinds returns the registered component kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Description returns the description registered with kind.
func (r *Registry) Description(kind string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[kind].description
}
