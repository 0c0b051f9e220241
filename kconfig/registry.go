package kconfig

import (
	"fmt"

	"github.com/birdayz/kchain/kstatus"
	"golang.org/x/exp/slices"
)

// Registry stores named configurations.
//
// IMPORTANT: Registry is NOT safe for concurrent use. It is populated during
// the configuration phase of a chain and only read afterwards.
type Registry struct {
	configs map[string]*Configuration
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]*Configuration),
	}
}

// Add registers cfg. Registering an identical definition twice is a no-op,
// a different definition under an existing name fails with
// kstatus.ErrAlreadyExists and leaves the first registration in place.
func (r *Registry) Add(cfg *Configuration) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", kstatus.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if existing, ok := r.configs[cfg.Name]; ok {
		if existing.Equal(cfg) {
			return nil
		}
		return fmt.Errorf("%w: configuration %q is already defined as %s",
			kstatus.ErrAlreadyExists, cfg.Name, existing)
	}
	r.configs[cfg.Name] = cfg
	r.order = append(r.order, cfg.Name)
	return nil
}

// MustAdd is like Add but panics on error.
func (r *Registry) MustAdd(cfg *Configuration) {
	if err := r.Add(cfg); err != nil {
		panic(err)
	}
}

// Find returns the configuration registered under name.
func (r *Registry) Find(name string) (*Configuration, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: configuration %q", kstatus.ErrNotFound, name)
	}
	return cfg, nil
}

// Remove unregisters cfg. Only the registered object itself is removed.
func (r *Registry) Remove(cfg *Configuration) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", kstatus.ErrInvalidArgument)
	}
	existing, ok := r.configs[cfg.Name]
	if !ok || existing != cfg {
		return fmt.Errorf("%w: configuration %q is not registered", kstatus.ErrNotFound, cfg.Name)
	}
	delete(r.configs, cfg.Name)
	if i := slices.Index(r.order, cfg.Name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

// Len returns the number of registered configurations.
func (r *Registry) Len() int {
	return len(r.configs)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	slices.Sort(names)
	return names
}

// Configurations returns all configurations in registration order.
func (r *Registry) Configurations() []*Configuration {
	out := make([]*Configuration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.configs[name])
	}
	return out
}

// Roots returns, in registration order, the configurations that are not a
// source of any other configuration.
func (r *Registry) Roots() []*Configuration {
	used := make(map[string]bool, len(r.configs))
	for _, cfg := range r.configs {
		for _, s := range cfg.Sources {
			used[s] = true
		}
	}
	var roots []*Configuration
	for _, name := range r.order {
		if !used[name] {
			roots = append(roots, r.configs[name])
		}
	}
	return roots
}

// Clear removes all configurations.
func (r *Registry) Clear() {
	r.configs = make(map[string]*Configuration)
	r.order = nil
}
