package kdag

import (
	"fmt"

	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/kstatus"
	"golang.org/x/exp/slices"
)

// Builder turns configurations into an ordered task list in which every
// task comes after all tasks it consumes from.
//
// IMPORTANT: Builder is NOT safe for concurrent use. It is used during the
// configuration phase of a chain only.
type Builder struct {
	registry *kconfig.Registry

	tasks  []*Task
	byName map[string]*Task

	// Tasks created but not yet inserted, keyed by name.
	pending map[string]*Task
	// Tasks inserted by the running BuildTaskList call.
	journal []*Task
}

// NewBuilder creates a builder reading configurations from registry.
func NewBuilder(registry *kconfig.Registry) *Builder {
	return &Builder{
		registry: registry,
		byName:   make(map[string]*Task),
		pending:  make(map[string]*Task),
	}
}

// BuildTaskList builds the tasks for the configuration name and everything
// it transitively consumes from. Tasks that already exist are reused. On
// failure every task added by this call is removed again, tasks built by
// earlier calls stay.
func (b *Builder) BuildTaskList(name string) error {
	b.journal = b.journal[:0]
	err := b.build(name)
	if err != nil {
		b.rollback()
	}
	b.journal = b.journal[:0]
	for k := range b.pending {
		delete(b.pending, k)
	}
	return err
}

func (b *Builder) build(name string) error {
	cfg, findErr := b.registry.Find(name)

	if existing, ok := b.byName[name]; ok {
		if findErr == nil && existing.config == cfg {
			return nil
		}
		return fmt.Errorf("%w: task %q was built from a different configuration", kstatus.ErrConfigurationMismatch, name)
	}
	if _, ok := b.pending[name]; ok {
		return nil
	}
	if findErr != nil {
		return findErr
	}

	if err := b.SourcesResolved(cfg); err != nil {
		return err
	}
	if err := b.FollowDependency(name); err != nil {
		return err
	}

	t := NewTask(cfg)
	b.pending[name] = t
	for _, src := range cfg.Sources {
		if _, ok := b.byName[src]; ok {
			continue
		}
		if err := b.build(src); err != nil {
			delete(b.pending, name)
			return fmt.Errorf("configuration %q: %w", name, err)
		}
	}
	delete(b.pending, name)

	if err := b.InsertTask(t); err != nil {
		return err
	}
	b.journal = append(b.journal, t)
	return nil
}

// rollback removes the tasks recorded in the journal and unlinks them from
// the tasks that stay.
func (b *Builder) rollback() {
	for _, t := range b.journal {
		for _, d := range t.dependencies {
			d.targets = removeTask(d.targets, t)
		}
		b.tasks = removeTask(b.tasks, t)
		delete(b.byName, t.Name())
	}
}

// InsertTask inserts t into the ordered list right after the last task it
// consumes from, or at the front if it consumes from none of them. Edges to
// the tasks it consumes from are linked on success.
func (b *Builder) InsertTask(t *Task) error {
	if _, exists := b.byName[t.Name()]; exists {
		return fmt.Errorf("%w: task %q", kstatus.ErrAlreadyExists, t.Name())
	}

	t.resetResolution()
	insertAt := 0
	var deps []*Task
	for i, cur := range b.tasks {
		if cur.DependsOn(t) {
			t.resetResolution()
			return fmt.Errorf("%w: %s consumes from %s which is being inserted downstream of it",
				kstatus.ErrCircularDependency, cur.Name(), t.Name())
		}
		if direct, _ := t.CheckDependencies(cur); direct {
			insertAt = i + 1
			deps = append(deps, cur)
		}
	}
	if n := t.UnresolvedSources(); n > 0 {
		missing := slices.Clone(t.unresolved)
		t.resetResolution()
		return fmt.Errorf("%w: task %q has %d sources not in the task list: %v",
			kstatus.ErrUnresolvedSources, t.Name(), n, missing)
	}

	for _, d := range deps {
		d.targets = append(d.targets, t)
		t.dependencies = append(t.dependencies, d)
	}
	b.tasks = slices.Insert(b.tasks, insertAt, t)
	b.byName[t.Name()] = t
	return nil
}

// Tasks returns the ordered task list.
func (b *Builder) Tasks() []*Task {
	return slices.Clone(b.tasks)
}

// FindTask returns the task built for name.
func (b *Builder) FindTask(name string) (*Task, error) {
	t, ok := b.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: task %q", kstatus.ErrNotFound, name)
	}
	return t, nil
}

// Len returns the number of tasks in the list.
func (b *Builder) Len() int {
	return len(b.tasks)
}

// Clear drops every task.
func (b *Builder) Clear() {
	b.tasks = nil
	b.byName = make(map[string]*Task)
	b.pending = make(map[string]*Task)
	b.journal = nil
}

// Build validates the current task list and returns an immutable snapshot.
func (b *Builder) Build() (*List, error) {
	list := &List{tasks: slices.Clone(b.tasks)}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *List {
	list, err := b.Build()
	if err != nil {
		panic(err)
	}
	return list
}
