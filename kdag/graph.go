package kdag

import (
	"github.com/birdayz/kchain/kconfig"
	"golang.org/x/exp/slices"
)

// Task is the graph-linked node built from one configuration. Its identity
// is the configuration name.
type Task struct {
	config *kconfig.Configuration

	// Incoming edges, in insertion order.
	dependencies []*Task
	// Outgoing edges, in insertion order.
	targets []*Task

	// Sources not yet matched while the task is being inserted.
	unresolved []string
}

// NewTask creates an unlinked task for cfg.
func NewTask(cfg *kconfig.Configuration) *Task {
	return &Task{
		config:     cfg,
		unresolved: slices.Clone(cfg.Sources),
	}
}

// Name returns the configuration name of the task.
func (t *Task) Name() string {
	return t.config.Name
}

// Configuration returns the configuration the task was built from.
func (t *Task) Configuration() *kconfig.Configuration {
	return t.config
}

// Dependencies returns the tasks this task consumes from.
func (t *Task) Dependencies() []*Task {
	return slices.Clone(t.dependencies)
}

// Targets returns the tasks consuming from this task.
func (t *Task) Targets() []*Task {
	return slices.Clone(t.targets)
}

// DependsOn reports whether t consumes from other, directly or through
// linked dependencies.
func (t *Task) DependsOn(other *Task) bool {
	if t.config.HasSource(other.Name()) {
		return true
	}
	for _, d := range t.dependencies {
		if d == other || d.DependsOn(other) {
			return true
		}
	}
	return false
}

// CheckDependencies matches cur against the unresolved sources of t. It
// reports whether t directly depends on cur and how many sources remain
// unresolved afterwards.
func (t *Task) CheckDependencies(cur *Task) (bool, int) {
	i := slices.Index(t.unresolved, cur.Name())
	if i < 0 {
		return false, len(t.unresolved)
	}
	t.unresolved = slices.Delete(t.unresolved, i, i+1)
	return true, len(t.unresolved)
}

// UnresolvedSources returns the number of sources not matched during
// insertion.
func (t *Task) UnresolvedSources() int {
	return len(t.unresolved)
}

func (t *Task) resetResolution() {
	t.unresolved = slices.Clone(t.config.Sources)
}

func (t *Task) String() string {
	return t.config.Name
}

func removeTask(list []*Task, t *Task) []*Task {
	if i := slices.Index(list, t); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
