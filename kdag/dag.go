package kdag

import (
	"golang.org/x/exp/slices"
)

// List is a validated, dependency ordered task list. It is the executable
// chain handed to the executor.
type List struct {
	tasks []*Task
}

// Tasks returns the tasks in execution order.
func (l *List) Tasks() []*Task {
	return slices.Clone(l.tasks)
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Names returns the task names in execution order.
func (l *List) Names() []string {
	names := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		names[i] = t.Name()
	}
	return names
}

// Index returns the position of t in the list, or -1.
func (l *List) Index(t *Task) int {
	return slices.Index(l.tasks, t)
}
