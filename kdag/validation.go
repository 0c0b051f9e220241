package kdag

import (
	"fmt"
	"strings"

	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/kstatus"
)

// MaxDepth limits the length of a source chain.
const MaxDepth = 1000

// SourcesResolved checks that every source of cfg is a registered
// configuration.
func (b *Builder) SourcesResolved(cfg *kconfig.Configuration) error {
	var missing []string
	for _, src := range cfg.Sources {
		if _, err := b.registry.Find(src); err != nil {
			missing = append(missing, src)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: configuration %q: unknown sources %s",
			kstatus.ErrUnresolvedSources, cfg.Name, strings.Join(missing, ", "))
	}
	return nil
}

// FollowDependency walks the source chains starting at name and fails with
// kstatus.ErrCircularDependency if any of them leads back to name. Sources
// that are not registered end a chain.
func (b *Builder) FollowDependency(name string) error {
	visited := make(map[string]bool)

	var follow func(current string, path []string) error
	follow = func(current string, path []string) error {
		if len(path) > MaxDepth {
			return fmt.Errorf("%w: source chain of %q deeper than %d", kstatus.ErrInvalidArgument, name, MaxDepth)
		}
		cfg, err := b.registry.Find(current)
		if err != nil {
			return nil
		}
		path = append(path, current)
		for _, src := range cfg.Sources {
			if src == name {
				return fmt.Errorf("%w: %s -> %s", kstatus.ErrCircularDependency, strings.Join(path, " -> "), src)
			}
			if visited[src] {
				continue
			}
			visited[src] = true
			if err := follow(src, path); err != nil {
				return err
			}
		}
		return nil
	}

	return follow(name, nil)
}

// Validate checks that the list is in dependency order, that names are
// unique and that edges are linked in both directions.
func (l *List) Validate() error {
	index := make(map[*Task]int, len(l.tasks))
	for i, t := range l.tasks {
		if _, dup := index[t]; dup {
			return fmt.Errorf("%w: task %q listed twice", kstatus.ErrAlreadyExists, t.Name())
		}
		index[t] = i
	}
	names := make(map[string]bool, len(l.tasks))
	for i, t := range l.tasks {
		if names[t.Name()] {
			return fmt.Errorf("%w: task name %q listed twice", kstatus.ErrAlreadyExists, t.Name())
		}
		names[t.Name()] = true

		for _, d := range t.dependencies {
			j, ok := index[d]
			if !ok {
				return fmt.Errorf("%w: task %q consumes from %q which is not in the list",
					kstatus.ErrUnresolvedSources, t.Name(), d.Name())
			}
			if j >= i {
				return fmt.Errorf("%w: task %q is listed before its source %q",
					kstatus.ErrCircularDependency, t.Name(), d.Name())
			}
			if !containsTask(d.targets, t) {
				return fmt.Errorf("%w: edge %s -> %s is not linked in both directions",
					kstatus.ErrInvalidArgument, d.Name(), t.Name())
			}
		}
	}
	return nil
}

func containsTask(list []*Task, t *Task) bool {
	for _, c := range list {
		if c == t {
			return true
		}
	}
	return false
}
