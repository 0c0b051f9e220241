package kconfig

import (
	"fmt"
	"strings"

	"github.com/birdayz/kchain/kstatus"
	"golang.org/x/exp/slices"
)

// Configuration is the declarative description of one node of a chain: the
// kind of unit to spawn, its argument string and the names of its upstream
// sources.
type Configuration struct {
	Name      string
	Kind      string
	Arguments string
	Sources   []string
}

// New creates a configuration. Duplicate source names are dropped, keeping
// the first occurrence.
func New(name, kind string, sources []string, arguments string) (*Configuration, error) {
	c := &Configuration{
		Name:      name,
		Kind:      kind,
		Arguments: arguments,
	}
	for _, s := range sources {
		if !slices.Contains(c.Sources, s) {
			c.Sources = append(c.Sources, s)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(name, kind string, sources []string, arguments string) *Configuration {
	c, err := New(name, kind, sources, arguments)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the name, kind and sources of the configuration.
func (c *Configuration) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if c.Kind == "" {
		return fmt.Errorf("%w: configuration %q has no component kind", kstatus.ErrInvalidArgument, c.Name)
	}
	for _, s := range c.Sources {
		if err := validateName(s); err != nil {
			return fmt.Errorf("configuration %q: source: %w", c.Name, err)
		}
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: configuration name cannot be empty", kstatus.ErrInvalidArgument)
	}
	if strings.ContainsAny(name, " \t\n\r{};") {
		return fmt.Errorf("%w: configuration name %q contains reserved characters", kstatus.ErrInvalidArgument, name)
	}
	return nil
}

// Equal reports whether both configurations carry the same definition.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.Name == other.Name &&
		c.Kind == other.Kind &&
		c.Arguments == other.Arguments &&
		slices.Equal(c.Sources, other.Sources)
}

// HasSource reports whether name is a direct source of the configuration.
func (c *Configuration) HasSource(name string) bool {
	return slices.Contains(c.Sources, name)
}

// ArgumentList splits the argument string at blanks. Double quotes group
// blanks into one argument and are removed.
func (c *Configuration) ArgumentList() []string {
	return SplitArguments(c.Arguments)
}

// SplitArguments splits s like ArgumentList.
func SplitArguments(s string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			if pending {
				args = append(args, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if pending {
		args = append(args, current.String())
	}
	return args
}

func (c *Configuration) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s {%s}", c.Name, c.Kind)
	if len(c.Sources) > 0 {
		fmt.Fprintf(&b, " -> %s", strings.Join(c.Sources, " "))
	}
	if c.Arguments != "" {
		fmt.Fprintf(&b, " ; arguments=%q", c.Arguments)
	}
	return b.String()
}
