package kconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/birdayz/kchain/kstatus"
	"gopkg.in/yaml.v3"
)

// File is the content of a chain file.
type File struct {
	// Libraries names the compiled-in unit libraries to load.
	Libraries []string `yaml:"libraries"`
	// Roots are the configurations to build task lists for. Empty means
	// every configuration that is not a source of another one.
	Roots []string `yaml:"roots"`
	// Run is the run descriptor announced in the start-of-run event.
	Run RunSpec `yaml:"run"`
	// Events is the number of data events to process.
	Events int `yaml:"events"`
	// MaxBufferSize limits a single task output buffer, in bytes.
	MaxBufferSize uint32 `yaml:"maxBufferSize"`

	Configurations []Entry `yaml:"configurations"`
	// Chain holds configurations in the line based description format.
	Chain string `yaml:"chain"`
}

// RunSpec mirrors kdata.RunDescriptor in chain files.
type RunSpec struct {
	Number uint32 `yaml:"number"`
	Type   uint32 `yaml:"type"`
}

// Entry is one configuration in a chain file.
type Entry struct {
	Name      string   `yaml:"name"`
	Component string   `yaml:"component"`
	Sources   []string `yaml:"sources"`
	Arguments string   `yaml:"arguments"`
}

// DecodeYAML reads a chain file.
func DecodeYAML(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: decode chain file: %v", kstatus.ErrInvalidArgument, err)
	}
	return &f, nil
}

// LoadFile reads a chain file. Files ending in .yaml or .yml are decoded as
// YAML, everything else is read as a line based description.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(data))
	default:
		return &File{Chain: string(data)}, nil
	}
}

// ConfigurationList returns the entries of the file followed by the parsed
// chain description.
func (f *File) ConfigurationList() ([]*Configuration, error) {
	configs := make([]*Configuration, 0, len(f.Configurations))
	for i, e := range f.Configurations {
		cfg, err := New(e.Name, e.Component, e.Sources, e.Arguments)
		if err != nil {
			return nil, fmt.Errorf("configuration #%d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	if strings.TrimSpace(f.Chain) != "" {
		parsed, err := Parse(strings.NewReader(f.Chain))
		if err != nil {
			return nil, err
		}
		configs = append(configs, parsed...)
	}
	return configs, nil
}

// Register adds every configuration of the file to reg.
func (f *File) Register(reg *Registry) error {
	configs, err := f.ConfigurationList()
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		if err := reg.Add(cfg); err != nil {
			return fmt.Errorf("add configuration %q: %w", cfg.Name, err)
		}
	}
	return nil
}
