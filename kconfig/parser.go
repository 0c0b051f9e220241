package kconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/birdayz/kchain/kstatus"
)

const argumentsKey = "arguments="

// Parse reads configuration descriptions, one per line:
//
//	name {Kind} -> source1 source2 ; arguments="..."
//
// Sources and arguments are optional. Blank lines and lines starting with
// '#' are ignored.
func Parse(r io.Reader) ([]*Configuration, error) {
	var configs []*Configuration

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cfg, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		configs = append(configs, cfg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read configuration description: %w", err)
	}
	return configs, nil
}

// ParseLine parses a single configuration description.
func ParseLine(line string) (*Configuration, error) {
	head, tail, hasArgs := strings.Cut(line, ";")

	open := strings.IndexByte(head, '{')
	end := strings.IndexByte(head, '}')
	if open < 0 || end < open {
		return nil, fmt.Errorf("%w: %q: expected 'name {Kind}'", kstatus.ErrInvalidArgument, line)
	}
	name := strings.TrimSpace(head[:open])
	kind := strings.TrimSpace(head[open+1 : end])

	var sources []string
	rest := strings.TrimSpace(head[end+1:])
	if rest != "" {
		if !strings.HasPrefix(rest, "->") {
			return nil, fmt.Errorf("%w: configuration %q: expected '->' before sources, got %q",
				kstatus.ErrInvalidArgument, name, rest)
		}
		sources = strings.Fields(rest[2:])
	}

	var arguments string
	if hasArgs {
		tail = strings.TrimSpace(tail)
		if !strings.HasPrefix(tail, argumentsKey) {
			return nil, fmt.Errorf("%w: configuration %q: expected %q after ';', got %q",
				kstatus.ErrInvalidArgument, name, argumentsKey, tail)
		}
		value := strings.TrimSpace(tail[len(argumentsKey):])
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil, fmt.Errorf("%w: configuration %q: arguments %s: %v",
					kstatus.ErrInvalidArgument, name, value, err)
			}
			value = unquoted
		}
		arguments = value
	}

	cfg, err := New(name, kind, sources, arguments)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", name, err)
	}
	return cfg, nil
}

// Load parses r and adds every configuration to the registry. It stops at
// the first failure, naming the offending configuration.
func (r *Registry) Load(rd io.Reader) error {
	configs, err := Parse(rd)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		if err := r.Add(cfg); err != nil {
			return fmt.Errorf("add configuration %q: %w", cfg.Name, err)
		}
	}
	return nil
}
