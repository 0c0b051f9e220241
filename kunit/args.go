package kunit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/birdayz/kchain/kstatus"
)

// Arguments are the framework level arguments of a unit.
type Arguments struct {
	LogLevel          LogMask
	ObjectCompression int
	ChainID           string
	Benchmark         bool
	// Rest holds every argument not recognised here, in input order.
	Rest []string
}

// DefaultObjectCompression is used when no -object-compression is given.
const DefaultObjectCompression = 1

// ScanArguments extracts the framework arguments and forwards everything
// else in Rest.
func ScanArguments(args []string) (Arguments, error) {
	scanned := Arguments{
		LogLevel:          DefaultLogMask,
		ObjectCompression: DefaultObjectCompression,
	}
	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		switch {
		case key == "loglevel" || key == "-loglevel":
			mask, err := parseLogMask(value)
			if err != nil {
				return scanned, err
			}
			scanned.LogLevel = mask
		case key == "-object-compression":
			level, err := strconv.Atoi(value)
			if err != nil || level < 0 || level > 9 {
				return scanned, fmt.Errorf("%w: -object-compression=%s: expected 0..9", kstatus.ErrInvalidArgument, value)
			}
			scanned.ObjectCompression = level
		case key == "chainid" && hasValue:
			if value == "" {
				return scanned, fmt.Errorf("%w: chainid cannot be empty", kstatus.ErrInvalidArgument)
			}
			scanned.ChainID = value
		case arg == "benchmark":
			scanned.Benchmark = true
		default:
			scanned.Rest = append(scanned.Rest, arg)
		}
	}
	return scanned, nil
}

func parseLogMask(value string) (LogMask, error) {
	v := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	mask, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: loglevel=%s: expected a hex mask", kstatus.ErrInvalidArgument, value)
	}
	return LogMask(mask), nil
}
