package execution

import (
	"time"

	"github.com/birdayz/kchain/kserde"
	"golang.org/x/exp/slices"
)

// ComponentStatistics is the per-task entry of a ComponentStatistics block.
type ComponentStatistics struct {
	Task       string        `json:"task"`
	Component  string        `json:"component"`
	Level      int           `json:"level"`
	Events     uint64        `json:"events"`
	Failures   uint64        `json:"failures"`
	NoData     uint64        `json:"noData"`
	InputSize  uint64        `json:"inputSize"`
	OutputSize uint64        `json:"outputSize"`
	Wall       time.Duration `json:"wallNs"`
	CPU        time.Duration `json:"cpuNs"`
	Algorithm  time.Duration `json:"algorithmNs"`
}

// TableEntry is the per-task entry of a ComponentTable block.
type TableEntry struct {
	Task      string   `json:"task"`
	Component string   `json:"component"`
	Sources   []string `json:"sources,omitempty"`
}

var (
	statisticsSerde = kserde.JSON[[]ComponentStatistics]()
	tableSerde      = kserde.JSON[[]TableEntry]()
)

// mergeStatistics adds entries to dst, replacing entries of the same task.
// Order of first appearance is kept.
func mergeStatistics(dst, entries []ComponentStatistics) []ComponentStatistics {
	for _, e := range entries {
		i := slices.IndexFunc(dst, func(c ComponentStatistics) bool { return c.Task == e.Task })
		if i >= 0 {
			dst[i] = e
			continue
		}
		dst = append(dst, e)
	}
	return dst
}

func mergeTable(dst, entries []TableEntry) []TableEntry {
	for _, e := range entries {
		i := slices.IndexFunc(dst, func(c TableEntry) bool { return c.Task == e.Task })
		if i >= 0 {
			dst[i] = e
			continue
		}
		dst = append(dst, e)
	}
	return dst
}
