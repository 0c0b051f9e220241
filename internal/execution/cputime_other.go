//go:build !unix

package execution

import (
	"time"
)

var processStart = time.Now()

// Without rusage the CPU time is approximated by the wall time.
func processCPUTime() time.Duration {
	return time.Since(processStart)
}
