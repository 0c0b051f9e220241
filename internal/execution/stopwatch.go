package execution

import (
	"time"
)

// Category classifies the time spent in a task.
type Category int

const (
	// CategoryBase covers framework work outside the other categories. The
	// TimerStack pauses it while a nested category runs, so the time of the
	// whole task is Stopwatches.Total.
	CategoryBase Category = iota
	// CategoryAlgorithm covers the unit's ProcessEvent.
	CategoryAlgorithm
	// CategoryInput covers input block assembly and steering.
	CategoryInput
	// CategoryOutput covers output block assembly.
	CategoryOutput

	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryBase:
		return "base"
	case CategoryAlgorithm:
		return "algorithm"
	case CategoryInput:
		return "input"
	case CategoryOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Clock supplies wall and CPU time readings.
type Clock interface {
	Now() time.Time
	CPUTime() time.Duration
}

type systemClock struct{}

func (systemClock) Now() time.Time         { return time.Now() }
func (systemClock) CPUTime() time.Duration { return processCPUTime() }

// Stopwatch accumulates wall and CPU time over start/stop intervals.
type Stopwatch struct {
	wall, cpu time.Duration

	running   bool
	startWall time.Time
	startCPU  time.Duration
}

func (s *Stopwatch) start(c Clock) {
	if s.running {
		return
	}
	s.running = true
	s.startWall = c.Now()
	s.startCPU = c.CPUTime()
}

func (s *Stopwatch) stop(c Clock) {
	if !s.running {
		return
	}
	s.running = false
	s.wall += c.Now().Sub(s.startWall)
	s.cpu += c.CPUTime() - s.startCPU
}

// Wall returns the accumulated wall time of stopped intervals.
func (s *Stopwatch) Wall() time.Duration {
	return s.wall
}

// CPU returns the accumulated CPU time of stopped intervals.
func (s *Stopwatch) CPU() time.Duration {
	return s.cpu
}

// Reset clears the accumulated times.
func (s *Stopwatch) Reset() {
	*s = Stopwatch{}
}

// Stopwatches holds one stopwatch per category.
type Stopwatches [numCategories]Stopwatch

// Get returns the stopwatch of category c.
func (s *Stopwatches) Get(c Category) *Stopwatch {
	return &s[c]
}

// Total returns the wall and CPU time summed over every category.
func (s *Stopwatches) Total() (wall, cpu time.Duration) {
	for i := range s {
		wall += s[i].wall
		cpu += s[i].cpu
	}
	return wall, cpu
}

// TimerStack keeps exactly one stopwatch running: the top of the stack.
// Pushing pauses the current top, popping resumes it.
type TimerStack struct {
	clock Clock
	stack []*Stopwatch
}

// NewTimerStack creates an empty stack reading time from clock. A nil clock
// uses the system clock.
func NewTimerStack(clock Clock) *TimerStack {
	if clock == nil {
		clock = systemClock{}
	}
	return &TimerStack{clock: clock}
}

// Push pauses the running stopwatch and starts s.
func (t *TimerStack) Push(s *Stopwatch) {
	if n := len(t.stack); n > 0 {
		t.stack[n-1].stop(t.clock)
	}
	t.stack = append(t.stack, s)
	s.start(t.clock)
}

// Pop stops the running stopwatch and resumes the one below it.
func (t *TimerStack) Pop() {
	n := len(t.stack)
	if n == 0 {
		return
	}
	t.stack[n-1].stop(t.clock)
	t.stack[n-1] = nil
	t.stack = t.stack[:n-1]
	if n > 1 {
		t.stack[n-2].start(t.clock)
	}
}

// Depth returns the number of pushed stopwatches.
func (t *TimerStack) Depth() int {
	return len(t.stack)
}
