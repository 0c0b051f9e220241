package execution

import (
	"fmt"
)

// ProcessingStage indicates where in the event path an error occurred.
type ProcessingStage string

const (
	StageInit       ProcessingStage = "init"
	StageSteering   ProcessingStage = "steering"
	StageAllocation ProcessingStage = "allocation"
	StageProcessing ProcessingStage = "processing"
	StageOutput     ProcessingStage = "output"
	StageDeinit     ProcessingStage = "deinit"
)

// ProcessingError wraps an error with task attribution for debugging.
// It identifies which task failed, for which event and at what stage.
type ProcessingError struct {
	// Cause is the underlying error
	Cause error

	// Stage identifies where in the event path the error occurred
	Stage ProcessingStage

	// Task is the configuration name of the failing task
	Task string

	// EventID is the sequence number of the event being processed
	EventID uint64
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s error in task %q (event=%d): %v", e.Stage, e.Task, e.EventID, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// NewProcessingError creates a ProcessingError with full attribution
func NewProcessingError(cause error, stage ProcessingStage, task string, eventID uint64) *ProcessingError {
	return &ProcessingError{
		Cause:   cause,
		Stage:   stage,
		Task:    task,
		EventID: eventID,
	}
}
