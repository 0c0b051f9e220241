package execution

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateUninitialized State = iota
	StateConfigurationLoaded
	StateTaskListBuilt
	StateReady
	StateStarted
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateConfigurationLoaded:
		return "CONFIGURATION_LOADED"
	case StateTaskListBuilt:
		return "TASK_LIST_BUILT"
	case StateReady:
		return "READY"
	case StateStarted:
		return "STARTED"
	case StateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}
