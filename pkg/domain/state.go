package domain

// RunState is the transient execution state of a node runtime.
// It is created with the node, destroyed with it, and never persisted.
type RunState string

const (
	StateWaiting   RunState = "waiting"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// ExecutionMode selects how far an execution reaches.
type ExecutionMode string

const (
	// ModeManual runs this node only.
	ModeManual ExecutionMode = "manual"

	// ModeTriggered runs this node and, on success, propagates triggers
	// to its trigger-edge successors.
	ModeTriggered ExecutionMode = "triggered"
)
