package domain

import (
	"errors"
	"fmt"
)

// ErrWorkflowNotFound is returned when a workflow ID cannot be found in a store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrNodeNotFound is returned when an operation references a node that is
// not part of the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when an operation references an unknown edge.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrDuplicateNode is returned when a node with the same ID already exists.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrCycleDetected is returned when connecting a trigger edge would close
// a control-flow cycle. Cycles are rejected at edge-creation time rather
// than detected by runaway retriggering.
var ErrCycleDetected = errors.New("trigger cycle detected")

// ErrExecutionInFlight is returned when a node is asked to run while its
// action provider call is still outstanding. Overlapping executions of the
// same node are rejected, not queued.
var ErrExecutionInFlight = errors.New("execution already in flight")

// ValidationError reports a required input field that is missing or empty.
// It is recovered locally as a Failed state and never escapes the node.
type ValidationError struct {
	NodeID  string
	Kind    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("node %s (%s) missing required fields: %v", e.NodeID, e.Kind, e.Missing)
}

// ActionError wraps a failure reported by an action provider.
type ActionError struct {
	NodeID  string
	Kind    string
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("node %s (%s) action failed: %s", e.NodeID, e.Kind, e.Message)
}

// GraphIntegrityError reports an edge referencing a missing endpoint.
// It is surfaced at edge-creation time.
type GraphIntegrityError struct {
	EdgeID  string
	Missing string
}

func (e *GraphIntegrityError) Error() string {
	return fmt.Sprintf("edge %s references missing node %s", e.EdgeID, e.Missing)
}
