package domain

// Well-known port names. An edge wired from TriggerOutputPort to
// TriggerInputPort carries control flow only; every other port pair
// carries a named data value.
const (
	TriggerOutputPort = "trigger-output"
	TriggerInputPort  = "trigger-input"
)

// Node is a unit of work in the graph.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Fields holds the node's input values, either typed in by the user
	// or pushed in along data edges.
	Fields map[string]string `json:"fields,omitempty"`

	// Outputs holds the result of the last successful execution,
	// keyed by output-port name.
	Outputs map[string]string `json:"outputs,omitempty"`

	// PendingTrigger is the tick of the most recent trigger aimed at this
	// node. Zero means no trigger has ever been set. A runtime begins a
	// triggered execution when it observes a tick it has not processed yet.
	PendingTrigger uint64 `json:"pendingTrigger,omitempty"`
}

// Clone returns a deep copy so snapshot readers can never alias the
// store's maps.
func (n Node) Clone() Node {
	out := n
	if n.Fields != nil {
		out.Fields = make(map[string]string, len(n.Fields))
		for k, v := range n.Fields {
			out.Fields[k] = v
		}
	}
	if n.Outputs != nil {
		out.Outputs = make(map[string]string, len(n.Outputs))
		for k, v := range n.Outputs {
			out.Outputs[k] = v
		}
	}
	return out
}

// Edge connects a source node's output port to a target node's input port.
type Edge struct {
	ID         string `json:"id"`
	SourceNode string `json:"sourceNode"`
	SourcePort string `json:"sourcePort"`
	TargetNode string `json:"targetNode"`
	TargetPort string `json:"targetPort"`
}

// IsTrigger reports whether the edge carries control flow rather than data.
func (e Edge) IsTrigger() bool {
	return e.SourcePort == TriggerOutputPort && e.TargetPort == TriggerInputPort
}
