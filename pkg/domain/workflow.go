package domain

// Viewport is the persisted canvas position of the visual editor.
// The engine carries it through save/load untouched.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Workflow is the persisted document: the full node and edge sets plus the
// editor viewport. It round-trips as JSON (.flow.json).
type Workflow struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	out := &Workflow{
		Nodes:    make([]Node, 0, len(w.Nodes)),
		Edges:    make([]Edge, len(w.Edges)),
		Viewport: w.Viewport,
	}
	for i := range w.Nodes {
		out.Nodes = append(out.Nodes, w.Nodes[i].Clone())
	}
	copy(out.Edges, w.Edges)
	return out
}

// NodeIDs returns the ids of all nodes in the document, in document order.
func (w *Workflow) NodeIDs() []string {
	ids := make([]string, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
