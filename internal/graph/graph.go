// Package graph holds the workflow graph as an immutable-update container.
// Every mutation returns a new snapshot; a snapshot handed to a reader is
// never modified afterwards, so concurrent readers need no locking. The
// single-writer discipline lives in the runtime coordinator, not here.
package graph

import (
	"fmt"

	"github.com/weftlabs/weft/pkg/domain"
)

// Graph is one immutable snapshot of nodes and edges.
// The zero value is not usable; call New.
type Graph struct {
	nodes map[string]domain.Node
	order []string // node ids in insertion order, for deterministic listings
	edges []domain.Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]domain.Node)}
}

// FromWorkflow builds a snapshot from a persisted document.
// Endpoint validation is applied edge by edge, so a corrupted file
// surfaces a GraphIntegrityError instead of a dangling edge.
func FromWorkflow(wf *domain.Workflow) (*Graph, error) {
	g := New()
	var err error
	for _, n := range wf.Nodes {
		if g, err = g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range wf.Edges {
		if g, err = g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) clone() *Graph {
	next := &Graph{
		nodes: make(map[string]domain.Node, len(g.nodes)),
		order: append([]string(nil), g.order...),
		edges: append([]domain.Edge(nil), g.edges...),
	}
	for id, n := range g.nodes {
		next.nodes[id] = n
	}
	return next
}

// AddNode returns a snapshot containing the node.
func (g *Graph) AddNode(n domain.Node) (*Graph, error) {
	if n.ID == "" {
		return nil, fmt.Errorf("node id must not be empty")
	}
	if _, exists := g.nodes[n.ID]; exists {
		return nil, fmt.Errorf("node %s: %w", n.ID, domain.ErrDuplicateNode)
	}
	next := g.clone()
	next.nodes[n.ID] = n.Clone()
	next.order = append(next.order, n.ID)
	return next, nil
}

// RemoveNode returns a snapshot without the node and without any edge
// touching it. The caller is responsible for releasing the id back to
// the allocator.
func (g *Graph) RemoveNode(id string) (*Graph, error) {
	if _, exists := g.nodes[id]; !exists {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}
	next := g.clone()
	delete(next.nodes, id)
	for i, oid := range next.order {
		if oid == id {
			next.order = append(next.order[:i], next.order[i+1:]...)
			break
		}
	}
	kept := next.edges[:0]
	for _, e := range next.edges {
		if e.SourceNode != id && e.TargetNode != id {
			kept = append(kept, e)
		}
	}
	next.edges = kept
	return next, nil
}

// AddEdge returns a snapshot containing the edge. Both endpoints must
// exist, and a trigger edge must not close a control-flow cycle.
func (g *Graph) AddEdge(e domain.Edge) (*Graph, error) {
	if _, ok := g.nodes[e.SourceNode]; !ok {
		return nil, &domain.GraphIntegrityError{EdgeID: e.ID, Missing: e.SourceNode}
	}
	if _, ok := g.nodes[e.TargetNode]; !ok {
		return nil, &domain.GraphIntegrityError{EdgeID: e.ID, Missing: e.TargetNode}
	}
	if e.IsTrigger() && g.triggerPathExists(e.TargetNode, e.SourceNode) {
		return nil, fmt.Errorf("edge %s -> %s: %w", e.SourceNode, e.TargetNode, domain.ErrCycleDetected)
	}
	next := g.clone()
	next.edges = append(next.edges, e)
	return next, nil
}

// RemoveEdge returns a snapshot without the edge.
func (g *Graph) RemoveEdge(id string) (*Graph, error) {
	for i, e := range g.edges {
		if e.ID == id {
			next := g.clone()
			next.edges = append(next.edges[:i], next.edges[i+1:]...)
			return next, nil
		}
	}
	return nil, fmt.Errorf("edge %s: %w", id, domain.ErrEdgeNotFound)
}

// SetField returns a snapshot with one input field updated.
func (g *Graph) SetField(nodeID, port, value string) (*Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	next := g.clone()
	nn := n.Clone()
	if nn.Fields == nil {
		nn.Fields = make(map[string]string)
	}
	nn.Fields[port] = value
	next.nodes[nodeID] = nn
	return next, nil
}

// FieldUpdate is one staged data-sync write.
type FieldUpdate struct {
	NodeID string
	Port   string
	Value  string
}

// ApplyFieldUpdates applies a batch of staged writes as one snapshot step.
// Updates to nodes that vanished since staging are skipped.
func (g *Graph) ApplyFieldUpdates(updates []FieldUpdate) *Graph {
	if len(updates) == 0 {
		return g
	}
	next := g.clone()
	for _, u := range updates {
		n, ok := next.nodes[u.NodeID]
		if !ok {
			continue
		}
		nn := n.Clone()
		if nn.Fields == nil {
			nn.Fields = make(map[string]string)
		}
		nn.Fields[u.Port] = u.Value
		next.nodes[u.NodeID] = nn
	}
	return next
}

// SetOutputs returns a snapshot with the node's outputs replaced and its
// pending trigger cleared (outputs are only written on completion, which
// consumes the trigger).
func (g *Graph) SetOutputs(nodeID string, outputs map[string]string) (*Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	next := g.clone()
	nn := n.Clone()
	nn.Outputs = make(map[string]string, len(outputs))
	for k, v := range outputs {
		nn.Outputs[k] = v
	}
	nn.PendingTrigger = 0
	next.nodes[nodeID] = nn
	return next, nil
}

// SetPendingTrigger returns a snapshot with the node's trigger tick set.
// A zero tick clears the mark.
func (g *Graph) SetPendingTrigger(nodeID string, tick uint64) (*Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	next := g.clone()
	nn := n.Clone()
	nn.PendingTrigger = tick
	next.nodes[nodeID] = nn
	return next, nil
}

// Node returns a copy of the node, if present.
func (g *Graph) Node(id string) (domain.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []domain.Edge {
	return append([]domain.Edge(nil), g.edges...)
}

// TriggerSuccessors returns the targets of trigger edges whose source is
// the given node, in edge order.
func (g *Graph) TriggerSuccessors(nodeID string) []string {
	var out []string
	for _, e := range g.edges {
		if e.IsTrigger() && e.SourceNode == nodeID {
			out = append(out, e.TargetNode)
		}
	}
	return out
}

// DataEdges returns every non-trigger edge.
func (g *Graph) DataEdges() []domain.Edge {
	var out []domain.Edge
	for _, e := range g.edges {
		if !e.IsTrigger() {
			out = append(out, e)
		}
	}
	return out
}

// IncomingDataEdges returns data edges targeting the node.
func (g *Graph) IncomingDataEdges(nodeID string) []domain.Edge {
	var out []domain.Edge
	for _, e := range g.edges {
		if !e.IsTrigger() && e.TargetNode == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingDataEdges returns data edges sourced at the node.
func (g *Graph) OutgoingDataEdges(nodeID string) []domain.Edge {
	var out []domain.Edge
	for _, e := range g.edges {
		if !e.IsTrigger() && e.SourceNode == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Workflow materializes the snapshot as a persistable document.
func (g *Graph) Workflow(viewport domain.Viewport) *domain.Workflow {
	return &domain.Workflow{
		Nodes:    g.Nodes(),
		Edges:    g.Edges(),
		Viewport: viewport,
	}
}

// triggerPathExists walks trigger edges from -> to.
func (g *Graph) triggerPathExists(from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.TriggerSuccessors(cur) {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
