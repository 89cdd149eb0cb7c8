// Package weft is a workflow execution engine for node-graph automation.
// Nodes are opaque units of work wired together by trigger edges (control
// flow) and data edges (value flow); the actual work of each node kind is
// delegated to an ActionProvider supplied by the host.
package weft

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/internal/alloc"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/logging"
	"github.com/weftlabs/weft/internal/runtime"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
)

// Engine is the high-level entry point for the Weft library.
// It wraps the internal coordinator and provides a simplified API for
// hosts: graph editing, execution, persistence.
type Engine struct {
	coord    *runtime.Coordinator
	alloc    *alloc.Allocator
	registry *registry.Registry
	store    ports.WorkflowStore
	logger   *slog.Logger

	hooks      domain.LifecycleHooks
	resetDelay time.Duration

	mu       sync.Mutex
	viewport domain.Viewport
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry injects the node-kind registry used for field validation
// and per-kind policies.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithStore attaches a workflow store for Save/Load.
func WithStore(store ports.WorkflowStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithResetDelay overrides the cosmetic auto-reset delay (default 2s).
func WithResetDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.resetDelay = d
	}
}

// New initializes an engine over an empty graph.
// The provider is mandatory; everything else has defaults.
func New(provider ports.ActionProvider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("action provider is required")
	}

	eng := &Engine{resetDelay: runtime.DefaultResetDelay}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.registry == nil {
		eng.registry = registry.NewRegistry()
	}

	eng.alloc = alloc.New(eng.logger)
	eng.coord = runtime.NewCoordinator(
		provider,
		eng.registry,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithResetDelay(eng.resetDelay),
	)
	return eng, nil
}

// AddNode creates a node of the given kind with a freshly allocated id.
func (e *Engine) AddNode(kind string, fields map[string]string) (string, error) {
	id := e.alloc.Allocate()
	err := e.coord.AddNode(domain.Node{ID: id, Kind: kind, Fields: fields})
	if err != nil {
		e.alloc.Release(id)
		return "", err
	}
	return id, nil
}

// RemoveNode deletes a node, its edges and its runtime, and releases the
// id back to the allocator.
func (e *Engine) RemoveNode(id string) error {
	if err := e.coord.RemoveNode(id); err != nil {
		return err
	}
	e.alloc.Release(id)
	return nil
}

// Connect wires an edge between two ports and returns its id.
// Trigger edges are validated against control-flow cycles.
func (e *Engine) Connect(sourceNode, sourcePort, targetNode, targetPort string) (string, error) {
	edge := domain.Edge{
		ID:         uuid.NewString(),
		SourceNode: sourceNode,
		SourcePort: sourcePort,
		TargetNode: targetNode,
		TargetPort: targetPort,
	}
	if err := e.coord.AddEdge(edge); err != nil {
		return "", err
	}
	return edge.ID, nil
}

// Disconnect removes an edge.
func (e *Engine) Disconnect(edgeID string) error {
	return e.coord.RemoveEdge(edgeID)
}

// SetField writes a user-entered input value on a node.
func (e *Engine) SetField(nodeID, port, value string) error {
	return e.coord.SetField(nodeID, port, value)
}

// Execute runs a node. ModeManual runs it alone; ModeTriggered also
// propagates triggers to its successors on success. The call returns as
// soon as the execution is scheduled.
func (e *Engine) Execute(ctx context.Context, nodeID string, mode domain.ExecutionMode) error {
	return e.coord.Execute(ctx, nodeID, mode)
}

// NodeState reports the transient run state of a node.
func (e *Engine) NodeState(nodeID string) domain.RunState {
	return e.coord.NodeState(nodeID)
}

// Node returns a copy of a node.
func (e *Engine) Node(id string) (domain.Node, bool) {
	return e.coord.Graph().Node(id)
}

// Nodes returns copies of all nodes.
func (e *Engine) Nodes() []domain.Node {
	return e.coord.Graph().Nodes()
}

// Edges returns copies of all edges.
func (e *Engine) Edges() []domain.Edge {
	return e.coord.Graph().Edges()
}

// SetViewport records the editor viewport carried through save/load.
func (e *Engine) SetViewport(v domain.Viewport) {
	e.mu.Lock()
	e.viewport = v
	e.mu.Unlock()
}

// Workflow materializes the current graph as a persistable document.
func (e *Engine) Workflow() *domain.Workflow {
	e.mu.Lock()
	vp := e.viewport
	e.mu.Unlock()
	return e.coord.Graph().Workflow(vp)
}

// LoadWorkflow replaces the graph with the given document and resyncs
// the identifier allocator from the loaded node ids. No execution is
// possible against the new graph before the resync has happened.
func (e *Engine) LoadWorkflow(wf *domain.Workflow) error {
	g, err := graph.FromWorkflow(wf)
	if err != nil {
		return err
	}
	e.alloc.Resync(wf.NodeIDs())
	e.coord.Reset(g)

	e.mu.Lock()
	e.viewport = wf.Viewport
	e.mu.Unlock()
	return nil
}

// Save persists the current workflow under the given ID.
func (e *Engine) Save(ctx context.Context, workflowID string) error {
	if e.store == nil {
		return fmt.Errorf("no workflow store configured")
	}
	return e.store.Save(ctx, workflowID, e.Workflow())
}

// Load retrieves a workflow from the store and installs it.
func (e *Engine) Load(ctx context.Context, workflowID string) error {
	if e.store == nil {
		return fmt.Errorf("no workflow store configured")
	}
	wf, err := e.store.Load(ctx, workflowID)
	if err != nil {
		return err
	}
	return e.LoadWorkflow(wf)
}

// Quiesce blocks until all in-flight executions have finished.
// Intended for CLIs and tests; a long-running host usually relies on
// lifecycle hooks instead.
func (e *Engine) Quiesce() {
	e.coord.Quiesce()
}

// Registry returns the node-kind registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}
