package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/datasync"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
)

// Coordinator orchestrates trigger propagation across the graph. It owns
// the current snapshot, the shared tick counter and one NodeRuntime per
// node. All mutations are serialized through its mutex; readers always
// get a consistent immutable snapshot.
type Coordinator struct {
	provider ports.ActionProvider
	registry *registry.Registry
	sync     *datasync.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	resetDelay time.Duration

	mu       sync.Mutex
	graph    *graph.Graph
	tick     uint64
	gen      uint64 // bumped on Reset; work from older generations is dropped
	runtimes map[string]*NodeRuntime

	inflight sync.WaitGroup
}

// NewCoordinator creates a coordinator over an empty graph.
func NewCoordinator(provider ports.ActionProvider, reg *registry.Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:   provider,
		registry:   reg,
		logger:     slog.Default(),
		resetDelay: DefaultResetDelay,
		graph:      graph.New(),
		runtimes:   make(map[string]*NodeRuntime),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sync = datasync.New(c.logger)
	return c
}

// Graph returns the current snapshot.
func (c *Coordinator) Graph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// Reset replaces the graph wholesale (bulk load). Existing runtimes are
// discarded and the generation counter is bumped: in-flight provider
// calls run to completion, but their commits, pending-trigger updates
// and propagation carry the old generation and are dropped. Allocator
// ids recycle across loads, so an id match alone must never let a
// pre-load execution touch the loaded document.
func (c *Coordinator) Reset(g *graph.Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graph = g
	c.gen++
	c.runtimes = make(map[string]*NodeRuntime)
	for _, n := range g.Nodes() {
		c.runtimes[n.ID] = newNodeRuntime(c, n.ID, n.Kind, c.gen)
	}
	c.graph, _ = c.sync.Pass(c.graph)
}

// AddNode inserts the node and creates its runtime.
func (c *Coordinator) AddNode(n domain.Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.graph.AddNode(n)
	if err != nil {
		return err
	}
	c.graph, _ = c.sync.Settle(next)
	c.runtimes[n.ID] = newNodeRuntime(c, n.ID, n.Kind, c.gen)
	return nil
}

// RemoveNode deletes the node, its edges and its runtime. The runtime is
// destroyed with the node; its transient state is not preserved.
func (c *Coordinator) RemoveNode(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.graph.RemoveNode(id)
	if err != nil {
		return err
	}
	c.graph, _ = c.sync.Settle(next)
	delete(c.runtimes, id)
	return nil
}

// AddEdge connects two nodes. New data edges sync immediately so the
// target sees any already-committed source output.
func (c *Coordinator) AddEdge(e domain.Edge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.graph.AddEdge(e)
	if err != nil {
		return err
	}
	c.graph, _ = c.sync.Settle(next)
	return nil
}

// RemoveEdge disconnects an edge.
func (c *Coordinator) RemoveEdge(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.graph.RemoveEdge(id)
	if err != nil {
		return err
	}
	c.graph = next
	return nil
}

// SetField writes a user-entered input value.
func (c *Coordinator) SetField(nodeID, port, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.graph.SetField(nodeID, port, value)
	if err != nil {
		return err
	}
	c.graph = next
	return nil
}

// Execute starts an execution of the node in the given mode. It returns
// once the execution is scheduled; the provider call runs asynchronously.
func (c *Coordinator) Execute(ctx context.Context, nodeID string, mode domain.ExecutionMode) error {
	c.mu.Lock()
	rt, ok := c.runtimes[nodeID]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("node %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	return rt.Start(ctx, mode)
}

// Propagate marks the trigger-edge successors of nodeID as triggered.
// Data edges are settled FIRST, so every target observes the just-written
// outputs in its fields before its trigger tick is assigned; then one
// shared fresh tick is stamped on all targets. The function only
// schedules the targets, it never blocks on their execution.
func (c *Coordinator) Propagate(ctx context.Context, nodeID string) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.propagate(ctx, nodeID, gen)
}

func (c *Coordinator) propagate(ctx context.Context, nodeID string, gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Warn("dropping propagation from a stale generation", "node", nodeID)
		return
	}
	targets := c.graph.TriggerSuccessors(nodeID)
	if len(targets) == 0 {
		c.mu.Unlock()
		return
	}

	c.graph, _ = c.sync.Settle(c.graph)

	c.tick++
	tick := c.tick
	scheduled := make([]*NodeRuntime, 0, len(targets))
	for _, target := range targets {
		next, err := c.graph.SetPendingTrigger(target, tick)
		if err != nil {
			c.logger.Warn("skipping trigger for missing node", "node", target, "error", err)
			continue
		}
		c.graph = next
		if rt, ok := c.runtimes[target]; ok {
			scheduled = append(scheduled, rt)
		}
	}
	c.mu.Unlock()

	if c.hooks.OnTrigger != nil {
		c.hooks.OnTrigger(ctx, &domain.TriggerEvent{
			Timestamp: time.Now(),
			SourceID:  nodeID,
			Targets:   targets,
			Tick:      tick,
		})
	}

	for _, rt := range scheduled {
		rt.Trigger(ctx, tick)
	}
}

// NodeState returns the transient run state of a node. Nodes without a
// runtime (unknown ids) report Waiting.
func (c *Coordinator) NodeState(nodeID string) domain.RunState {
	c.mu.Lock()
	rt, ok := c.runtimes[nodeID]
	c.mu.Unlock()
	if !ok {
		return domain.StateWaiting
	}
	return rt.State()
}

// Quiesce blocks until every in-flight execution has committed or failed.
// Cosmetic reset timers are not waited for.
func (c *Coordinator) Quiesce() {
	c.inflight.Wait()
}

// Tick returns the current value of the shared trigger tick counter.
func (c *Coordinator) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// nodeSnapshot reads a node copy under the lock. Executions scheduled
// before a bulk load report the node as gone even when the loaded
// document reuses the id.
func (c *Coordinator) nodeSnapshot(nodeID string, gen uint64) (domain.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return domain.Node{}, false
	}
	return c.graph.Node(nodeID)
}

// commitOutputs writes the provider result and settles data edges in one
// ordered step. Returns false when the node vanished mid-flight or the
// graph was replaced under the execution.
func (c *Coordinator) commitOutputs(nodeID string, gen uint64, outputs map[string]string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Warn("dropping outputs committed across a bulk load", "node", nodeID)
		return false
	}
	next, err := c.graph.SetOutputs(nodeID, outputs)
	if err != nil {
		c.logger.Warn("dropping outputs of removed node", "node", nodeID)
		return false
	}
	c.graph, _ = c.sync.Settle(next)
	return true
}

// clearPendingTrigger consumes a trigger mark without writing outputs
// (failure and rejection paths).
func (c *Coordinator) clearPendingTrigger(nodeID string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	next, err := c.graph.SetPendingTrigger(nodeID, 0)
	if err != nil {
		return
	}
	c.graph = next
}
