package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

// NodeRuntime is the per-node execution state machine:
//
//	Waiting -> Running    (Execute call, or a fresh trigger tick)
//	Running -> Completed  (provider returned outputs)
//	Running -> Failed     (validation failed, or provider returned error)
//	Completed/Failed -> Waiting (cosmetic delay; cancels nothing)
//
// Overlap policy: a trigger or Execute arriving while the provider call
// is still outstanding is rejected with a warning, not queued. The
// cosmetic reset never makes an in-flight node eligible again.
type NodeRuntime struct {
	coord *Coordinator
	id    string
	kind  string
	gen   uint64 // coordinator generation this runtime belongs to

	mu       sync.Mutex
	state    domain.RunState
	inFlight bool
	lastTick uint64
	seq      uint64 // transition counter; guards stale reset timers
}

// newNodeRuntime is called with the coordinator mutex held.
func newNodeRuntime(c *Coordinator, id, kind string, gen uint64) *NodeRuntime {
	return &NodeRuntime{
		coord: c,
		id:    id,
		kind:  kind,
		gen:   gen,
		state: domain.StateWaiting,
	}
}

// State returns the current transient state.
func (rt *NodeRuntime) State() domain.RunState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state
}

// Start begins an execution requested directly by the host.
func (rt *NodeRuntime) Start(ctx context.Context, mode domain.ExecutionMode) error {
	rt.mu.Lock()
	if rt.inFlight {
		rt.mu.Unlock()
		rt.coord.logger.Warn("rejecting overlapping execution", "node", rt.id, "kind", rt.kind)
		return domain.ErrExecutionInFlight
	}
	rt.inFlight = true
	rt.state = domain.StateRunning
	rt.seq++
	rt.mu.Unlock()

	rt.coord.inflight.Add(1)
	go rt.run(ctx, mode)
	return nil
}

// Trigger begins a triggered execution for a fresh tick. Repeated or
// stale ticks are ignored, which breaks re-entrant trigger loops.
func (rt *NodeRuntime) Trigger(ctx context.Context, tick uint64) {
	rt.mu.Lock()
	if tick <= rt.lastTick {
		rt.mu.Unlock()
		return
	}
	rt.lastTick = tick

	if rt.inFlight {
		rt.mu.Unlock()
		rt.coord.logger.Warn("dropping trigger for busy node", "node", rt.id, "tick", tick)
		rt.coord.clearPendingTrigger(rt.id, rt.gen)
		return
	}
	rt.inFlight = true
	rt.state = domain.StateRunning
	rt.seq++
	rt.mu.Unlock()

	rt.coord.inflight.Add(1)
	go rt.run(ctx, domain.ModeTriggered)
}

func (rt *NodeRuntime) run(ctx context.Context, mode domain.ExecutionMode) {
	defer rt.coord.inflight.Done()
	started := time.Now()

	node, ok := rt.coord.nodeSnapshot(rt.id, rt.gen)
	if !ok {
		// Deleted or displaced by a bulk load between scheduling and
		// start; no start event was emitted, so none has to be closed.
		rt.mu.Lock()
		rt.inFlight = false
		rt.state = domain.StateWaiting
		rt.seq++
		rt.mu.Unlock()
		return
	}

	rt.emit(ctx, domain.EventNodeStart, mode, domain.StateRunning, "", 0)

	// Local validation happens before the provider is ever called.
	if missing := rt.coord.registry.MissingFields(rt.kind, node.Fields); len(missing) > 0 {
		verr := &domain.ValidationError{NodeID: rt.id, Kind: rt.kind, Missing: missing}
		rt.coord.clearPendingTrigger(rt.id, rt.gen)
		rt.finishFailed(ctx, mode, verr.Error(), started)
		return
	}

	fields := node.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	outputs, err := rt.coord.provider.Execute(ctx, ports.ExecRequest{
		NodeID: rt.id,
		Kind:   rt.kind,
		Fields: fields,
	})
	if err != nil {
		aerr := &domain.ActionError{NodeID: rt.id, Kind: rt.kind, Message: err.Error()}
		rt.coord.clearPendingTrigger(rt.id, rt.gen)
		rt.finishFailed(ctx, mode, aerr.Message, started)
		return
	}

	// Outputs and the data sync are committed as one ordered step before
	// any downstream trigger can be assigned. A missed commit (node
	// removed, or the graph replaced by a bulk load) still closes the
	// execution with a terminal event so hook consumers stay balanced.
	if !rt.coord.commitOutputs(rt.id, rt.gen, outputs) {
		rt.finishFailed(ctx, mode, "node no longer part of the active graph", started)
		return
	}

	rt.mu.Lock()
	rt.state = domain.StateCompleted
	rt.inFlight = false
	rt.seq++
	seq := rt.seq
	rt.mu.Unlock()

	rt.emit(ctx, domain.EventNodeComplete, mode, domain.StateCompleted, "", time.Since(started))

	if mode == domain.ModeTriggered {
		rt.coord.propagate(ctx, rt.id, rt.gen)
	}
	rt.scheduleReset(seq)
}

func (rt *NodeRuntime) finishFailed(ctx context.Context, mode domain.ExecutionMode, reason string, started time.Time) {
	rt.mu.Lock()
	rt.state = domain.StateFailed
	rt.inFlight = false
	rt.seq++
	seq := rt.seq
	rt.mu.Unlock()

	rt.emit(ctx, domain.EventNodeFail, mode, domain.StateFailed, reason, time.Since(started))

	// Failures are node-local unless the kind explicitly opts into
	// letting downstream nodes observe the error.
	if mode == domain.ModeTriggered {
		if spec, ok := rt.coord.registry.Lookup(rt.kind); ok && spec.PropagateOnError {
			rt.coord.propagate(ctx, rt.id, rt.gen)
		}
	}
	rt.scheduleReset(seq)
}

// scheduleReset arms the cosmetic auto-reset back to Waiting. The seq
// guard keeps a stale timer from clobbering a newer execution's state.
func (rt *NodeRuntime) scheduleReset(seq uint64) {
	time.AfterFunc(rt.coord.resetDelay, func() {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		if rt.seq != seq {
			return
		}
		if rt.state == domain.StateCompleted || rt.state == domain.StateFailed {
			rt.state = domain.StateWaiting
		}
	})
}

func (rt *NodeRuntime) emit(ctx context.Context, typ domain.EventType, mode domain.ExecutionMode, state domain.RunState, errMsg string, dur time.Duration) {
	ev := &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      typ,
		NodeID:    rt.id,
		Kind:      rt.kind,
		Mode:      mode,
		State:     state,
		Error:     errMsg,
		Duration:  dur,
	}
	switch typ {
	case domain.EventNodeStart:
		if rt.coord.hooks.OnNodeStart != nil {
			rt.coord.hooks.OnNodeStart(ctx, ev)
		}
	case domain.EventNodeComplete:
		if rt.coord.hooks.OnNodeComplete != nil {
			rt.coord.hooks.OnNodeComplete(ctx, ev)
		}
	case domain.EventNodeFail:
		if rt.coord.hooks.OnNodeFail != nil {
			rt.coord.hooks.OnNodeFail(ctx, ev)
		}
	}
}
