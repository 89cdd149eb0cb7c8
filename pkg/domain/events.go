package domain

import (
	"context"
	"time"
)

// EventType categorizes lifecycle events.
type EventType string

const (
	EventNodeStart    EventType = "node_start"
	EventNodeComplete EventType = "node_complete"
	EventNodeFail     EventType = "node_fail"
	EventTrigger      EventType = "trigger"
)

// NodeEvent describes a state transition of a single node runtime.
type NodeEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	NodeID    string        `json:"node_id"`
	Kind      string        `json:"kind"`
	Mode      ExecutionMode `json:"mode,omitempty"`
	State     RunState      `json:"state"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// TriggerEvent describes a propagation from a completed node to its
// trigger-edge successors.
type TriggerEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SourceID  string    `json:"source_id"`
	Targets   []string  `json:"targets"`
	Tick      uint64    `json:"tick"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks are invoked synchronously on the completing goroutine and must
// not block; heavy consumers should hand off to their own channels.
type LifecycleHooks struct {
	OnNodeStart    func(context.Context, *NodeEvent)
	OnNodeComplete func(context.Context, *NodeEvent)
	OnNodeFail     func(context.Context, *NodeEvent)
	OnTrigger      func(context.Context, *TriggerEvent)
}

// Merge combines two hook sets; both callbacks fire when both are set.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeStart:    chainNodeHook(h.OnNodeStart, other.OnNodeStart),
		OnNodeComplete: chainNodeHook(h.OnNodeComplete, other.OnNodeComplete),
		OnNodeFail:     chainNodeHook(h.OnNodeFail, other.OnNodeFail),
		OnTrigger:      chainTriggerHook(h.OnTrigger, other.OnTrigger),
	}
}

func chainNodeHook(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *NodeEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainTriggerHook(a, b func(context.Context, *TriggerEvent)) func(context.Context, *TriggerEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *TriggerEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
