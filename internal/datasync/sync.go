// Package datasync keeps data-edge targets consistent with their sources.
// A pass reads every data edge, stages a target-field update only where the
// source output is defined and actually differs, and applies the staged
// writes as one batch on a fresh snapshot. Because writes are staged only
// on difference, an acyclic data-edge graph reaches a fixed point; cyclic
// graphs are tolerated by bounding the number of passes.
package datasync

import (
	"log/slog"

	"github.com/weftlabs/weft/internal/graph"
)

// Engine propagates output values along data edges into input fields.
type Engine struct {
	logger *slog.Logger
}

// New creates a sync engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Pass runs a single sync pass and returns the resulting snapshot plus
// the number of staged updates. Zero staged updates means a fixed point.
func (e *Engine) Pass(g *graph.Graph) (*graph.Graph, int) {
	var staged []graph.FieldUpdate

	for _, edge := range g.DataEdges() {
		src, ok := g.Node(edge.SourceNode)
		if !ok {
			continue
		}
		value, defined := src.Outputs[edge.SourcePort]
		if !defined {
			continue
		}
		tgt, ok := g.Node(edge.TargetNode)
		if !ok {
			continue
		}
		if tgt.Fields[edge.TargetPort] == value {
			continue
		}
		staged = append(staged, graph.FieldUpdate{
			NodeID: edge.TargetNode,
			Port:   edge.TargetPort,
			Value:  value,
		})
	}

	if len(staged) == 0 {
		return g, 0
	}
	return g.ApplyFieldUpdates(staged), len(staged)
}

// Settle runs passes until a fixed point, bounded by len(data edges)+1
// passes so a genuinely oscillating cycle cannot spin forever. It returns
// the settled snapshot and the number of passes that staged updates.
func (e *Engine) Settle(g *graph.Graph) (*graph.Graph, int) {
	limit := len(g.DataEdges()) + 1
	passes := 0
	for i := 0; i < limit; i++ {
		next, changed := e.Pass(g)
		if changed == 0 {
			return g, passes
		}
		g = next
		passes++
	}
	e.logger.Warn("data sync did not settle within pass budget", "passes", passes)
	return g, passes
}
