package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/weftlabs/weft"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/registry"
)

// LoadWorkflowFile reads a .flow.json document from disk.
func LoadWorkflowFile(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}
	var wf domain.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return &wf, nil
}

// StartNodes returns the entry points of a workflow: nodes whose kind is
// "start", or, if there are none, nodes without an incoming trigger edge.
func StartNodes(wf *domain.Workflow) []string {
	var starts []string
	for _, n := range wf.Nodes {
		if n.Kind == "start" {
			starts = append(starts, n.ID)
		}
	}
	if len(starts) > 0 {
		return starts
	}

	triggered := make(map[string]bool)
	for _, e := range wf.Edges {
		if e.IsTrigger() {
			triggered[e.TargetNode] = true
		}
	}
	for _, n := range wf.Nodes {
		if !triggered[n.ID] {
			starts = append(starts, n.ID)
		}
	}
	return starts
}

// RunWorkflow loads a workflow file into the engine, fires its entry
// points in triggered mode, waits for the cascade to drain and writes a
// per-node output report.
func RunWorkflow(ctx context.Context, engine *weft.Engine, path string, entry string, out io.Writer) error {
	wf, err := LoadWorkflowFile(path)
	if err != nil {
		return err
	}
	if err := engine.LoadWorkflow(wf); err != nil {
		return err
	}

	entries := []string{entry}
	if entry == "" {
		entries = StartNodes(wf)
	}
	if len(entries) == 0 {
		return fmt.Errorf("workflow has no entry nodes")
	}

	for _, id := range entries {
		if err := engine.Execute(ctx, id, domain.ModeTriggered); err != nil {
			return fmt.Errorf("failed to execute node %s: %w", id, err)
		}
	}
	engine.Quiesce()

	return writeReport(engine, out)
}

func writeReport(engine *weft.Engine, out io.Writer) error {
	nodes := engine.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		fmt.Fprintf(out, "node %s (%s): %s\n", n.ID, n.Kind, engine.NodeState(n.ID))
		keys := make([]string, 0, len(n.Outputs))
		for k := range n.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s = %s\n", k, n.Outputs[k])
		}
	}
	return nil
}

// ValidateWorkflow checks a workflow document for structural integrity
// and missing required fields, reporting each problem found.
func ValidateWorkflow(wf *domain.Workflow, reg *registry.Registry) []string {
	var problems []string

	ids := make(map[string]bool)
	for _, n := range wf.Nodes {
		if ids[n.ID] {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true

		if _, ok := reg.Lookup(n.Kind); !ok {
			problems = append(problems, fmt.Sprintf("node %s has unknown kind %q", n.ID, n.Kind))
			continue
		}
		if missing := reg.MissingFields(n.Kind, n.Fields); len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("node %s is missing required fields %v", n.ID, missing))
		}
	}

	for _, e := range wf.Edges {
		if !ids[e.SourceNode] {
			problems = append(problems, fmt.Sprintf("edge %s references missing source node %q", e.ID, e.SourceNode))
		}
		if !ids[e.TargetNode] {
			problems = append(problems, fmt.Sprintf("edge %s references missing target node %q", e.ID, e.TargetNode))
		}
	}

	return problems
}
