// Package graph renders workflow documents as Mermaid flowcharts for
// quick inspection from the CLI.
package graph

import (
	"fmt"
	"strings"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/registry"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	Running   []string
	Completed []string
	Failed    []string
}

// GenerateMermaid produces a Mermaid flowchart (graph TD) from a workflow.
// Trigger edges render as solid arrows, data edges as dotted arrows
// labeled with their port pair. Start-category kinds render as circles.
func GenerateMermaid(wf *domain.Workflow, reg *registry.Registry, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range wf.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		label := node.Kind
		if reg != nil {
			if spec, ok := reg.Lookup(node.Kind); ok {
				label = spec.Name
				if spec.Category == "flow" {
					opener, closer = "((", "))" // Circle
				}
			}
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s (%s)\"%s\n", safeID, opener, label, node.ID, closer))
	}

	for _, edge := range wf.Edges {
		from := sanitizeMermaidID(edge.SourceNode)
		to := sanitizeMermaidID(edge.TargetNode)

		if edge.IsTrigger() {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -. \"%s → %s\" .-> %s\n", from, edge.SourcePort, edge.TargetPort, to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef completed fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")

		writeClasses(&sb, overlay.Running, "running")
		writeClasses(&sb, overlay.Completed, "completed")
		writeClasses(&sb, overlay.Failed, "failed")
	}

	return sb.String()
}

func writeClasses(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID != "" && !seen[safeID] {
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
		}
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return "n" + s
}
