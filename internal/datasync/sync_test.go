package datasync

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/logging"
	"github.com/weftlabs/weft/pkg/domain"
)

func buildGraph(t *testing.T, nodes []domain.Node, edges []domain.Edge) *graph.Graph {
	t.Helper()
	g, err := graph.FromWorkflow(&domain.Workflow{Nodes: nodes, Edges: edges})
	require.NoError(t, err)
	return g
}

func TestPass_PushesOutputToField(t *testing.T) {
	g := buildGraph(t,
		[]domain.Node{
			{ID: "1", Kind: "echo", Outputs: map[string]string{"text": "hello"}},
			{ID: "2", Kind: "echo"},
		},
		[]domain.Edge{
			{ID: "d1", SourceNode: "1", SourcePort: "text", TargetNode: "2", TargetPort: "text"},
		},
	)

	e := New(logging.NewNop())
	g, changed := e.Pass(g)
	assert.Equal(t, 1, changed)

	n, _ := g.Node("2")
	assert.Equal(t, "hello", n.Fields["text"])
}

func TestPass_UndefinedOutputIsNotPushed(t *testing.T) {
	g := buildGraph(t,
		[]domain.Node{
			{ID: "1", Kind: "echo"},
			{ID: "2", Kind: "echo", Fields: map[string]string{"text": "typed by user"}},
		},
		[]domain.Edge{
			{ID: "d1", SourceNode: "1", SourcePort: "text", TargetNode: "2", TargetPort: "text"},
		},
	)

	e := New(logging.NewNop())
	g, changed := e.Pass(g)
	assert.Zero(t, changed)

	n, _ := g.Node("2")
	assert.Equal(t, "typed by user", n.Fields["text"])
}

func TestPass_EqualValueStagesNothing(t *testing.T) {
	g := buildGraph(t,
		[]domain.Node{
			{ID: "1", Kind: "echo", Outputs: map[string]string{"text": "same"}},
			{ID: "2", Kind: "echo", Fields: map[string]string{"text": "same"}},
		},
		[]domain.Edge{
			{ID: "d1", SourceNode: "1", SourcePort: "text", TargetNode: "2", TargetPort: "text"},
		},
	)

	e := New(logging.NewNop())
	_, changed := e.Pass(g)
	assert.Zero(t, changed, "identical values must not stage an update")
}

func TestSettle_ChainConvergesWithinEdgeBudget(t *testing.T) {
	// A chain 1 -> 2 -> 3 -> ... where each node's output feeds the next
	// node's field. With outputs prefilled, a chain of N data edges must
	// settle in at most N passes.
	const chainLen = 5
	var nodes []domain.Node
	var edges []domain.Edge
	for i := 1; i <= chainLen; i++ {
		id := fmt.Sprintf("%d", i)
		nodes = append(nodes, domain.Node{
			ID:      id,
			Kind:    "echo",
			Outputs: map[string]string{"text": "v" + id},
		})
	}
	for i := 1; i < chainLen; i++ {
		edges = append(edges, domain.Edge{
			ID:         fmt.Sprintf("d%d", i),
			SourceNode: fmt.Sprintf("%d", i),
			SourcePort: "text",
			TargetNode: fmt.Sprintf("%d", i+1),
			TargetPort: "text",
		})
	}
	g := buildGraph(t, nodes, edges)

	e := New(logging.NewNop())
	g, passes := e.Settle(g)
	assert.LessOrEqual(t, passes, chainLen-1)

	// Fixed point: another pass stages nothing.
	_, changed := e.Pass(g)
	assert.Zero(t, changed)

	last, _ := g.Node(fmt.Sprintf("%d", chainLen))
	assert.Equal(t, fmt.Sprintf("v%d", chainLen-1), last.Fields["text"])
}

func TestSettle_FanOutDeliversToAllTargets(t *testing.T) {
	g := buildGraph(t,
		[]domain.Node{
			{ID: "1", Kind: "echo", Outputs: map[string]string{"text": "fan"}},
			{ID: "2", Kind: "echo"},
			{ID: "3", Kind: "echo"},
		},
		[]domain.Edge{
			{ID: "d1", SourceNode: "1", SourcePort: "text", TargetNode: "2", TargetPort: "text"},
			{ID: "d2", SourceNode: "1", SourcePort: "text", TargetNode: "3", TargetPort: "left"},
		},
	)

	e := New(logging.NewNop())
	g, passes := e.Settle(g)
	assert.Equal(t, 1, passes)

	n2, _ := g.Node("2")
	n3, _ := g.Node("3")
	assert.Equal(t, "fan", n2.Fields["text"])
	assert.Equal(t, "fan", n3.Fields["left"])
}

func TestSettle_CyclicEdgesAreBounded(t *testing.T) {
	// 1.text -> 2.text and 2.text -> 1.text with stable outputs: the pass
	// budget must hold even though the graph has a data cycle.
	g := buildGraph(t,
		[]domain.Node{
			{ID: "1", Kind: "echo", Outputs: map[string]string{"text": "a"}},
			{ID: "2", Kind: "echo", Outputs: map[string]string{"text": "b"}},
		},
		[]domain.Edge{
			{ID: "d1", SourceNode: "1", SourcePort: "text", TargetNode: "2", TargetPort: "text"},
			{ID: "d2", SourceNode: "2", SourcePort: "text", TargetNode: "1", TargetPort: "text"},
		},
	)

	e := New(logging.NewNop())
	g, passes := e.Settle(g)
	assert.LessOrEqual(t, passes, 3, "settle must stop within the pass budget")

	n1, _ := g.Node("1")
	n2, _ := g.Node("2")
	assert.Equal(t, "b", n1.Fields["text"])
	assert.Equal(t, "a", n2.Fields["text"])
}
