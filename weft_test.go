package weft_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weft "github.com/weftlabs/weft"
	"github.com/weftlabs/weft/pkg/adapters/memory"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/providers"
)

func newEchoEngine(t *testing.T, opts ...weft.Option) *weft.Engine {
	t.Helper()
	reg := providers.DefaultRegistry()
	base := []weft.Option{
		weft.WithRegistry(reg),
		weft.WithResetDelay(10 * time.Millisecond),
	}
	eng, err := weft.New(providers.Builtin(), append(base, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := weft.New(nil)
	assert.Error(t, err)
}

func TestAddNode_AllocatesSequentialIDs(t *testing.T) {
	eng := newEchoEngine(t)

	id1, err := eng.AddNode("echo", nil)
	require.NoError(t, err)
	id2, err := eng.AddNode("echo", nil)
	require.NoError(t, err)

	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)
}

func TestRemoveNode_RecyclesID(t *testing.T) {
	eng := newEchoEngine(t)
	_, _ = eng.AddNode("echo", nil)
	id2, _ := eng.AddNode("echo", nil)
	_, _ = eng.AddNode("echo", nil)

	require.NoError(t, eng.RemoveNode(id2))

	recycled, err := eng.AddNode("echo", nil)
	require.NoError(t, err)
	assert.Equal(t, id2, recycled)
}

func TestConnect_RejectsTriggerCycle(t *testing.T) {
	eng := newEchoEngine(t)
	a, _ := eng.AddNode("echo", nil)
	b, _ := eng.AddNode("echo", nil)

	_, err := eng.Connect(a, domain.TriggerOutputPort, b, domain.TriggerInputPort)
	require.NoError(t, err)

	_, err = eng.Connect(b, domain.TriggerOutputPort, a, domain.TriggerInputPort)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestEchoScenario_HelloFlowsDownstream(t *testing.T) {
	// Node A (echo) with output port text; node B (echo) wired from
	// A.text via a data edge plus a trigger edge. Triggering A must land
	// "hello" in B's field before B runs, and B must complete with the
	// same output.
	eng := newEchoEngine(t)

	a, err := eng.AddNode("echo", map[string]string{"text": "hello"})
	require.NoError(t, err)
	b, err := eng.AddNode("echo", nil)
	require.NoError(t, err)

	_, err = eng.Connect(a, "text", b, "text")
	require.NoError(t, err)
	_, err = eng.Connect(a, domain.TriggerOutputPort, b, domain.TriggerInputPort)
	require.NoError(t, err)

	require.NoError(t, eng.Execute(context.Background(), a, domain.ModeTriggered))
	eng.Quiesce()

	nodeB, ok := eng.Node(b)
	require.True(t, ok)
	assert.Equal(t, "hello", nodeB.Fields["text"])
	assert.Equal(t, "hello", nodeB.Outputs["text"])
	assert.Equal(t, domain.StateCompleted, eng.NodeState(b))
}

func TestSaveLoad_RoundTripResyncsAllocator(t *testing.T) {
	store := memory.NewStore()
	eng := newEchoEngine(t, weft.WithStore(store))

	a, _ := eng.AddNode("echo", map[string]string{"text": "persisted"})
	b, _ := eng.AddNode("echo", nil)
	_, err := eng.Connect(a, "text", b, "text")
	require.NoError(t, err)
	eng.SetViewport(domain.Viewport{X: 3, Y: 4, Zoom: 2})

	ctx := context.Background()
	require.NoError(t, eng.Save(ctx, "demo"))

	// A fresh engine loads the document; the allocator must never hand
	// out an id that came in with the file.
	eng2 := newEchoEngine(t, weft.WithStore(store))
	require.NoError(t, eng2.Load(ctx, "demo"))

	assert.Len(t, eng2.Nodes(), 2)
	wf := eng2.Workflow()
	assert.Equal(t, domain.Viewport{X: 3, Y: 4, Zoom: 2}, wf.Viewport)

	fresh, err := eng2.AddNode("echo", nil)
	require.NoError(t, err)
	assert.NotContains(t, []string{a, b}, fresh)

	require.NoError(t, eng2.Execute(ctx, a, domain.ModeManual))
	eng2.Quiesce()
	assert.Equal(t, domain.StateCompleted, eng2.NodeState(a))
}

func TestExecute_CustomProviderReceivesFields(t *testing.T) {
	var got ports.ExecRequest
	provider := ports.ProviderFunc(func(_ context.Context, req ports.ExecRequest) (map[string]string, error) {
		got = req
		return map[string]string{"ok": "yes"}, nil
	})
	eng, err := weft.New(provider)
	require.NoError(t, err)

	id, err := eng.AddNode("custom", map[string]string{"a": "1"})
	require.NoError(t, err)
	require.NoError(t, eng.Execute(context.Background(), id, domain.ModeManual))
	eng.Quiesce()

	assert.Equal(t, id, got.NodeID)
	assert.Equal(t, "custom", got.Kind)
	assert.Equal(t, "1", got.Fields["a"])
}
