package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/domain"
)

// RunWorkflowStoreContract runs a suite of tests verifying that a
// WorkflowStore implementation adheres to the interface contract.
func RunWorkflowStoreContract(t *testing.T, store WorkflowStore) {
	ctx := context.Background()
	workflowID := "contract-test-" + time.Now().Format("20060102150405")

	sample := &domain.Workflow{
		Nodes: []domain.Node{
			{ID: "1", Kind: "start"},
			{ID: "2", Kind: "echo", Fields: map[string]string{"text": "hi"}},
		},
		Edges: []domain.Edge{
			{ID: "e1", SourceNode: "1", SourcePort: domain.TriggerOutputPort, TargetNode: "2", TargetPort: domain.TriggerInputPort},
		},
		Viewport: domain.Viewport{X: 10, Y: -4, Zoom: 1.5},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, workflowID, sample)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "echo", loaded.Nodes[1].Kind)
		assert.Equal(t, "hi", loaded.Nodes[1].Fields["text"])
		require.Len(t, loaded.Edges, 1)
		assert.True(t, loaded.Edges[0].IsTrigger())
		assert.Equal(t, sample.Viewport, loaded.Viewport)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, workflowID, sample))
		require.NoError(t, store.Delete(ctx, workflowID))

		_, err := store.Load(ctx, workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound, "Load after Delete should return ErrWorkflowNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workflowID + "-1"
		id2 := workflowID + "-2"
		_ = store.Save(ctx, id1, sample)
		_ = store.Save(ctx, id2, sample)
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
