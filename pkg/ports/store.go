package ports

import (
	"context"

	"github.com/weftlabs/weft/pkg/domain"
)

// WorkflowStore defines the interface for persisting workflow documents.
type WorkflowStore interface {
	// Save persists the workflow under the given ID.
	Save(ctx context.Context, workflowID string, wf *domain.Workflow) error

	// Load retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if it does not exist.
	Load(ctx context.Context, workflowID string) (*domain.Workflow, error)

	// Delete removes a workflow.
	Delete(ctx context.Context, workflowID string) error

	// List returns the IDs of all stored workflows.
	List(ctx context.Context) ([]string, error)
}
