package memory

import (
	"context"
	"sync"

	"github.com/weftlabs/weft/pkg/domain"
)

// Store implements ports.WorkflowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Workflow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Workflow),
	}
}

// Save persists the workflow in memory.
func (s *Store) Save(ctx context.Context, workflowID string, wf *domain.Workflow) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := wf.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[workflowID] = copied
	return nil
}

// Load retrieves the workflow from memory.
func (s *Store) Load(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.data[workflowID]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return wf.Clone(), nil
}

// Delete removes the workflow.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workflowID)
	return nil
}

// List returns stored workflow IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
