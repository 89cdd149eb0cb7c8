// Package file implements a filesystem-backed workflow store. Each
// workflow is one pretty-printed JSON document named <id>.flow.json,
// readable and diffable outside the engine.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weftlabs/weft/pkg/domain"
)

// Extension is appended to workflow IDs to form file names.
const Extension = ".flow.json"

// Store implements ports.WorkflowStore using the local filesystem.
type Store struct {
	BasePath string
}

// NewStore creates a filesystem store rooted at basePath.
// If basePath is empty, it defaults to ".weft/workflows".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".weft", "workflows")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(workflowID string) string {
	return filepath.Join(s.BasePath, workflowID+Extension)
}

// Save persists the workflow to a JSON file.
func (s *Store) Save(ctx context.Context, workflowID string, wf *domain.Workflow) error {
	if workflowID == "" {
		return fmt.Errorf("workflowID cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure workflow directory: %w", err)
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	if err := os.WriteFile(s.path(workflowID), data, 0644); err != nil {
		return fmt.Errorf("failed to write workflow file: %w", err)
	}

	return nil
}

// Load retrieves the workflow from a JSON file.
func (s *Store) Load(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	if workflowID == "" {
		return nil, fmt.Errorf("workflowID cannot be empty")
	}

	data, err := os.ReadFile(s.path(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &wf, nil
}

// Delete removes the workflow file.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	if workflowID == "" {
		return fmt.Errorf("workflowID cannot be empty")
	}

	err := os.Remove(s.path(workflowID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workflow file: %w", err)
	}

	return nil
}

// List returns the IDs of all stored workflows.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, Extension) {
			ids = append(ids, strings.TrimSuffix(name, Extension))
		}
	}

	return ids, nil
}
