package middleware

import (
	"context"
	"regexp"

	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
)

type redactionMiddleware struct {
	next     ports.WorkflowStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks node field and
// output values whose key matches any of the patterns before they are
// persisted (api keys, tokens, passwords entered into node fields).
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.WorkflowStore) ports.WorkflowStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, workflowID string, wf *domain.Workflow) error {
	// Clone to avoid side effects on the in-memory graph used by the engine.
	cloned := wf.Clone()
	for i := range cloned.Nodes {
		maskMap(cloned.Nodes[i].Fields, m.patterns)
		maskMap(cloned.Nodes[i].Outputs, m.patterns)
	}
	return m.next.Save(ctx, workflowID, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	return m.next.Load(ctx, workflowID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, workflowID string) error {
	return m.next.Delete(ctx, workflowID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]string, patterns []*regexp.Regexp) {
	for k := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}
	}
}
