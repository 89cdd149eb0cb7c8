// Package middleware provides composable wrappers around a WorkflowStore:
// encryption at rest and field redaction. Middlewares see only the store
// interface, so they compose with any backend.
package middleware

import "github.com/weftlabs/weft/pkg/ports"

// Middleware allows wrapping a WorkflowStore to add behavior.
type Middleware func(ports.WorkflowStore) ports.WorkflowStore

// Chain applies middlewares so the first listed is outermost.
func Chain(store ports.WorkflowStore, mws ...Middleware) ports.WorkflowStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
