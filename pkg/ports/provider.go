package ports

import "context"

// ExecRequest carries everything a provider gets to see about a node.
type ExecRequest struct {
	NodeID string
	Kind   string

	// Fields is a copy of the node's input values at execution time.
	// Mutating it has no effect on the graph.
	Fields map[string]string
}

// ActionProvider performs the real unit of work for a node kind.
// The engine is agnostic to what a kind does: it hands over the node's
// fields and takes back output-port values or an error. A call may
// suspend for arbitrary wall-clock time (I/O, network, subprocesses) and
// runs concurrently with other nodes' calls.
type ActionProvider interface {
	Execute(ctx context.Context, req ExecRequest) (map[string]string, error)
}

// ProviderFunc adapts a function to the ActionProvider interface.
type ProviderFunc func(ctx context.Context, req ExecRequest) (map[string]string, error)

// Execute implements ActionProvider.
func (f ProviderFunc) Execute(ctx context.Context, req ExecRequest) (map[string]string, error) {
	return f(ctx, req)
}
