// Package providers ships the built-in action providers and their kind
// specs: the small library of node kinds every Weft host gets for free.
// Hosts with their own backends can ignore it entirely and hand the
// engine a custom ActionProvider.
package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
)

// Mux routes execution requests to a provider per node kind.
type Mux struct {
	mu     sync.RWMutex
	routes map[string]ports.ActionProvider
}

// NewMux creates an empty routing provider.
func NewMux() *Mux {
	return &Mux{routes: make(map[string]ports.ActionProvider)}
}

// Handle registers a provider for a kind, overwriting any previous one.
func (m *Mux) Handle(kind string, p ports.ActionProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[kind] = p
}

// Execute implements ports.ActionProvider.
func (m *Mux) Execute(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	m.mu.RLock()
	p, ok := m.routes[req.Kind]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered for kind %q", req.Kind)
	}
	return p.Execute(ctx, req)
}

// Builtin returns a Mux with every built-in provider registered.
func Builtin() *Mux {
	m := NewMux()
	m.Handle("start", ports.ProviderFunc(Start))
	m.Handle("echo", ports.ProviderFunc(Echo))
	m.Handle("text-merger", ports.ProviderFunc(TextMerger))
	m.Handle("file-creator", ports.ProviderFunc(FileCreator))
	m.Handle("text-file-editor", ports.ProviderFunc(TextFileEditor))
	m.Handle("shell", ports.ProviderFunc(Shell))
	return m
}

// DefaultRegistry returns the kind registry matching the built-in
// providers, plus the chat-relay spec whose backend is host-provided.
func DefaultRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register(registry.KindSpec{
		Kind: "start", Name: "Start", Category: "flow", Color: "#22c55e",
		Outputs: []registry.PortSpec{{ID: "message", Label: "Message"}},
	})
	reg.Register(registry.KindSpec{
		Kind: "echo", Name: "Echo", Category: "text", Color: "#64748b",
		Inputs:  []registry.PortSpec{{ID: "text", Label: "Text"}},
		Outputs: []registry.PortSpec{{ID: "text", Label: "Text"}},
	})
	reg.Register(registry.KindSpec{
		Kind: "text-merger", Name: "Text Merger", Category: "text", Color: "#a855f7",
		Inputs: []registry.PortSpec{
			{ID: "text1", Label: "Text 1"},
			{ID: "text2", Label: "Text 2"},
			{ID: "separator", Label: "Separator"},
		},
		Outputs: []registry.PortSpec{
			{ID: "merged_text", Label: "Merged Text"},
			{ID: "length", Label: "Length"},
		},
	})
	reg.Register(registry.KindSpec{
		Kind: "file-creator", Name: "File Creator", Category: "file", Color: "#f59e0b",
		Inputs: []registry.PortSpec{
			{ID: "file_path", Label: "Directory"},
			{ID: "file_name", Label: "File Name"},
			{ID: "file_content", Label: "Content"},
		},
		Outputs:  []registry.PortSpec{{ID: "file_path", Label: "Created Path"}},
		Required: []string{"file_name"},
	})
	reg.Register(registry.KindSpec{
		Kind: "text-file-editor", Name: "Text File Editor", Category: "file", Color: "#f97316",
		Inputs: []registry.PortSpec{
			{ID: "file_path", Label: "File Path"},
			{ID: "content", Label: "Content"},
			{ID: "mode", Label: "Mode"},
		},
		Outputs: []registry.PortSpec{
			{ID: "file_path", Label: "File Path"},
			{ID: "size", Label: "Size"},
		},
		Required: []string{"file_path"},
	})
	reg.Register(registry.KindSpec{
		Kind: "shell", Name: "Run Command", Category: "system", Color: "#ef4444",
		Inputs: []registry.PortSpec{
			{ID: "command", Label: "Command"},
			{ID: "cwd", Label: "Working Directory"},
		},
		Outputs: []registry.PortSpec{
			{ID: "stdout", Label: "Stdout"},
			{ID: "stderr", Label: "Stderr"},
			{ID: "status", Label: "Exit Status"},
		},
		Required: []string{"command"},
	})
	// Interactive relay: downstream nodes render its errors, so failures
	// still propagate.
	reg.Register(registry.KindSpec{
		Kind: "chat-relay", Name: "Chat Relay", Category: "interactive", Color: "#3b82f6",
		Inputs:           []registry.PortSpec{{ID: "message", Label: "Message"}},
		Outputs:          []registry.PortSpec{{ID: "reply", Label: "Reply"}},
		PropagateOnError: true,
	})
	return reg
}
