package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/weftlabs/weft/pkg/ports"
)

// Reserved output keys a plugin uses to request a nested action call.
const (
	ActionCommandKey = "actionCommand"
	ActionParamsKey  = "params"
)

// Func is the stable boundary a plugin implements: input values in,
// output values out.
type Func func(inputs map[string]string) (map[string]string, error)

// Provider executes plugin-backed node kinds. When a plugin returns the
// reserved actionCommand/params pair, the call is re-dispatched to the
// delegate provider and the delegate's outputs are merged in.
type Provider struct {
	mu       sync.RWMutex
	funcs    map[string]Func
	delegate ports.ActionProvider
}

// NewProvider creates a plugin provider. The delegate handles nested
// action requests and may be nil to disallow them.
func NewProvider(delegate ports.ActionProvider) *Provider {
	return &Provider{
		funcs:    make(map[string]Func),
		delegate: delegate,
	}
}

// Register binds a callable to a plugin kind.
func (p *Provider) Register(kind string, fn Func) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.funcs[kind] = fn
}

// Kinds returns the registered plugin kinds.
func (p *Provider) Kinds() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.funcs))
	for k := range p.funcs {
		out = append(out, k)
	}
	return out
}

// Execute implements ports.ActionProvider.
func (p *Provider) Execute(ctx context.Context, req ports.ExecRequest) (map[string]string, error) {
	p.mu.RLock()
	fn, ok := p.funcs[req.Kind]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no plugin registered for kind %q", req.Kind)
	}

	outputs, err := fn(req.Fields)
	if err != nil {
		return nil, err
	}

	command, wantsAction := outputs[ActionCommandKey]
	if !wantsAction {
		return outputs, nil
	}
	if p.delegate == nil {
		return nil, fmt.Errorf("plugin %q requested action %q but nested actions are disabled", req.Kind, command)
	}

	params := map[string]string{}
	if raw, ok := outputs[ActionParamsKey]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("plugin %q produced invalid action params: %w", req.Kind, err)
		}
	}

	nested, err := p.delegate.Execute(ctx, ports.ExecRequest{
		NodeID: req.NodeID,
		Kind:   command,
		Fields: params,
	})
	if err != nil {
		return nil, fmt.Errorf("nested action %q failed: %w", command, err)
	}

	merged := make(map[string]string, len(outputs)+len(nested))
	for k, v := range outputs {
		if k == ActionCommandKey || k == ActionParamsKey {
			continue
		}
		merged[k] = v
	}
	for k, v := range nested {
		merged[k] = v
	}
	return merged, nil
}
