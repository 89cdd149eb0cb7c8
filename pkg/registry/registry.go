// Package registry describes node kinds: which input fields they require,
// which ports they expose, and their per-kind execution policies. The
// engine consults it for validation; it never looks inside a provider.
package registry

import (
	"fmt"
	"sync"
)

// PortSpec declares one named port of a kind.
type PortSpec struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// KindSpec describes a node kind.
type KindSpec struct {
	Kind     string     `json:"id"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Color    string     `json:"color,omitempty"`
	Inputs   []PortSpec `json:"inputs,omitempty"`
	Outputs  []PortSpec `json:"outputs,omitempty"`

	// Required lists input fields that must be non-empty before the
	// provider is called.
	Required []string `json:"required,omitempty"`

	// PropagateOnError opts the kind into trigger propagation even when
	// its execution fails, so downstream nodes can observe and render the
	// error. Used by interactive/chat-style kinds; off by default.
	PropagateOnError bool `json:"propagateOnError,omitempty"`
}

// Registry manages the known node kinds. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]KindSpec
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]KindSpec)}
}

// Register adds a kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(spec KindSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[spec.Kind] = spec
}

// Lookup returns the spec for a kind.
func (r *Registry) Lookup(kind string) (KindSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.kinds[kind]
	return spec, ok
}

// Kinds returns the names of all registered kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	return out
}

// MissingFields returns the required fields of the kind that are absent
// or empty in the given field map. Unknown kinds require nothing.
func (r *Registry) MissingFields(kind string, fields map[string]string) []string {
	spec, ok := r.Lookup(kind)
	if !ok {
		return nil
	}
	var missing []string
	for _, f := range spec.Required {
		if fields[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Validate checks that a spec is internally consistent: every required
// field must be a declared input port.
func Validate(spec KindSpec) error {
	if spec.Kind == "" {
		return fmt.Errorf("kind id must not be empty")
	}
	inputs := make(map[string]bool, len(spec.Inputs))
	for _, p := range spec.Inputs {
		inputs[p.ID] = true
	}
	for _, f := range spec.Required {
		if !inputs[f] {
			return fmt.Errorf("kind %s: required field %q is not a declared input", spec.Kind, f)
		}
	}
	return nil
}
