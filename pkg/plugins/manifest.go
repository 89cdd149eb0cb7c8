// Package plugins loads dynamic node kinds: a manifest.json describing
// the kind plus a callable implementing it. The engine never executes
// foreign code itself; a plugin is a plain Go function boundary, and how
// its body is interpreted (embedded scripting, subprocess, RPC) is the
// host's choice.
package plugins

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/weftlabs/weft/pkg/registry"
)

// Port declares one named plugin port.
type Port struct {
	ID    string `mapstructure:"id"`
	Label string `mapstructure:"label"`
}

// Manifest describes a plugin-backed node kind.
type Manifest struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
	Color    string `mapstructure:"color"`
	Inputs   []Port `mapstructure:"inputs"`
	Outputs  []Port `mapstructure:"outputs"`

	// Required lists input ids that must be filled before execution.
	Required []string `mapstructure:"required"`

	// PropagateOnError opts the kind into error propagation.
	PropagateOnError bool `mapstructure:"propagateOnError"`
}

// ParseManifest decodes a manifest from raw JSON. Decoding is tolerant:
// unknown keys are ignored so older engines can read newer manifests.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %w", err)
	}

	var m Manifest
	if err := mapstructure.Decode(raw, &m); err != nil {
		return nil, fmt.Errorf("manifest has invalid shape: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest is missing required key 'id'")
	}
	if m.Name == "" {
		m.Name = m.ID
	}
	return &m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// KindSpec converts the manifest into a registry entry.
func (m *Manifest) KindSpec() registry.KindSpec {
	spec := registry.KindSpec{
		Kind:             m.ID,
		Name:             m.Name,
		Category:         m.Category,
		Color:            m.Color,
		Required:         m.Required,
		PropagateOnError: m.PropagateOnError,
	}
	for _, p := range m.Inputs {
		spec.Inputs = append(spec.Inputs, registry.PortSpec{ID: p.ID, Label: p.Label})
	}
	for _, p := range m.Outputs {
		spec.Outputs = append(spec.Outputs, registry.PortSpec{ID: p.ID, Label: p.Label})
	}
	return spec
}
