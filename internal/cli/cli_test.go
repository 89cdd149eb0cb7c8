package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/logging"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/providers"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.PluginsDir = filepath.Join(t.TempDir(), "plugins")
	return cfg
}

func writeWorkflow(t *testing.T, wf *domain.Workflow) string {
	t.Helper()
	data, err := json.Marshal(wf)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "demo.flow.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBuildEngine_MemoryBackend(t *testing.T) {
	engine, cleanup, err := BuildEngine(testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	id, err := engine.AddNode("echo", map[string]string{"text": "x"})
	require.NoError(t, err)
	require.NoError(t, engine.Save(context.Background(), "smoke"))
	require.NoError(t, engine.RemoveNode(id))
	require.NoError(t, engine.Load(context.Background(), "smoke"))

	node, ok := engine.Node(id)
	require.True(t, ok)
	assert.Equal(t, "echo", node.Kind)
}

func TestBuildEngine_RegistersPluginKinds(t *testing.T) {
	cfg := testConfig(t)
	pluginDir := filepath.Join(cfg.PluginsDir, "weather")
	require.NoError(t, os.MkdirAll(pluginDir, 0o755))
	manifest := `{"id": "weather", "name": "Weather", "inputs": [{"id": "city", "label": "City"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "manifest.json"), []byte(manifest), 0o644))

	engine, cleanup, err := BuildEngine(cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	spec, ok := engine.Registry().Lookup("weather")
	require.True(t, ok)
	assert.Equal(t, "Weather", spec.Name)
}

func TestBuildEngine_RejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "carrier-pigeon"
	_, _, err := BuildEngine(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestStartNodes(t *testing.T) {
	wf := &domain.Workflow{
		Nodes: []domain.Node{{ID: "1", Kind: "start"}, {ID: "2", Kind: "echo"}},
	}
	assert.Equal(t, []string{"1"}, StartNodes(wf))

	// Without a start kind, roots are the nodes nothing triggers.
	wf = &domain.Workflow{
		Nodes: []domain.Node{{ID: "1", Kind: "echo"}, {ID: "2", Kind: "echo"}},
		Edges: []domain.Edge{
			{ID: "t", SourceNode: "1", SourcePort: domain.TriggerOutputPort, TargetNode: "2", TargetPort: domain.TriggerInputPort},
		},
	}
	assert.Equal(t, []string{"1"}, StartNodes(wf))
}

func TestRunWorkflow_ExecutesCascade(t *testing.T) {
	engine, cleanup, err := BuildEngine(testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	path := writeWorkflow(t, &domain.Workflow{
		Nodes: []domain.Node{
			{ID: "1", Kind: "start"},
			{ID: "2", Kind: "echo"},
		},
		Edges: []domain.Edge{
			{ID: "t", SourceNode: "1", SourcePort: domain.TriggerOutputPort, TargetNode: "2", TargetPort: domain.TriggerInputPort},
			{ID: "d", SourceNode: "1", SourcePort: "message", TargetNode: "2", TargetPort: "text"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, RunWorkflow(context.Background(), engine, path, "", &buf))

	node, ok := engine.Node("2")
	require.True(t, ok)
	assert.Equal(t, "Workflow started successfully", node.Outputs["text"])
	assert.Contains(t, buf.String(), "node 2 (echo)")
}

func TestRunWorkflow_MissingFile(t *testing.T) {
	engine, cleanup, err := BuildEngine(testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	err = RunWorkflow(context.Background(), engine, filepath.Join(t.TempDir(), "nope.flow.json"), "", os.Stdout)
	assert.Error(t, err)
}

func TestValidateWorkflow(t *testing.T) {
	reg := providers.DefaultRegistry()

	wf := &domain.Workflow{
		Nodes: []domain.Node{
			{ID: "1", Kind: "start"},
			{ID: "1", Kind: "echo"},
			{ID: "2", Kind: "mystery"},
			{ID: "3", Kind: "shell"},
		},
		Edges: []domain.Edge{
			{ID: "e", SourceNode: "1", SourcePort: "x", TargetNode: "404", TargetPort: "y"},
		},
	}

	problems := ValidateWorkflow(wf, reg)
	assert.Len(t, problems, 4)
	assert.Contains(t, problems[0], "duplicate node id")

	clean := &domain.Workflow{Nodes: []domain.Node{{ID: "1", Kind: "start"}}}
	assert.Empty(t, ValidateWorkflow(clean, reg))
}
