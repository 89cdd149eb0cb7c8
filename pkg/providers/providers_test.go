package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/registry"
)

func execReq(kind string, fields map[string]string) ports.ExecRequest {
	return ports.ExecRequest{NodeID: "1", Kind: kind, Fields: fields}
}

func TestMux_RoutesByKind(t *testing.T) {
	m := NewMux()
	m.Handle("custom", ports.ProviderFunc(func(_ context.Context, _ ports.ExecRequest) (map[string]string, error) {
		return map[string]string{"ok": "1"}, nil
	}))

	out, err := m.Execute(context.Background(), execReq("custom", nil))
	require.NoError(t, err)
	assert.Equal(t, "1", out["ok"])

	_, err = m.Execute(context.Background(), execReq("unknown", nil))
	assert.Error(t, err)
}

func TestDefaultRegistry_SpecsAreConsistent(t *testing.T) {
	reg := DefaultRegistry()
	for _, kind := range reg.Kinds() {
		spec, ok := reg.Lookup(kind)
		require.True(t, ok)
		assert.NoError(t, registry.Validate(spec), "kind %s", kind)
	}

	chat, ok := reg.Lookup("chat-relay")
	require.True(t, ok)
	assert.True(t, chat.PropagateOnError)
}

func TestEcho(t *testing.T) {
	out, err := Echo(context.Background(), execReq("echo", map[string]string{"text": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "hi", out["text"])
}

func TestTextMerger(t *testing.T) {
	tests := []struct {
		name               string
		text1, text2, sep  string
		want               string
	}{
		{"both present", "a", "b", "-", "a-b"},
		{"first empty", "", "b", "-", "b"},
		{"second empty", "a", "", "-", "a"},
		{"both empty", "", "", "-", ""},
		{"empty separator", "a", "b", "", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := TextMerger(context.Background(), execReq("text-merger", map[string]string{
				"text1": tt.text1, "text2": tt.text2, "separator": tt.sep,
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out["merged_text"])
		})
	}
}

func TestFileCreator_WritesFileAndParents(t *testing.T) {
	dir := t.TempDir()
	out, err := FileCreator(context.Background(), execReq("file-creator", map[string]string{
		"file_path":    filepath.Join(dir, "nested", "deeper"),
		"file_name":    "note.txt",
		"file_content": "hello",
	}))
	require.NoError(t, err)

	data, err := os.ReadFile(out["file_path"])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFileCreator_RejectsEmptyName(t *testing.T) {
	_, err := FileCreator(context.Background(), execReq("file-creator", map[string]string{
		"file_name": "   ",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMPTY_FILENAME")
}

func TestTextFileEditor_OverwriteAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	out, err := TextFileEditor(context.Background(), execReq("text-file-editor", map[string]string{
		"file_path": path, "content": "one",
	}))
	require.NoError(t, err)
	assert.Equal(t, "3", out["size"])

	_, err = TextFileEditor(context.Background(), execReq("text-file-editor", map[string]string{
		"file_path": path, "content": "two", "mode": "append",
	}))
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "onetwo", string(data))
}

func TestTextFileEditor_UnknownMode(t *testing.T) {
	_, err := TextFileEditor(context.Background(), execReq("text-file-editor", map[string]string{
		"file_path": filepath.Join(t.TempDir(), "x"), "mode": "sideways",
	}))
	assert.Error(t, err)
}

func TestShell_CapturesStdout(t *testing.T) {
	out, err := Shell(context.Background(), execReq("shell", map[string]string{
		"command": "echo weft",
	}))
	require.NoError(t, err)
	assert.Equal(t, "weft\n", out["stdout"])
	assert.Equal(t, "0", out["status"])
}

func TestShell_BlocksDangerousCommands(t *testing.T) {
	_, err := Shell(context.Background(), execReq("shell", map[string]string{
		"command": "rm -rf /",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangerous command blocked")
}

func TestShell_StderrOnlyIsFailure(t *testing.T) {
	_, err := Shell(context.Background(), execReq("shell", map[string]string{
		"command": "echo oops 1>&2",
	}))
	assert.Error(t, err)
}

func TestShell_RespectsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := Shell(context.Background(), execReq("shell", map[string]string{
		"command": "pwd",
		"cwd":     dir,
	}))
	require.NoError(t, err)
	assert.Contains(t, out["stdout"], filepath.Base(dir))
}
