package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/adapters/memory"
	"github.com/weftlabs/weft/pkg/domain"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func sampleWorkflow() *domain.Workflow {
	return &domain.Workflow{
		Nodes: []domain.Node{
			{ID: "1", Kind: "shell", Fields: map[string]string{
				"command": "echo hi",
				"api_key": "s3cret",
			}},
		},
		Viewport: domain.Viewport{Zoom: 1},
	}
}

func TestEncryption_RoundTrip(t *testing.T) {
	inner := memory.NewStore()
	store := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wf", sampleWorkflow()))

	// The backend sees only the opaque envelope.
	raw, err := inner.Load(ctx, "wf")
	require.NoError(t, err)
	require.Len(t, raw.Nodes, 1)
	assert.Equal(t, "__encrypted__", raw.Nodes[0].Kind)
	data, _ := json.Marshal(raw)
	assert.NotContains(t, string(data), "echo hi")

	loaded, err := store.Load(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", loaded.Nodes[0].Fields["command"])
	assert.Equal(t, domain.Viewport{Zoom: 1}, loaded.Viewport)
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	writer := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, writer.Save(ctx, "wf", sampleWorkflow()))

	reader := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(2)}))
	_, err := reader.Load(ctx, "wf")
	assert.Error(t, err)
}

func TestEncryption_KeyRotationFallback(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()

	oldStore := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	require.NoError(t, oldStore.Save(ctx, "wf", sampleWorkflow()))

	rotated := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{
		ActiveKey:    testKey(2),
		FallbackKeys: [][]byte{testKey(1)},
	}))
	loaded, err := rotated.Load(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "echo hi", loaded.Nodes[0].Fields["command"])
}

func TestEncryption_RejectsPlainDocument(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "plain", sampleWorkflow()))

	store := Chain(inner, NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}))
	_, err := store.Load(ctx, "plain")
	assert.Error(t, err)
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	assert.Panics(t, func() {
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: []byte("short")})
	})
}

func TestRedaction_MasksMatchingFields(t *testing.T) {
	inner := memory.NewStore()
	store := Chain(inner, NewRedactionMiddleware([]string{"(?i)key", "password"}))
	ctx := context.Background()

	wf := sampleWorkflow()
	require.NoError(t, store.Save(ctx, "wf", wf))

	loaded, err := store.Load(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Nodes[0].Fields["api_key"])
	assert.Equal(t, "echo hi", loaded.Nodes[0].Fields["command"])

	// The engine's in-memory document is untouched.
	assert.Equal(t, "s3cret", wf.Nodes[0].Fields["api_key"])
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	inner := memory.NewStore()
	// Redaction must run before encryption so secrets never reach the
	// ciphertext either.
	store := Chain(inner,
		NewRedactionMiddleware([]string{"api_key"}),
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "wf", sampleWorkflow()))
	loaded, err := store.Load(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Nodes[0].Fields["api_key"])
}
