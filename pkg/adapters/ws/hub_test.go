package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/logging"
	"github.com/weftlabs/weft/pkg/domain"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logging.NewNop())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(hub.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(Event{Type: domain.EventNodeStart, NodeID: "1", Kind: "echo", State: domain.StateRunning})

	ev := readEvent(t, conn)
	assert.Equal(t, domain.EventNodeStart, ev.Type)
	assert.Equal(t, "1", ev.NodeID)
	assert.Equal(t, domain.StateRunning, ev.State)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestHub_FanOutToMultipleClients(t *testing.T) {
	hub := startHub(t)
	a := dial(t, hub)
	b := dial(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(Event{Type: domain.EventTrigger, NodeID: "1", Targets: []string{"2", "3"}, Tick: 7})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, domain.EventTrigger, ev.Type)
		assert.Equal(t, []string{"2", "3"}, ev.Targets)
		assert.Equal(t, uint64(7), ev.Tick)
	}
}

func TestHub_HooksTranslateLifecycleEvents(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hooks := hub.Hooks()
	hooks.OnNodeFail(context.Background(), &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      domain.EventNodeFail,
		NodeID:    "4",
		Kind:      "shell",
		State:     domain.StateFailed,
		Error:     "command failed",
	})

	ev := readEvent(t, conn)
	assert.Equal(t, domain.EventNodeFail, ev.Type)
	assert.Equal(t, domain.StateFailed, ev.State)
	assert.Equal(t, "command failed", ev.Error)
}

func TestHub_ClientDisconnectIsObserved(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
