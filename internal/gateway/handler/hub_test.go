package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturelens/internal/workflow"
)

func dialHub(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(httpHandlerFunc(hub))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/runs" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func httpHandlerFunc(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/runs", hub.HandleWS)
	return mux
}

func TestHub_StreamsEvents(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "")

	// Give the server a moment to register the subscriber.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Emit(workflow.Event{RunID: "run-1", Type: workflow.EventStageStarted, Stage: "extract_concepts"})

	var got workflow.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, workflow.EventStageStarted, got.Type)
}

func TestHub_FiltersByRunID(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "?run_id=run-2")

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Emit(workflow.Event{RunID: "run-1", Type: workflow.EventStageStarted})
	hub.Emit(workflow.Event{RunID: "run-2", Type: workflow.EventRunCompleted})

	var got workflow.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "run-2", got.RunID)
}

func TestHub_EmitWithoutSubscribersIsSafe(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Emit(workflow.Event{RunID: "run-1", Type: workflow.EventRunErrored})
	})
}
