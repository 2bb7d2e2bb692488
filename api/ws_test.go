package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

func dialWS(t *testing.T, server *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + session
	ws, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestWebSocket_StreamsUpdates(t *testing.T) {
	router, _, _, _ := setupRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ws := dialWS(t, server, "wsroom")
	require.NoError(t, ws.SetDeadline(time.Now().Add(3*time.Second)))

	var first Update
	require.NoError(t, websocket.JSON.Receive(ws, &first))
	assert.Equal(t, structs.PhaseRunning, first.State.Phase)
	assert.Equal(t, 4, first.State.Pos.X)

	require.NoError(t, websocket.Message.Send(ws, "right"))

	for {
		var update Update
		require.NoError(t, websocket.JSON.Receive(ws, &update))
		if update.State.Pos.X == 5 {
			assert.Contains(t, update.Events, structs.EventMove)
			return
		}
	}
}

func TestWebSocket_RejectsInvalidSession(t *testing.T) {
	router, _, _, _ := setupRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ws := dialWS(t, server, "bad.id")
	require.NoError(t, ws.SetDeadline(time.Now().Add(3*time.Second)))

	var body map[string]string
	require.NoError(t, websocket.JSON.Receive(ws, &body))
	assert.Equal(t, "Invalid session id", body["error"])
}
