package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"
)

// WebSocketHandler 推送会话的状态更新，并把客户端发来的文本消息当作指令。
func WebSocketHandler(hub *Hub) http.Handler {
	return websocket.Server{
		// IM 客户端和网页都可能连接，不校验 Origin
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   func(ws *websocket.Conn) { serveWS(hub, ws) },
	}
}

func serveWS(hub *Hub, ws *websocket.Conn) {
	defer ws.Close()

	id := ws.Request().URL.Query().Get("session")
	if !validSessionID(id) {
		websocket.JSON.Send(ws, gin.H{"error": "Invalid session id"})
		return
	}

	game := hub.Get(id)
	updates, unsubscribe := game.Subscribe()
	defer unsubscribe()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var msg string
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				return
			}
			cmds, err := ParseCommands(msg)
			if err != nil {
				continue
			}
			game.Submit(cmds...)
		}
	}()

	if err := websocket.JSON.Send(ws, Update{State: game.Snapshot()}); err != nil {
		return
	}
	for {
		select {
		case <-readerDone:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := websocket.JSON.Send(ws, update); err != nil {
				return
			}
		}
	}
}
