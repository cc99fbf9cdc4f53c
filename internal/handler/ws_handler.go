package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"worldmon/internal/broadcast"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// wsConn serializes writes: the hub broadcast and the pong reply run on
// different goroutines and gorilla conns allow one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

type WSHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *broadcast.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browser origin policy is handled by the CORS layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleReports registers the connection for report notifications and
// answers liveness pings until the client disconnects.
func (h *WSHandler) HandleReports(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &wsConn{conn: conn}
	h.hub.Register(client)
	slog.Info("websocket client connected", "clients", h.hub.Count())

	defer func() {
		h.hub.Unregister(client)
		conn.Close()
		slog.Info("websocket client disconnected", "clients", h.hub.Count())
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if string(message) == "ping" {
			if err := client.WriteMessage(websocket.TextMessage, []byte("pong")); err != nil {
				return
			}
		}
	}
}
