package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChangeEvent is broadcast to every connected /vscode/api/v1/ws client
// whenever an HTTP handler creates, updates, moves, or deletes a task,
// creates a memory, or creates or deletes a project (sent as "system").
// Changes to the diagnostics snapshot are not broadcast.
type ChangeEvent struct {
	Type    string      `json:"type"` // "task", "memory", or "system"
	Payload interface{} `json:"payload"`
}

// Hub fans ChangeEvents out to every connected WebSocket client. Grounded
// on a register/unregister/broadcast channel trio rather than a mutex
// around a client set, so publishers never block on a slow reader.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan ChangeEvent
	logger     *zap.Logger
}

// NewHub creates a Hub. Run must be started in its own goroutine before
// Publish or HandleWS are used.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan ChangeEvent, 256),
		logger:     logger,
	}
}

// Run is the hub's event loop. It returns when stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case event := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteJSON(event); err != nil {
					h.logger.Warn("dropping websocket client after write failure", zap.Error(err))
					delete(h.clients, conn)
					conn.Close()
				}
			}
		case <-stop:
			for conn := range h.clients {
				conn.Close()
			}
			return
		}
	}
}

// Publish queues event for delivery to every connected client. Non-blocking:
// callers on the task/memory mutation path must never stall on a slow
// WebSocket reader.
func (h *Hub) Publish(event ChangeEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("dropping change event, broadcast queue full", zap.String("type", event.Type))
	}
}

// HandleWS upgrades the connection and keeps it alive with a ping ticker
// until the client disconnects or the request context is cancelled.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.register <- conn

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request.Context().Done():
			h.unregister <- conn
			return
		case <-done:
			h.unregister <- conn
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				h.unregister <- conn
				return
			}
		}
	}
}
