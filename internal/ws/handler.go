// Package ws is the transport-accept layer: it upgrades inbound HTTP
// connections to WebSocket, registers a client with the chat manager, and
// drives the connection's inbound dispatch loop.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/roomhub/internal/engine"
	"github.com/rickgao/roomhub/internal/protocol"
)

const (
	// maxMessageSize bounds one inbound frame.
	maxMessageSize = 64 * 1024

	defaultWriteTimeout = 10 * time.Second
)

// Handler upgrades connections and bridges them into the engine.
type Handler struct {
	manager      *engine.Manager
	logger       *slog.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewHandler creates the /ws handler.
func NewHandler(manager *engine.Manager, writeTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Handler{
		manager:      manager,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The chat layer does its own (non-)authorization; any
			// origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	client := h.manager.CreateClient(&connSink{conn: conn, timeout: h.writeTimeout})
	defer h.manager.RemoveClient(client.ID())

	client.Send(protocol.ClientJoinFrame(client.ID()))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Transport failure or peer close: this connection's task
			// ends and the deferred removal cascades the cleanup.
			h.logger.Debug("connection closed", "client_id", client.ID(), "error", err)
			return
		}

		cmd, err := protocol.ParseCommand(data)
		if err != nil {
			// Malformed payloads are dropped; the connection stays open.
			h.logger.Warn("malformed message dropped", "client_id", client.ID(), "error", err)
			continue
		}
		client.Exec(cmd)
	}
}

// connSink adapts a websocket connection to the engine's Sink. The engine
// serializes writes; the sink only enforces the per-write deadline.
type connSink struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (s *connSink) WriteMessage(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
