package engine

import (
	"log/slog"

	"github.com/google/uuid"
)

// Manager is the thin entry point the transport layer composes against.
type Manager struct {
	engine *Engine
	logger *slog.Logger
}

// NewManager wraps an engine.
func NewManager(engine *Engine, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{engine: engine, logger: logger}
}

// CreateClient registers a new client for an accepted connection.
func (m *Manager) CreateClient(sink Sink) *Client {
	return m.engine.CreateClient(sink)
}

// RemoveClient removes a client and cascades into its joined rooms.
func (m *Manager) RemoveClient(id uuid.UUID) {
	m.engine.RemoveClient(id)
}

// Engine exposes the underlying engine for lookups and stats.
func (m *Manager) Engine() *Engine {
	return m.engine
}

// CreateRoom programmatically creates a room for a party of clients. Ids
// that do not resolve to a live client are skipped silently; the last
// resolvable id becomes the creator. The creator joins first so the room
// is never left memberless, then the rest of the party joins. If no id
// resolves, no room is created and nil is returned.
func (m *Manager) CreateRoom(clientIDs []uuid.UUID) *Room {
	var resolved []*Client
	for _, id := range clientIDs {
		client := m.engine.Client(id)
		if client == nil {
			m.logger.Debug("skipping unresolvable party member", "client_id", id)
			continue
		}
		resolved = append(resolved, client)
	}
	if len(resolved) == 0 {
		return nil
	}

	creator := resolved[len(resolved)-1]
	room := m.engine.CreateRoom(creator.ID())

	creator.JoinRoom(room.ID())
	for _, client := range resolved[:len(resolved)-1] {
		client.JoinRoom(room.ID())
	}
	return room
}
