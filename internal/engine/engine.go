package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/roomhub/internal/protocol"
	"github.com/rickgao/roomhub/internal/topic"
)

// Sink is one connection's outbound channel to the remote peer. The
// transport layer provides an implementation per accepted connection.
type Sink interface {
	// WriteMessage writes one complete message. Implementations do not
	// need to be safe for concurrent use; the Client serializes writes.
	WriteMessage(data []byte) error
}

// Config holds engine tuning knobs.
type Config struct {
	// RoomTopicDepth is the per-subscriber buffer of each room's topic.
	RoomTopicDepth int

	// DirectoryTopicDepth is the per-subscriber buffer of the directory
	// topic. At the default of 1 a lagging subscriber effectively sees
	// only the latest event before being cut off.
	DirectoryTopicDepth int
}

// DefaultConfig returns the depths the engine was designed around.
func DefaultConfig() Config {
	return Config{
		RoomTopicDepth:      10,
		DirectoryTopicDepth: 1,
	}
}

// Stats is a point-in-time snapshot of registry sizes.
type Stats struct {
	Clients int
	Rooms   int
}

// Engine is the single source of truth for which clients and rooms exist,
// and the publisher of directory events. One instance lives for the whole
// process; it has no teardown path.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	clientsMu sync.RWMutex
	clients   map[uuid.UUID]*Client

	roomsMu sync.RWMutex
	rooms   map[uuid.UUID]*Room

	directory *topic.Topic[protocol.Frame]
}

// New creates an engine.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RoomTopicDepth < 1 {
		cfg.RoomTopicDepth = DefaultConfig().RoomTopicDepth
	}
	if cfg.DirectoryTopicDepth < 1 {
		cfg.DirectoryTopicDepth = DefaultConfig().DirectoryTopicDepth
	}

	return &Engine{
		cfg:       cfg,
		logger:    logger,
		clients:   make(map[uuid.UUID]*Client),
		rooms:     make(map[uuid.UUID]*Room),
		directory: topic.New[protocol.Frame](cfg.DirectoryTopicDepth),
	}
}

// Client resolves a client id. Nil means the client does not exist, which
// is a routine outcome (disconnected mid-operation), not an error.
func (e *Engine) Client(id uuid.UUID) *Client {
	e.clientsMu.RLock()
	defer e.clientsMu.RUnlock()
	return e.clients[id]
}

// Room resolves a room id. Nil means the room does not exist.
func (e *Engine) Room(id uuid.UUID) *Room {
	e.roomsMu.RLock()
	defer e.roomsMu.RUnlock()
	return e.rooms[id]
}

// CreateClient registers a new client wrapping the given sink and returns
// it. Every connection gets a fresh client; clients are never reused.
func (e *Engine) CreateClient(sink Sink) *Client {
	client := newClient(e, sink)

	e.clientsMu.Lock()
	e.clients[client.id] = client
	e.clientsMu.Unlock()

	e.logger.Info("client registered", "client_id", client.id)
	return client
}

// RemoveClient drops the client from the registry and cascades the removal
// into every room the client had joined. Removing an absent client is a
// no-op.
func (e *Engine) RemoveClient(id uuid.UUID) {
	e.clientsMu.Lock()
	client, ok := e.clients[id]
	if !ok {
		e.clientsMu.Unlock()
		return
	}
	delete(e.clients, id)
	e.clientsMu.Unlock()

	// Joined-room ids may be stale; a failed room lookup just means the
	// room is already gone.
	for _, roomID := range client.roomIDs() {
		if room := e.Room(roomID); room != nil {
			room.RemoveClient(id)
		}
	}

	e.logger.Info("client removed", "client_id", id)
}

// CreateRoom creates a room, registers it, and publishes ROOM_CREATION to
// the directory. The creator id is recorded informationally; it is never
// re-validated.
func (e *Engine) CreateRoom(creatorID uuid.UUID) *Room {
	room := newRoom(e, creatorID, e.cfg.RoomTopicDepth)

	e.roomsMu.Lock()
	e.rooms[room.id] = room
	e.roomsMu.Unlock()

	n := e.directory.Publish(protocol.RoomCreationFrame(room.id, creatorID))
	if n == 0 {
		e.logger.Debug("room creation had no directory subscribers", "room_id", room.id)
	}

	e.logger.Info("room created", "room_id", room.id, "creator_id", creatorID)
	return room
}

// roomRemove drops a room from the registry and publishes ROOM_REMOVAL.
// Called by the room itself when its last member leaves; idempotent.
func (e *Engine) roomRemove(id uuid.UUID) {
	e.roomsMu.Lock()
	_, ok := e.rooms[id]
	delete(e.rooms, id)
	e.roomsMu.Unlock()
	if !ok {
		return
	}

	n := e.directory.Publish(protocol.RoomRemovalFrame(id))
	if n == 0 {
		e.logger.Debug("room removal had no directory subscribers", "room_id", id)
	}

	e.logger.Info("room removed", "room_id", id)
}

// DirectoryListener subscribes to directory events. The subscription only
// observes events published after this call; there is no replay.
func (e *Engine) DirectoryListener() *topic.Subscription[protocol.Frame] {
	return e.directory.Subscribe()
}

// RoomIDs returns a snapshot of all registered room ids.
func (e *Engine) RoomIDs() []uuid.UUID {
	e.roomsMu.RLock()
	defer e.roomsMu.RUnlock()

	ids := make([]uuid.UUID, 0, len(e.rooms))
	for id := range e.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Stats reports current registry sizes.
func (e *Engine) Stats() Stats {
	e.clientsMu.RLock()
	clients := len(e.clients)
	e.clientsMu.RUnlock()

	e.roomsMu.RLock()
	rooms := len(e.rooms)
	e.roomsMu.RUnlock()

	return Stats{Clients: clients, Rooms: rooms}
}
