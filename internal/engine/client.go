package engine

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rickgao/roomhub/internal/protocol"
	"github.com/rickgao/roomhub/internal/topic"
)

// Client holds one connection's state: the outbound sink, the set of
// joined rooms, the directory-subscription flag, and the forwarder
// goroutines delivering broadcasts back to the sink.
type Client struct {
	id     uuid.UUID
	engine *Engine

	sinkMu sync.Mutex
	sink   Sink

	roomsMu sync.RWMutex
	rooms   map[uuid.UUID]struct{}

	dirSubscribed       atomic.Bool
	dirForwarderRunning atomic.Bool
}

func newClient(engine *Engine, sink Sink) *Client {
	return &Client{
		id:     uuid.New(),
		engine: engine,
		sink:   sink,
		rooms:  make(map[uuid.UUID]struct{}),
	}
}

// ID returns the client's immutable id.
func (c *Client) ID() uuid.UUID { return c.id }

// Send marshals v and writes it to the sink. Writes are serialized so
// concurrent forwarders cannot interleave frames. Failure is logged and
// the client is kept; delivery is best-effort and a dead connection is
// reaped by the transport's disconnect path.
func (c *Client) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.engine.logger.Warn("marshal outbound message", "client_id", c.id, "error", err)
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	c.sinkMu.Lock()
	defer c.sinkMu.Unlock()
	if err := c.sink.WriteMessage(data); err != nil {
		c.engine.logger.Warn("write to client failed", "client_id", c.id, "error", err)
	}
}

// Exec dispatches one inbound command. Unknown actions fall through to
// the explicit ignored case.
func (c *Client) Exec(cmd protocol.Command) {
	switch cmd.Action {
	case protocol.ActionRoomCreate:
		room := c.engine.CreateRoom(c.id)
		c.JoinRoom(room.ID())
	case protocol.ActionRoomsSubscribe:
		c.SubscribeRooms()
		c.sendRoomsList()
	case protocol.ActionRoomsUnsubscribe:
		c.UnsubscribeRooms()
	case protocol.ActionRoomsList:
		c.sendRoomsList()
	case protocol.ActionRoomJoin:
		c.JoinRoom(cmd.RoomID)
	case protocol.ActionRoomClientsList:
		c.sendRoomClientsList(cmd.RoomID)
	case protocol.ActionBroadcast, protocol.ActionRoomExit:
		if room := c.engine.Room(cmd.RoomID); room != nil {
			room.Exec(cmd, c.id)
		}
	default:
		// Ignored. No error event goes back to the sender.
	}
}

// JoinRoom adds the client to the named room, spawns the room forwarder,
// and announces the join to the room. An unknown room id is a silent
// no-op; no event is emitted to anyone.
func (c *Client) JoinRoom(roomID uuid.UUID) {
	room := c.engine.Room(roomID)
	if room == nil {
		c.engine.logger.Debug("join of unknown room ignored",
			"client_id", c.id, "room_id", roomID)
		return
	}
	if c.engine.Client(c.id) == nil {
		// Already removed from the registry; too late to join anything.
		return
	}

	room.AddClient(c.id)
	c.roomsMu.Lock()
	c.rooms[roomID] = struct{}{}
	c.roomsMu.Unlock()

	// Subscribe before announcing so the joiner's own forwarder observes
	// the ROOM_JOIN event.
	sub := room.Listener()
	go c.runRoomForwarder(roomID, sub)

	room.publishEvent(protocol.EventRoomJoin, protocol.RoomJoinFrame(roomID, c.id), c.id)
	c.engine.logger.Info("client joined room", "client_id", c.id, "room_id", roomID)
}

// SubscribeRooms turns on directory delivery. Only one directory
// forwarder runs per client: repeated subscribes while one is running do
// not spawn another.
func (c *Client) SubscribeRooms() {
	c.dirSubscribed.Store(true)
	if !c.dirForwarderRunning.CompareAndSwap(false, true) {
		return
	}
	sub := c.engine.DirectoryListener()
	go c.runDirectoryForwarder(sub)
}

// UnsubscribeRooms turns off directory delivery. The running forwarder
// observes the cleared flag on its next delivery and exits.
func (c *Client) UnsubscribeRooms() {
	c.dirSubscribed.Store(false)
}

// runRoomForwarder relays one room's topic to this client. It exits on:
// the client's own ROOM_EXIT event, loss of room membership, the client
// becoming unresolvable, or the subscription ending (lag or close). A
// sender's own non-event broadcasts are skipped, not delivered.
func (c *Client) runRoomForwarder(roomID uuid.UUID, sub *topic.Subscription[protocol.RoomMessage]) {
	defer sub.Close()
	defer c.engine.logger.Debug("room forwarder exit", "client_id", c.id, "room_id", roomID)

	for {
		msg, err := sub.Recv(context.Background())
		if err != nil {
			return
		}

		if msg.Event == protocol.EventRoomExit && msg.Sender == c.id {
			return
		}

		room := c.engine.Room(roomID)
		if room == nil || !room.HasClient(c.id) {
			return
		}

		target := c.engine.Client(c.id)
		if target == nil {
			return
		}

		if msg.Event == "" && msg.Sender == c.id {
			continue
		}
		target.sendRaw(msg.Payload)
	}
}

// runDirectoryForwarder relays directory frames to this client until the
// subscription flag is cleared, the client is unresolvable, or the
// subscription ends.
func (c *Client) runDirectoryForwarder(sub *topic.Subscription[protocol.Frame]) {
	defer c.dirForwarderRunning.Store(false)
	defer sub.Close()
	defer c.engine.logger.Debug("directory forwarder exit", "client_id", c.id)

	for {
		frame, err := sub.Recv(context.Background())
		if err != nil {
			return
		}

		target := c.engine.Client(c.id)
		if target == nil {
			return
		}
		target.Send(frame)

		if !c.dirSubscribed.Load() {
			return
		}
	}
}

func (c *Client) sendRoomsList() {
	c.Send(protocol.RoomsListFrame(c.engine.RoomIDs()))
}

func (c *Client) sendRoomClientsList(roomID uuid.UUID) {
	room := c.engine.Room(roomID)
	if room == nil {
		return
	}
	c.Send(protocol.RoomClientsListFrame(roomID, room.ClientIDs()))
}

// roomIDs snapshots the joined-room set. Entries may be stale for rooms
// the client already left; the cascade in RemoveClient tolerates that.
func (c *Client) roomIDs() []uuid.UUID {
	c.roomsMu.RLock()
	defer c.roomsMu.RUnlock()

	ids := make([]uuid.UUID, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}
