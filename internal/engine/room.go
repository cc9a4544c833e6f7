package engine

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/roomhub/internal/protocol"
	"github.com/rickgao/roomhub/internal/topic"
)

// Room owns one chat room's membership set and broadcast topic. A room
// with zero members removes itself from the engine registry; a room with
// at least one member is always resolvable by id.
type Room struct {
	id        uuid.UUID
	creatorID uuid.UUID
	engine    *Engine
	topic     *topic.Topic[protocol.RoomMessage]

	mu      sync.RWMutex
	members map[uuid.UUID]struct{}
}

func newRoom(engine *Engine, creatorID uuid.UUID, depth int) *Room {
	return &Room{
		id:        uuid.New(),
		creatorID: creatorID,
		engine:    engine,
		topic:     topic.New[protocol.RoomMessage](depth),
		members:   make(map[uuid.UUID]struct{}),
	}
}

// ID returns the room's immutable id.
func (r *Room) ID() uuid.UUID { return r.id }

// CreatorID returns the client id recorded at creation. Informational
// only; the creator may have left or disconnected since.
func (r *Room) CreatorID() uuid.UUID { return r.creatorID }

// AddClient inserts a client id into the member set.
func (r *Room) AddClient(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[id] = struct{}{}
}

// HasClient reports whether the id is currently a member.
func (r *Room) HasClient(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

// ClientIDs returns a snapshot of the member set. Membership does not
// guarantee liveness of the listed ids; staleness is resolved lazily by
// the forwarders.
func (r *Room) ClientIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// RemoveClient drops a member. The last member leaving unregisters the
// room. The ROOM_EXIT event is published to the topic regardless, so
// in-flight forwarders for this client observe their exit signal even
// when the room is already unregistered. Removing a non-member is a no-op.
func (r *Room) RemoveClient(id uuid.UUID) {
	r.mu.Lock()
	if _, ok := r.members[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.members, id)
	empty := len(r.members) == 0
	r.mu.Unlock()

	if empty {
		r.engine.roomRemove(r.id)
	}

	r.publishEvent(protocol.EventRoomExit, protocol.RoomExitFrame(id, r.id), id)
	r.engine.logger.Debug("room member left", "room_id", r.id, "client_id", id)
}

// Listener subscribes to the room's topic.
func (r *Room) Listener() *topic.Subscription[protocol.RoomMessage] {
	return r.topic.Subscribe()
}

// Exec applies one room-targeted command on behalf of sender. BROADCAST
// publishes the command's payload tagged with the sender; ROOM_EXIT
// removes the sender from membership. Anything else is a no-op.
func (r *Room) Exec(cmd protocol.Command, sender uuid.UUID) {
	switch cmd.Action {
	case protocol.ActionBroadcast:
		r.broadcast(cmd.Data, sender)
	case protocol.ActionRoomExit:
		r.RemoveClient(sender)
	}
}

// broadcast injects sender and room fields into the payload object and
// publishes it to the topic.
func (r *Room) broadcast(data json.RawMessage, sender uuid.UUID) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		r.engine.logger.Debug("dropping non-object broadcast payload",
			"room_id", r.id, "sender", sender)
		return
	}

	payload["sender"] = sender.String()
	payload["room"] = r.id.String()

	raw, err := json.Marshal(payload)
	if err != nil {
		r.engine.logger.Warn("marshal broadcast payload", "room_id", r.id, "error", err)
		return
	}

	n := r.topic.Publish(protocol.RoomMessage{Sender: sender, Payload: raw})
	if n == 0 {
		r.engine.logger.Debug("broadcast had no subscribers", "room_id", r.id)
	}
}

// publishEvent publishes a membership event frame to the topic, tagged
// with the acting client.
func (r *Room) publishEvent(ev protocol.EventType, frame protocol.Frame, actor uuid.UUID) {
	raw, err := json.Marshal(frame)
	if err != nil {
		r.engine.logger.Warn("marshal room event", "room_id", r.id, "error", err)
		return
	}

	n := r.topic.Publish(protocol.RoomMessage{Event: ev, Sender: actor, Payload: raw})
	if n == 0 {
		r.engine.logger.Debug("room event had no subscribers",
			"room_id", r.id, "event", ev)
	}
}
