package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType identifies an outbound event.
type EventType string

// Outbound event types.
const (
	EventClientJoin      EventType = "CLIENT_JOIN"
	EventRoomsList       EventType = "ROOMS_LIST"
	EventRoomClientsList EventType = "ROOM_CLIENTS_LIST"
	EventRoomJoin        EventType = "ROOM_JOIN"
	EventRoomCreation    EventType = "ROOM_CREATION"
	EventRoomRemoval     EventType = "ROOM_REMOVAL"
	EventRoomExit        EventType = "ROOM_EXIT"
)

// FrameTypeEvent is the envelope type of every server-initiated frame.
const FrameTypeEvent = "EVENT"

// Frame is the outbound envelope: {"type":"EVENT","event":{...}}.
type Frame struct {
	Type  string `json:"type"`
	Event any    `json:"event"`
}

// ClientJoinEvent announces the connection's own client id.
type ClientJoinEvent struct {
	Type     EventType `json:"type"`
	ClientID string    `json:"client_id"`
}

// RoomsListEvent carries a snapshot of all room ids.
type RoomsListEvent struct {
	Type  EventType `json:"type"`
	Rooms []string  `json:"rooms"`
}

// RoomClientsListEvent carries a snapshot of one room's member ids.
type RoomClientsListEvent struct {
	Type    EventType `json:"type"`
	Clients []string  `json:"clients"`
	RoomID  string    `json:"room_id"`
}

// RoomJoinEvent announces a client joining a room.
type RoomJoinEvent struct {
	Type     EventType `json:"type"`
	RoomID   string    `json:"room_id"`
	ClientID string    `json:"client_id"`
}

// RoomCreationEvent is a directory event for a new room.
type RoomCreationEvent struct {
	Type      EventType `json:"type"`
	RoomID    string    `json:"room_id"`
	CreatorID string    `json:"creator_id"`
}

// RoomRemovalEvent is a directory event for a removed room.
type RoomRemovalEvent struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"room_id"`
}

// RoomExitEvent announces a client leaving a room.
type RoomExitEvent struct {
	Type     EventType `json:"type"`
	ClientID string    `json:"client_id"`
	RoomID   string    `json:"room_id"`
}

// ClientJoinFrame builds the CLIENT_JOIN frame sent on connect.
func ClientJoinFrame(clientID uuid.UUID) Frame {
	return frame(ClientJoinEvent{Type: EventClientJoin, ClientID: clientID.String()})
}

// RoomsListFrame builds a ROOMS_LIST frame from a room id snapshot.
func RoomsListFrame(roomIDs []uuid.UUID) Frame {
	return frame(RoomsListEvent{Type: EventRoomsList, Rooms: idStrings(roomIDs)})
}

// RoomClientsListFrame builds a ROOM_CLIENTS_LIST frame for one room.
func RoomClientsListFrame(roomID uuid.UUID, clientIDs []uuid.UUID) Frame {
	return frame(RoomClientsListEvent{
		Type:    EventRoomClientsList,
		Clients: idStrings(clientIDs),
		RoomID:  roomID.String(),
	})
}

// RoomJoinFrame builds a ROOM_JOIN frame.
func RoomJoinFrame(roomID, clientID uuid.UUID) Frame {
	return frame(RoomJoinEvent{
		Type:     EventRoomJoin,
		RoomID:   roomID.String(),
		ClientID: clientID.String(),
	})
}

// RoomCreationFrame builds a ROOM_CREATION directory frame.
func RoomCreationFrame(roomID, creatorID uuid.UUID) Frame {
	return frame(RoomCreationEvent{
		Type:      EventRoomCreation,
		RoomID:    roomID.String(),
		CreatorID: creatorID.String(),
	})
}

// RoomRemovalFrame builds a ROOM_REMOVAL directory frame.
func RoomRemovalFrame(roomID uuid.UUID) Frame {
	return frame(RoomRemovalEvent{Type: EventRoomRemoval, RoomID: roomID.String()})
}

// RoomExitFrame builds a ROOM_EXIT frame.
func RoomExitFrame(clientID, roomID uuid.UUID) Frame {
	return frame(RoomExitEvent{
		Type:     EventRoomExit,
		ClientID: clientID.String(),
		RoomID:   roomID.String(),
	})
}

func frame(event any) Frame {
	return Frame{Type: FrameTypeEvent, Event: event}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// RoomMessage is what flows through a room's topic. Event is empty for
// user broadcasts and set for membership event frames; Sender identifies
// the acting client so forwarders can apply exit and self-exclusion
// checks without re-parsing the payload.
type RoomMessage struct {
	Event   EventType
	Sender  uuid.UUID
	Payload json.RawMessage
}
