// Package protocol defines the JSON wire protocol: inbound commands
// dispatched on their action tag and outbound event frames.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Action identifies an inbound command.
type Action string

// Inbound command actions. ActionUnknown is the explicit "ignored" case
// every unrecognized or unparseable command collapses into.
const (
	ActionUnknown          Action = ""
	ActionRoomCreate       Action = "ROOM_CREATE"
	ActionRoomsSubscribe   Action = "ROOMS_SUBSCRIBE"
	ActionRoomsUnsubscribe Action = "ROOMS_UNSUBSCRIBE"
	ActionRoomsList        Action = "ROOMS_LIST"
	ActionRoomJoin         Action = "ROOM_JOIN"
	ActionRoomClientsList  Action = "ROOM_CLIENTS_LIST"
	ActionBroadcast        Action = "BROADCAST"
	ActionRoomExit         Action = "ROOM_EXIT"
)

// TargetRoom is the only supported target type for routed commands.
const TargetRoom = "ROOM"

// Target names the destination of a routed command.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Command is one parsed inbound command. RoomID is set for actions that
// name a room, either via the room_id field or via a ROOM target.
type Command struct {
	Action Action
	RoomID uuid.UUID
	Data   json.RawMessage
}

type rawCommand struct {
	Action Action          `json:"action"`
	RoomID string          `json:"room_id"`
	Target *Target         `json:"target"`
	Data   json.RawMessage `json:"data"`
}

// ParseCommand decodes one inbound message. Malformed JSON is an error
// (the message is dropped by the caller); a structurally valid message
// with an unrecognized action or an unusable room reference parses to
// ActionUnknown, which downstream dispatch silently ignores.
func ParseCommand(data []byte) (Command, error) {
	var raw rawCommand
	if err := json.Unmarshal(data, &raw); err != nil {
		return Command{}, fmt.Errorf("parse command: %w", err)
	}

	switch raw.Action {
	case ActionRoomCreate, ActionRoomsSubscribe, ActionRoomsUnsubscribe, ActionRoomsList:
		return Command{Action: raw.Action}, nil

	case ActionRoomJoin, ActionRoomClientsList:
		id, err := uuid.Parse(raw.RoomID)
		if err != nil {
			return Command{}, nil
		}
		return Command{Action: raw.Action, RoomID: id}, nil

	case ActionBroadcast, ActionRoomExit:
		if raw.Target == nil || raw.Target.Type != TargetRoom {
			return Command{}, nil
		}
		id, err := uuid.Parse(raw.Target.ID)
		if err != nil {
			return Command{}, nil
		}
		return Command{Action: raw.Action, RoomID: id, Data: raw.Data}, nil

	default:
		return Command{}, nil
	}
}
