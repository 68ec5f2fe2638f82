// Package protocol defines the JSON events exchanged over a board
// connection. Every message carries a "type" discriminator; field names
// match what the web client reads and writes.
package protocol

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

// Inbound event names.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventDrawStroke  = "draw-stroke"
	EventCreateShape = "create-shape"
	EventClearBoard  = "clear-board"
	EventCursorMove  = "cursor-move"
	EventPing        = "ping"
)

// Outbound event names.
const (
	EventInitialState = "initial-state"
	EventRoomNotFound = "room-not-found"
	EventErrorMessage = "error-message"
	EventParticipants = "participants"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventRemoteStroke = "remote-stroke"
	EventShapeCreated = "shape-created"
	EventRemoteCursor = "remote-cursor"
	EventLeft         = "left"
	EventPong         = "pong"
)

// Envelope is the minimal frame: just the discriminator. It doubles as
// the outbound clear-board signal, which carries no payload.
type Envelope struct {
	Type string `json:"type"`
}

type JoinRoom struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type DrawStroke struct {
	Type   string        `json:"type"`
	RoomID string        `json:"roomId"`
	Stroke domain.Stroke `json:"stroke"`
}

type CreateShape struct {
	Type   string       `json:"type"`
	RoomID string       `json:"roomId"`
	Shape  domain.Shape `json:"shape"`
}

type ClearBoard struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type CursorMove struct {
	Type   string  `json:"type"`
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// InitialState is the one-time snapshot sent to a joiner. Shapes render
// before strokes on replay, hence the field order mirrors the contract.
type InitialState struct {
	Type          string                `json:"type"`
	Shapes        []domain.Shape        `json:"shapes"`
	Strokes       []domain.Stroke       `json:"strokes"`
	AssignedColor string                `json:"assignedColor"`
	Participants  []core.ParticipantDTO `json:"participants"`
}

type RoomNotFound struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Participants is a full roster replace, not a delta.
type Participants struct {
	Type         string                `json:"type"`
	Participants []core.ParticipantDTO `json:"participants"`
}

type UserJoined struct {
	Type  string         `json:"type"`
	ID    core.SessionID `json:"id"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
}

type UserLeft struct {
	Type string         `json:"type"`
	ID   core.SessionID `json:"id"`
	Name string         `json:"name"`
}

type RemoteStroke struct {
	Type   string        `json:"type"`
	Stroke domain.Stroke `json:"stroke"`
}

type ShapeCreated struct {
	Type  string       `json:"type"`
	Shape domain.Shape `json:"shape"`
}

type RemoteCursor struct {
	Type  string         `json:"type"`
	ID    core.SessionID `json:"id"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
}

// Marshal encodes an event for the wire.
func Marshal(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}
