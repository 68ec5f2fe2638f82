package core

import (
	"time"

	"github.com/dkeye/Sketch/internal/domain"
)

// Frame is a marshaled wire event ready for delivery.
type Frame []byte

// SessionID identifies one live connection. Assigned by the transport
// layer at upgrade time, never chosen by the client.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a participant and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Participant
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// ParticipantDTO is a read-only roster view for the wire (no transport fields).
type ParticipantDTO struct {
	ID    SessionID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// JoinSnapshot is the board state captured atomically at the moment a
// member joins. Shapes replay before strokes so freehand lines land on top.
type JoinSnapshot struct {
	Strokes      []domain.Stroke
	Shapes       []domain.Shape
	Participants []ParticipantDTO
}

// WelcomeFunc builds the frame a room enqueues to a joiner inside Join's
// critical section, before any later append can fan out to it.
type WelcomeFunc func(JoinSnapshot) (Frame, bool)

// RoomService is the core-facing API of a room. It owns the drawing log
// and the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	LastActive() time.Time
	ParticipantsSnapshot() []ParticipantDTO
	Participant(sid SessionID) (ParticipantDTO, bool)

	Join(sid SessionID, ms MemberSession, welcome WelcomeFunc) JoinSnapshot
	Leave(sid SessionID) (ParticipantDTO, bool)

	AppendStroke(from SessionID, s domain.Stroke, frame Frame) PublishResult
	AppendShape(from SessionID, s domain.Shape, frame Frame) PublishResult
	Clear(frame Frame) PublishResult

	Broadcast(from SessionID, frame Frame) PublishResult
	BroadcastAll(frame Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"client_count"`
}

// RoomFactory is the store: creation, lookup, enumeration, removal.
type RoomFactory interface {
	CreateRoom() RoomService
	GetRoom(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	Remove(id domain.RoomID)
}
