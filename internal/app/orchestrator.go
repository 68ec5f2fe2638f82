package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

var (
	ErrInvalidRequest = errors.New("roomId and name are required to join")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotConnected   = errors.New("no session for connection")
)

// Orchestrator turns connection-scoped requests into room mutations.
// All validation happens here before any state changes; adapters only
// decode payloads and marshal the resulting events.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomFactory
	Policy   Policy
}

// JoinResult carries everything the adapter needs to answer a join:
// the assigned color, the atomic board snapshot, the room handle for
// the follow-up roster broadcasts, and the departure from a previous
// room if the connection switched.
type JoinResult struct {
	Color    string
	Snapshot core.JoinSnapshot
	Room     core.RoomService
	Left     *Departure
}

// Departure describes one removal from one room's roster.
type Departure struct {
	RoomID      domain.RoomID
	Room        core.RoomService
	Participant core.ParticipantDTO
	Remaining   []core.ParticipantDTO
}

// WelcomeFunc builds the joiner's state-sync frame from the assigned
// color and the room's atomic snapshot. The room enqueues it to the
// joiner before releasing its lock.
type WelcomeFunc func(color string, snap core.JoinSnapshot) (core.Frame, bool)

func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID, name string, welcome WelcomeFunc) (JoinResult, error) {
	if roomID == "" || name == "" {
		return JoinResult{}, ErrInvalidRequest
	}
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return JoinResult{}, ErrRoomNotFound
	}
	conn, ok := o.Registry.Conn(sid)
	if !ok {
		return JoinResult{}, ErrNotConnected
	}

	meta, err := domain.NewParticipant(name, domain.AssignColor())
	if err != nil {
		return JoinResult{}, err
	}

	// One room per connection: switching rooms leaves the old one first.
	var left *Departure
	if prev, ok := o.Registry.RoomOf(sid); ok && prev != roomID {
		if d, ok := o.Leave(sid); ok {
			left = &d
		}
	}

	var roomWelcome core.WelcomeFunc
	if welcome != nil {
		roomWelcome = func(snap core.JoinSnapshot) (core.Frame, bool) {
			return welcome(meta.Color, snap)
		}
	}
	snap := room.Join(sid, core.NewMemberSession(meta, conn), roomWelcome)

	// The reaper may have dropped an empty room between the lookup and
	// the join. Both Remove and this re-check serialize on the store
	// lock, so a room that is still registered here will be seen as
	// occupied by any later sweep.
	if cur, ok := o.Rooms.GetRoom(roomID); !ok || cur != room {
		room.Leave(sid)
		log.Warn().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(roomID)).Msg("room reaped during join")
		return JoinResult{Left: left}, ErrRoomNotFound
	}

	o.Registry.UpdateRoom(sid, roomID)
	log.Info().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(roomID)).Str("name", name).Msg("join")
	return JoinResult{Color: meta.Color, Snapshot: snap, Room: room, Left: left}, nil
}

// Leave removes the session from its indexed room without touching the
// connection. Reports false when the session was not in any room.
func (o *Orchestrator) Leave(sid core.SessionID) (Departure, bool) {
	roomID, ok := o.Registry.RoomOf(sid)
	if !ok {
		return Departure{}, false
	}
	o.Registry.ClearRoom(sid)
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return Departure{}, false
	}
	dto, ok := room.Leave(sid)
	if !ok {
		return Departure{}, false
	}
	return Departure{
		RoomID:      roomID,
		Room:        room,
		Participant: dto,
		Remaining:   room.ParticipantsSnapshot(),
	}, true
}

// Stroke appends to the room's log and relays to peers. An unresolvable
// room id is a silent drop, reported as false.
func (o *Orchestrator) Stroke(sid core.SessionID, roomID domain.RoomID, s domain.Stroke, frame core.Frame) bool {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return false
	}
	o.applyBackpressure(room.AppendStroke(sid, s, frame))
	return true
}

func (o *Orchestrator) Shape(sid core.SessionID, roomID domain.RoomID, s domain.Shape, frame core.Frame) bool {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return false
	}
	o.applyBackpressure(room.AppendShape(sid, s, frame))
	return true
}

// Clear truncates the room's logs and tells everyone, sender included.
func (o *Orchestrator) Clear(roomID domain.RoomID, frame core.Frame) bool {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return false
	}
	o.applyBackpressure(room.Clear(frame))
	return true
}

// CursorOwner resolves the room and the sender's registered participant
// for tagging a cursor event. Cursors never touch the log; a sender not
// on the roster is a silent drop.
func (o *Orchestrator) CursorOwner(sid core.SessionID, roomID domain.RoomID) (core.RoomService, core.ParticipantDTO, bool) {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return nil, core.ParticipantDTO{}, false
	}
	owner, ok := room.Participant(sid)
	if !ok {
		return nil, core.ParticipantDTO{}, false
	}
	return room, owner, true
}

// Disconnect removes the session from its indexed room, then defensively
// sweeps every other room for a leaked roster entry. Normally at most
// one departure comes back; a connection that never joined yields none.
func (o *Orchestrator) Disconnect(sid core.SessionID) []Departure {
	var out []Departure
	if d, ok := o.Leave(sid); ok {
		out = append(out, d)
	}
	for _, info := range o.Rooms.List() {
		room, ok := o.Rooms.GetRoom(info.ID)
		if !ok {
			continue
		}
		dto, ok := room.Leave(sid)
		if !ok {
			continue
		}
		log.Warn().Str("module", "app.orchestrator").Str("sid", string(sid)).Str("room", string(info.ID)).Msg("roster entry outlived registry index")
		out = append(out, Departure{
			RoomID:      info.ID,
			Room:        room,
			Participant: dto,
			Remaining:   room.ParticipantsSnapshot(),
		})
	}
	o.Registry.Unbind(sid)
	return out
}

func (o *Orchestrator) applyBackpressure(res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(slow) {
		case KickMember:
			o.Registry.Cancel(slow)
		case MarkSlow, DropFrame, NoAction:
		}
	}
}
