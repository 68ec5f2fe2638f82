package signal

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
)

var validate = validator.New()

func (ctl *SessionWSController) handleJoin(sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p protocol.JoinRoom
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendEvent(conn, protocol.ErrorMessage{Type: protocol.EventErrorMessage, Message: "bad_payload"})
		return
	}
	if err := validate.Struct(p); err != nil {
		ctl.sendEvent(conn, protocol.ErrorMessage{Type: protocol.EventErrorMessage, Message: app.ErrInvalidRequest.Error()})
		return
	}

	// The room enqueues the initial-state frame to the joiner inside its
	// own critical section, so no concurrent append can reach the
	// joiner's send queue ahead of the snapshot it is missing from.
	res, err := ctl.Orch.Join(sid, domain.RoomID(p.RoomID), p.Name, func(color string, snap core.JoinSnapshot) (core.Frame, bool) {
		return ctl.encode(protocol.InitialState{
			Type:          protocol.EventInitialState,
			Shapes:        snap.Shapes,
			Strokes:       snap.Strokes,
			AssignedColor: color,
			Participants:  snap.Participants,
		})
	})
	if res.Left != nil {
		ctl.announceDeparture(*res.Left)
	}
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		ctl.sendEvent(conn, protocol.RoomNotFound{Type: protocol.EventRoomNotFound, RoomID: p.RoomID})
		return
	case err != nil:
		ctl.sendEvent(conn, protocol.ErrorMessage{Type: protocol.EventErrorMessage, Message: err.Error()})
		return
	}

	if roster, ok := ctl.encode(protocol.Participants{Type: protocol.EventParticipants, Participants: res.Snapshot.Participants}); ok {
		res.Room.BroadcastAll(roster)
	}
	if arrival, ok := ctl.encode(protocol.UserJoined{Type: protocol.EventUserJoined, ID: sid, Name: p.Name, Color: res.Color}); ok {
		res.Room.Broadcast(sid, arrival)
	}
}

// handleLeave drops the session out of its room without closing the
// connection; a later join-room is welcome.
func (ctl *SessionWSController) handleLeave(sid core.SessionID, conn core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	if d, ok := ctl.Orch.Leave(sid); ok {
		ctl.announceDeparture(d)
	}
	ctl.sendEvent(conn, protocol.Envelope{Type: protocol.EventLeft})
}

// announceDeparture tells a room's remaining members who left and what
// the roster looks like now.
func (ctl *SessionWSController) announceDeparture(d app.Departure) {
	if roster, ok := ctl.encode(protocol.Participants{Type: protocol.EventParticipants, Participants: d.Remaining}); ok {
		d.Room.BroadcastAll(roster)
	}
	if left, ok := ctl.encode(protocol.UserLeft{Type: protocol.EventUserLeft, ID: d.Participant.ID, Name: d.Participant.Name}); ok {
		d.Room.BroadcastAll(left)
	}
}
