package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
)

// handleCursor relays a pointer position to peers. Cursors are ephemeral:
// never logged, never in snapshots, throttled per connection so one busy
// mouse cannot flood the room.
func (ctl *SessionWSController) handleCursor(sid core.SessionID, data []byte) {
	if !ctl.throttle.Allow(sid) {
		return
	}
	var p protocol.CursorMove
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad cursor payload")
		return
	}
	room, owner, ok := ctl.Orch.CursorOwner(sid, domain.RoomID(p.RoomID))
	if !ok {
		return
	}
	frame, ok := ctl.encode(protocol.RemoteCursor{
		Type:  protocol.EventRemoteCursor,
		ID:    owner.ID,
		Name:  owner.Name,
		Color: owner.Color,
		X:     p.X,
		Y:     p.Y,
	})
	if !ok {
		return
	}
	room.Broadcast(sid, frame)
}
