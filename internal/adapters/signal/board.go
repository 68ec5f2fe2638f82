package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/protocol"
)

func (ctl *SessionWSController) handleStroke(sid core.SessionID, data []byte) {
	var p protocol.DrawStroke
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad stroke payload")
		return
	}
	frame, ok := ctl.encode(protocol.RemoteStroke{Type: protocol.EventRemoteStroke, Stroke: p.Stroke})
	if !ok {
		return
	}
	if !ctl.Orch.Stroke(sid, domain.RoomID(p.RoomID), p.Stroke, frame) {
		log.Debug().Str("module", "signal").Str("room", p.RoomID).Msg("stroke for unknown room dropped")
	}
}

func (ctl *SessionWSController) handleShape(sid core.SessionID, data []byte) {
	var p protocol.CreateShape
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad shape payload")
		return
	}
	frame, ok := ctl.encode(protocol.ShapeCreated{Type: protocol.EventShapeCreated, Shape: p.Shape})
	if !ok {
		return
	}
	if !ctl.Orch.Shape(sid, domain.RoomID(p.RoomID), p.Shape, frame) {
		log.Debug().Str("module", "signal").Str("room", p.RoomID).Msg("shape for unknown room dropped")
	}
}

func (ctl *SessionWSController) handleClear(sid core.SessionID, data []byte) {
	var p protocol.ClearBoard
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad clear payload")
		return
	}
	frame, ok := ctl.encode(protocol.Envelope{Type: protocol.EventClearBoard})
	if !ok {
		return
	}
	if ctl.Orch.Clear(domain.RoomID(p.RoomID), frame) {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("board cleared")
	}
}
