package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/protocol"
)

func (ctl *SessionWSController) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *SessionWSController) readPump(ctx context.Context, sid core.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		for _, d := range ctl.Orch.Disconnect(sid) {
			ctl.announceDeparture(d)
		}
		ctl.throttle.Forget(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.readLimit)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(sid, c, data)
		}
	}
}

func (ctl *SessionWSController) handleMessage(sid core.SessionID, c core.SignalConnection, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.EventJoinRoom:
		ctl.handleJoin(sid, c, data)
	case protocol.EventLeaveRoom:
		ctl.handleLeave(sid, c)
	case protocol.EventDrawStroke:
		ctl.handleStroke(sid, data)
	case protocol.EventCreateShape:
		ctl.handleShape(sid, data)
	case protocol.EventClearBoard:
		ctl.handleClear(sid, data)
	case protocol.EventCursorMove:
		ctl.handleCursor(sid, data)
	case protocol.EventPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

// sendEvent marshals and fires at one connection, best effort.
func (ctl *SessionWSController) sendEvent(c core.SignalConnection, v any) {
	frame, ok := ctl.encode(v)
	if !ok {
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *SessionWSController) encode(v any) (core.Frame, bool) {
	frame, err := protocol.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode event")
		return nil, false
	}
	return frame, true
}
