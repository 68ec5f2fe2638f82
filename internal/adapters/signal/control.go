package signal

import (
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/protocol"
)

func (ctl *SessionWSController) handlePing(conn core.SignalConnection) {
	ctl.sendEvent(conn, protocol.Envelope{Type: protocol.EventPong})
}
