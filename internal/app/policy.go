package app

import "github.com/dkeye/Sketch/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(member core.SessionID) BackpressureAction
}

// SimplePolicy kicks a peer whose send buffer stays full; the events it
// missed are unrecoverable, so a reconnect with a fresh snapshot is the
// only way back to a consistent board.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(member core.SessionID) BackpressureAction {
	return KickMember
}
