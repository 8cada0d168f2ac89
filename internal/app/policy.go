package app

import "github.com/dkeye/Bridge/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickPeer
	DropFrame
)

type Policy interface {
	OnBackPressure(roster core.Roster, peer core.PeerSession) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(roster core.Roster, peer core.PeerSession) BackpressureAction {
	return KickPeer
}
