package app

import (
	"github.com/dkeye/Bridge/internal/core"
	"github.com/rs/zerolog/log"
)

// Orchestrator ties the session registry and the live roster together and
// applies the backpressure policy on fan-out.
type Orchestrator struct {
	Registry *Registry
	Roster   core.Roster
	Policy   Policy
}

// Join moves a bound session onto the roster.
func (o *Orchestrator) Join(sid core.SessionID) {
	session, ok := o.Registry.GetSession(sid)
	if !ok {
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Msg("join without bound signal")
		return
	}
	o.Roster.AddPeer(sid, session)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Msg("joined roster")
}

// Leave removes the peer from the roster; the ws connection stays up.
func (o *Orchestrator) Leave(sid core.SessionID) {
	o.Roster.RemovePeer(sid)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Msg("left roster")
}

// KickBySID tears the session down completely.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Roster.RemovePeer(sid)
	o.Registry.Unbind(sid)
}

// Fanout broadcasts data to every roster peer except from and applies the
// policy to peers that could not keep up.
func (o *Orchestrator) Fanout(from core.SessionID, data core.Frame) {
	res := o.Roster.Broadcast(from, data)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(o.Roster, slow) {
		case KickPeer:
			if sid, _, ok := o.Roster.ByIdentity(slow.Meta().Identity); ok {
				log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Msg("kicking slow peer")
				o.KickBySID(sid)
			}
		case MarkSlow, DropFrame, NoAction:
		}
	}
}
