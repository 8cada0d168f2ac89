package signal

import (
	"encoding/json"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/rs/zerolog/log"
)

// handleCall routes a call frame to its destination peer, stamping the caller
// identity. The hub never inspects payloads; correlation is the endpoints'
// business via the frame id.
func (ctl *BridgeWSController) handleCall(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var f callFrame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call frame")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(string(sid)) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("method", f.Method).Msg("call rate limited")
		ctl.sendJSON(conn, replyFrame{Type: frameReply, ID: f.ID, OK: false, Error: "rate limited"})
		return
	}

	_, dest, ok := ctl.Orch.Roster.ByIdentity(f.To)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("to", f.To).Msg("call to unknown peer")
		ctl.sendJSON(conn, replyFrame{Type: frameReply, ID: f.ID, OK: false, Error: "peer not found"})
		return
	}

	f.From = string(sid)
	b, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("call marshal")
		return
	}
	if err := dest.Signal().TrySend(core.Frame(b)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("to", f.To).Msg("call forward failed")
		ctl.sendJSON(conn, replyFrame{Type: frameReply, ID: f.ID, OK: false, Error: "peer unreachable"})
	}
}

// handleReply routes a reply frame back to the pending caller.
func (ctl *BridgeWSController) handleReply(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var f replyFrame
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reply frame")
		return
	}

	_, dest, ok := ctl.Orch.Roster.ByIdentity(f.To)
	if !ok {
		// Caller left before the reply came back; nothing to do.
		log.Warn().Str("module", "signal").Str("to", f.To).Msg("reply to unknown peer")
		return
	}

	f.From = string(sid)
	b, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("reply marshal")
		return
	}
	if err := dest.Signal().TrySend(core.Frame(b)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("to", f.To).Msg("reply forward failed")
	}
}
