package signal

import (
	"encoding/json"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards offer/answer/candidate frames between peers so two
// endpoints can negotiate a direct data channel. The hub only stamps the
// sender and passes the SDP/ICE blobs through untouched.
func (ctl *BridgeWSController) handleRelay(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad relay frame")
		return
	}
	to, _ := m["to"].(string)
	if to == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("relay frame without destination")
		return
	}

	_, dest, ok := ctl.Orch.Roster.ByIdentity(to)
	if !ok {
		ctl.sendJSON(conn, map[string]any{
			"type":  frameError,
			"error": "peer not found",
		})
		return
	}

	m["from"] = string(sid)
	b, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("relay marshal")
		return
	}
	if err := dest.Signal().TrySend(core.Frame(b)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("to", to).Msg("relay forward failed")
	}
}
