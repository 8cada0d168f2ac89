package signal

import (
	"encoding/json"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *BridgeWSController) handleJoin(
	sid core.SessionID,
	conn core.SignalConnection,
	data []byte,
) {
	type joinPayload struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Agent bool   `json:"agent"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  frameError,
			"error": "bad_payload",
		})
		return
	}
	if err := ctl.Orch.Registry.SetProfile(sid, p.Name, p.Agent); err != nil {
		ctl.sendJSON(conn, map[string]any{
			"type":  frameError,
			"error": "invalid_name",
		})
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", p.Name).Bool("agent", p.Agent).Msg("join")
	ctl.Orch.Join(sid)

	resp := struct {
		Type     string `json:"type"`
		Identity string `json:"identity"`
	}{
		Type:     frameJoined,
		Identity: string(sid),
	}
	ctl.sendJSON(conn, resp)
	ctl.broadcastRoster()
}

// handleLeave drops the peer from the roster without tearing the connection.
func (ctl *BridgeWSController) handleLeave(sid core.SessionID, conn core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.Leave(sid)
	ctl.sendJSON(conn, map[string]any{"type": frameLeft})
	ctl.broadcastRoster()
}

func (ctl *BridgeWSController) handleWhoAmI(sid core.SessionID, conn core.SignalConnection) {
	peer := ctl.Orch.Registry.GetOrCreatePeer(sid)

	resp := struct {
		Type     string `json:"type"`
		Identity string `json:"identity"`
		Username string `json:"username"`
		Agent    bool   `json:"agent"`
	}{
		Type:     frameWhoAmI,
		Identity: peer.Identity,
		Username: peer.Username,
		Agent:    peer.IsAgent,
	}
	ctl.sendJSON(conn, resp)
}

// broadcastRoster pushes the full join-ordered roster to every peer; clients
// replace their copy wholesale, so there is no per-event drift to reconcile.
func (ctl *BridgeWSController) broadcastRoster() {
	frame := rosterFrame{Type: frameRoster, Peers: ctl.Orch.Roster.Snapshot()}
	b, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("roster marshal")
		return
	}
	ctl.Orch.Fanout("", core.Frame(b))
}
