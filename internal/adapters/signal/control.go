package signal

import "github.com/dkeye/Bridge/internal/core"

func (ctl *BridgeWSController) handlePing(conn core.SignalConnection) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: framePong,
	}
	ctl.sendJSON(conn, resp)
}
