package rpc

import "github.com/dkeye/Bridge/internal/domain"

// FindAgent scans the current roster for the first agent-capable peer.
// It is a pure read: retry policy belongs to the caller, which alone knows
// the budget appropriate to its operation.
func FindAgent(peers []domain.Peer) (domain.Peer, bool) {
	for _, p := range peers {
		if p.IsAgent {
			return p, true
		}
	}
	return domain.Peer{}, false
}
