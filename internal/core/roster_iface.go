package core

import "github.com/dkeye/Bridge/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []PeerSession
}

// PeerDTO is a read-only view for APIs (no transport fields).
type PeerDTO struct {
	Identity string `json:"identity"`
	Username string `json:"username"`
	IsAgent  bool   `json:"agent"`
}

// Roster is the core-facing API of the live peer set.
// It owns membership but never touches transport resources.
type Roster interface {
	PeerCount() int
	// Snapshot returns peers in join order.
	Snapshot() []PeerDTO
	// Peers returns domain peers in join order.
	Peers() []domain.Peer

	AddPeer(sid SessionID, ps PeerSession)
	RemovePeer(sid SessionID)
	Get(sid SessionID) (PeerSession, bool)
	// ByIdentity resolves a peer identity to its session.
	ByIdentity(identity string) (SessionID, PeerSession, bool)
	Broadcast(from SessionID, data Frame) PublishResult
}
