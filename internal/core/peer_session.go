package core

import "github.com/dkeye/Bridge/internal/domain"

// PeerSession binds domain.Peer and its transport endpoint.
// This is what the roster stores and fans out to.
type PeerSession interface {
	Meta() *domain.Peer
	Signal() SignalConnection
}

// peerSession implements PeerSession by pairing meta + transport.
type peerSession struct {
	meta *domain.Peer
	conn SignalConnection
}

func NewPeerSession(meta *domain.Peer, conn SignalConnection) PeerSession {
	return &peerSession{meta: meta, conn: conn}
}

func (p *peerSession) Meta() *domain.Peer       { return p.meta }
func (p *peerSession) Signal() SignalConnection { return p.conn }
