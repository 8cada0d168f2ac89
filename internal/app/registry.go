package app

import (
	"context"
	"sync"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/dkeye/Bridge/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Session core.PeerSession
	Cancel  context.CancelFunc
}

// Registry binds hub session ids to their peer meta and transport endpoint.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	peers    map[core.SessionID]*domain.Peer
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		peers:    make(map[core.SessionID]*domain.Peer),
	}
}

// GetOrCreatePeer returns the peer meta for sid, minting a guest entry on
// first sight. The session id doubles as the peer identity.
func (r *Registry) GetOrCreatePeer(sid core.SessionID) *domain.Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.peers[sid]; ok {
		return p
	}
	p := &domain.Peer{Identity: string(sid), Username: "guest"}
	r.peers[sid] = p
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("created new peer")
	return p
}

// SetProfile applies the join payload to the peer meta.
func (r *Registry) SetProfile(sid core.SessionID, username string, isAgent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[sid]
	if !ok {
		p = &domain.Peer{Identity: string(sid)}
		r.peers[sid] = p
	}
	if err := p.SetUsername(username); err != nil {
		return err
	}
	p.IsAgent = isAgent
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", username).Bool("agent", isAgent).Msg("profile set")
	return nil
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.PeerSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.PeerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind drops the session binding and cancels its pumps.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	entry, ok := r.sessions[sid]
	delete(r.sessions, sid)
	delete(r.peers, sid)
	r.mu.Unlock()
	if ok && entry.Cancel != nil {
		entry.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}
