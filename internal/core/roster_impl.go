package core

import (
	"sync"

	"github.com/dkeye/Bridge/internal/domain"
	"github.com/rs/zerolog/log"
)

// rosterImpl is a threadsafe in-memory roster.
// It never closes adapter-owned resources.
type rosterImpl struct {
	mu    sync.RWMutex
	bySID map[SessionID]PeerSession
	byID  map[string]SessionID
	order []SessionID
}

func NewRoster() Roster {
	return &rosterImpl{
		bySID: make(map[SessionID]PeerSession),
		byID:  make(map[string]SessionID),
	}
}

func (r *rosterImpl) PeerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *rosterImpl) AddPeer(sid SessionID, ps PeerSession) {
	id := ps.Meta().Identity
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; !ok {
		r.order = append(r.order, sid)
	}
	r.bySID[sid] = ps
	r.byID[id] = sid
	log.Info().Str("module", "core.roster").Str("sid", string(sid)).Str("identity", id).Msg("peer added")
}

func (r *rosterImpl) RemovePeer(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ps, ok := r.bySID[sid]; ok {
		delete(r.byID, ps.Meta().Identity)
		for i, s := range r.order {
			if s == sid {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.roster").Str("sid", string(sid)).Msg("peer removed")
}

func (r *rosterImpl) Get(sid SessionID) (PeerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, ok := r.bySID[sid]
	return ps, ok
}

func (r *rosterImpl) ByIdentity(identity string) (SessionID, PeerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byID[identity]
	if !ok {
		return "", nil, false
	}
	ps, ok := r.bySID[sid]
	return sid, ps, ok
}

func (r *rosterImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, sid := range r.order {
		if sid == from {
			continue
		}
		ps := r.bySID[sid]
		if err := ps.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, ps)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.roster").Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *rosterImpl) Snapshot() []PeerDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PeerDTO, 0, len(r.order))
	for _, sid := range r.order {
		p := r.bySID[sid].Meta()
		out = append(out, PeerDTO{Identity: p.Identity, Username: p.Username, IsAgent: p.IsAgent})
	}
	return out
}

func (r *rosterImpl) Peers() []domain.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Peer, 0, len(r.order))
	for _, sid := range r.order {
		out = append(out, *r.bySID[sid].Meta())
	}
	return out
}
