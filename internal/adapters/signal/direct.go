package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// SetDirectFactory enables direct data channels. The factory builds one
// connection per remote peer (typically wrapping rtc.NewDataChannelConn);
// leaving it unset keeps all traffic on the hub path.
func (s *ClientSession) SetDirectFactory(f func(peer string) (core.DataConnection, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newDirect = f
}

// EnableDirect negotiates a data channel to peerIdentity and prefers it for
// call frames while open. Offer/answer/candidate frames ride the hub.
func (s *ClientSession) EnableDirect(ctx context.Context, peerIdentity string) error {
	s.mu.Lock()
	if s.newDirect == nil || s.direct != nil {
		s.mu.Unlock()
		return nil
	}
	factory := s.newDirect
	s.mu.Unlock()

	dc, err := factory(peerIdentity)
	if err != nil {
		return err
	}
	s.wireDirect(dc, peerIdentity)
	if err := dc.Start(ctx); err != nil {
		dc.Close()
		return err
	}

	offer, err := dc.CreateAndSetOffer()
	if err != nil {
		dc.Close()
		return err
	}

	s.mu.Lock()
	s.direct = dc
	s.directPeer = peerIdentity
	s.mu.Unlock()

	return s.sendSDP(frameOffer, peerIdentity, offer.SDP)
}

func (s *ClientSession) wireDirect(dc core.DataConnection, peer string) {
	dc.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		s.sendCandidate(peer, ci)
	})
	dc.OnMessage(func(b []byte) {
		s.handleIncoming(b, func(_ string, out []byte) error { return dc.Send(out) })
	})
	dc.OnOpen(func() {
		s.mu.Lock()
		s.directOpen = true
		s.mu.Unlock()
		log.Info().Str("module", "signal.client").Str("peer", peer).Msg("direct channel up")
	})
	dc.OnClosed(func() {
		s.mu.Lock()
		if s.direct == dc {
			s.direct = nil
			s.directPeer = ""
			s.directOpen = false
		}
		s.mu.Unlock()
		log.Info().Str("module", "signal.client").Str("peer", peer).Msg("direct channel down")
	})
}

func (s *ClientSession) sendSDP(typ, to, sdp string) error {
	frame := struct {
		Type string `json:"type"`
		To   string `json:"to"`
		SDP  string `json:"sdp"`
	}{Type: typ, To: to, SDP: sdp}
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return s.enqueue(b)
}

func (s *ClientSession) sendCandidate(to string, ci webrtc.ICECandidateInit) {
	frame := struct {
		Type          string `json:"type"`
		To            string `json:"to"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid,omitempty"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
	}{
		Type:      frameCandidate,
		To:        to,
		Candidate: ci.Candidate,
	}
	if ci.SDPMid != nil {
		frame.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		frame.SDPMLineIndex = *ci.SDPMLineIndex
	}
	b, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("candidate marshal")
		return
	}
	if err := s.enqueue(b); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("candidate send")
	}
}

// handleNegotiation services hub-relayed offer/answer/candidate frames.
func (s *ClientSession) handleNegotiation(typ string, data []byte) {
	var f struct {
		From          string `json:"from"`
		SDP           string `json:"sdp"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("bad negotiation frame")
		return
	}

	switch typ {
	case frameOffer:
		s.acceptDirectOffer(f.From, f.SDP)
	case frameAnswer:
		s.mu.RLock()
		dc := s.direct
		s.mu.RUnlock()
		if dc == nil {
			log.Warn().Str("module", "signal.client").Msg("answer without pending offer")
			return
		}
		if err := dc.ApplyAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: f.SDP}); err != nil {
			log.Error().Err(err).Str("module", "signal.client").Msg("apply answer")
		}
	case frameCandidate:
		s.mu.RLock()
		dc := s.direct
		s.mu.RUnlock()
		if dc == nil {
			return
		}
		ci := webrtc.ICECandidateInit{Candidate: f.Candidate}
		if f.SDPMid != "" {
			mid := f.SDPMid
			ci.SDPMid = &mid
		}
		if f.SDPMLineIndex != 0 {
			idx := f.SDPMLineIndex
			ci.SDPMLineIndex = &idx
		}
		if err := dc.AddICECandidate(ci); err != nil {
			log.Error().Err(err).Str("module", "signal.client").Msg("add candidate")
		}
	}
}

// acceptDirectOffer is the answerer side of direct negotiation.
func (s *ClientSession) acceptDirectOffer(from, sdp string) {
	s.mu.Lock()
	factory := s.newDirect
	existing := s.direct
	ctx := s.ctx
	s.mu.Unlock()
	if factory == nil {
		log.Warn().Str("module", "signal.client").Str("from", from).Msg("direct offer ignored, no factory")
		return
	}
	if existing != nil {
		existing.Close()
	}

	dc, err := factory(from)
	if err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("direct factory")
		return
	}
	s.wireDirect(dc, from)
	if err := dc.Start(ctx); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("direct start")
		dc.Close()
		return
	}
	answer, err := dc.AcceptOffer(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp})
	if err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("accept offer")
		dc.Close()
		return
	}

	s.mu.Lock()
	s.direct = dc
	s.directPeer = from
	s.mu.Unlock()

	if err := s.sendSDP(frameAnswer, from, answer.SDP); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("answer send")
	}
}
