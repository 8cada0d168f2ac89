// Package rtc provides the pion-backed direct peer link. Call frames travel
// the data channel instead of the hub once negotiation completes.
package rtc

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Bridge/internal/core"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const dataChannelLabel = "bridge"

var ErrChannelNotOpen = errors.New("rtc: data channel not open")

type DataChannelConn struct {
	pc     *webrtc.PeerConnection
	peer   string
	cancel context.CancelFunc

	mu     sync.Mutex
	dc     *webrtc.DataChannel
	open   bool
	closed bool

	onICE     func(webrtc.ICECandidateInit)
	onMessage func([]byte)
	onOpen    func()
	onClosed  func()
}

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

func NewDataChannelConn(cfg webrtc.Configuration, peer string) (*DataChannelConn, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &DataChannelConn{pc: pc, peer: peer}, nil
}

// Start configures peer-connection callbacks. Set the On* callbacks first.
func (c *DataChannelConn) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("peer", c.peer).Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateDisconnected ||
			s == webrtc.ICEConnectionStateFailed ||
			s == webrtc.ICEConnectionStateClosed {
			cancel()
		}
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("peer", c.peer).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			if c.onClosed != nil {
				c.onClosed()
			}
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})

	// Answerer side: the offerer created the channel, adopt it on arrival.
	c.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		log.Info().Str("module", "rtc").Str("peer", c.peer).Str("label", dc.Label()).Msg("data channel arrived")
		c.adopt(dc)
	})

	go func() {
		<-ctx.Done()
		c.Close()
	}()
	return nil
}

func (c *DataChannelConn) adopt(dc *webrtc.DataChannel) {
	c.mu.Lock()
	c.dc = dc
	c.mu.Unlock()

	dc.OnOpen(func() {
		log.Info().Str("module", "rtc").Str("peer", c.peer).Msg("data channel open")
		c.mu.Lock()
		c.open = true
		c.mu.Unlock()
		if c.onOpen != nil {
			c.onOpen()
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if c.onMessage != nil {
			c.onMessage(msg.Data)
		}
	})
	dc.OnClose(func() {
		c.mu.Lock()
		c.open = false
		c.mu.Unlock()
		if c.onClosed != nil {
			c.onClosed()
		}
	})
}

// CreateAndSetOffer opens the channel (offerer side) and returns the local offer.
func (c *DataChannelConn) CreateAndSetOffer() (*webrtc.SessionDescription, error) {
	dc, err := c.pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		return nil, err
	}
	c.adopt(dc)

	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// AcceptOffer applies a remote offer and returns the local answer.
func (c *DataChannelConn) AcceptOffer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (c *DataChannelConn) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *DataChannelConn) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

func (c *DataChannelConn) OnICECandidate(fn func(webrtc.ICECandidateInit)) { c.onICE = fn }
func (c *DataChannelConn) OnMessage(fn func([]byte))                       { c.onMessage = fn }
func (c *DataChannelConn) OnOpen(fn func())                                { c.onOpen = fn }
func (c *DataChannelConn) OnClosed(fn func())                              { c.onClosed = fn }

func (c *DataChannelConn) Send(data []byte) error {
	c.mu.Lock()
	dc, open := c.dc, c.open
	c.mu.Unlock()
	if dc == nil || !open {
		return ErrChannelNotOpen
	}
	return dc.Send(data)
}

func (c *DataChannelConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *DataChannelConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.open = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if err := c.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "rtc").Str("peer", c.peer).Msg("peer connection close")
	}
}

var _ core.DataConnection = (*DataChannelConn)(nil)
