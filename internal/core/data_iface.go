package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// DataConnection is a direct peer link carrying call frames off the hub path.
// Negotiation (offer/answer/ICE) is relayed over the signal channel.
type DataConnection interface {
	// Start configures internal callbacks and binds the connection lifetime to ctx.
	Start(ctx context.Context) error
	// Close should stop all underlying resources.
	Close()
	IsClosed() bool
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// ApplyAnswer finishes offerer-side negotiation.
	ApplyAnswer(webrtc.SessionDescription) error
	// CreateAndSetOffer opens the data channel and returns the local offer.
	CreateAndSetOffer() (*webrtc.SessionDescription, error)
	// AcceptOffer applies a remote offer and returns the local answer.
	AcceptOffer(webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnMessage sets a callback invoked for every data-channel frame.
	OnMessage(func(data []byte))
	// OnOpen sets a callback invoked once the data channel is usable.
	OnOpen(func())
	Send(data []byte) error
	// OnClosed sets a callback for cleanup of the direct link.
	OnClosed(func())
}
