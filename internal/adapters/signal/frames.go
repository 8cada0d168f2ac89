// Package signal carries bridge traffic over WebSocket: the hub-side
// controller that keeps the roster and routes call/reply frames between
// peers, and the client-side core.Session implementation endpoints use.
package signal

import "github.com/dkeye/Bridge/internal/core"

// Wire frame types. Everything on the signal channel is a small JSON object
// with a "type" discriminator, payload strings staying opaque to the hub.
const (
	frameJoin      = "join"
	frameJoined    = "joined"
	frameLeave     = "leave"
	frameLeft      = "left"
	framePing      = "ping"
	framePong      = "pong"
	frameWhoAmI    = "whoami"
	frameRoster    = "roster"
	frameCall      = "call"
	frameReply     = "reply"
	frameOffer     = "offer"
	frameAnswer    = "answer"
	frameCandidate = "candidate"
	frameError     = "error"
)

type callFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	To      string `json:"to,omitempty"`
	From    string `json:"from,omitempty"`
	Method  string `json:"method"`
	Payload string `json:"payload"`
}

type replyFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	To      string `json:"to,omitempty"`
	From    string `json:"from,omitempty"`
	OK      bool   `json:"ok"`
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

type rosterFrame struct {
	Type  string         `json:"type"`
	Peers []core.PeerDTO `json:"peers"`
}
