// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxIdentityLen = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// Peer is a remote participant reachable over the session transport.
// Identity is opaque and unique within one session; IsAgent marks the
// distinguished peer capable of servicing agent.* calls.
type Peer struct {
	Identity string `json:"identity"`
	Username string `json:"username"`
	IsAgent  bool   `json:"agent"`
}

// NewPeer is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPeer(username string, isAgent bool) (*Peer, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Peer{Identity: uuid.NewString(), Username: username, IsAgent: isAgent}, nil
}

func (p *Peer) SetUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	p.Username = username
	return nil
}
