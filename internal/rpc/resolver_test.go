package rpc

import (
	"testing"

	"github.com/dkeye/Bridge/internal/domain"
)

func TestFindAgent(t *testing.T) {
	cases := []struct {
		name  string
		peers []domain.Peer
		want  string
		found bool
	}{
		{
			name:  "empty roster",
			peers: nil,
		},
		{
			name: "no agent present",
			peers: []domain.Peer{
				{Identity: "a"},
				{Identity: "b"},
			},
		},
		{
			name: "agent after non-agent",
			peers: []domain.Peer{
				{Identity: "a", IsAgent: false},
				{Identity: "b", IsAgent: true},
			},
			want:  "b",
			found: true,
		},
		{
			name: "first agent wins",
			peers: []domain.Peer{
				{Identity: "a", IsAgent: true},
				{Identity: "b", IsAgent: true},
			},
			want:  "a",
			found: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			peer, found := FindAgent(tc.peers)
			if found != tc.found {
				t.Fatalf("found = %v, want %v", found, tc.found)
			}
			if found && peer.Identity != tc.want {
				t.Fatalf("identity = %q, want %q", peer.Identity, tc.want)
			}
		})
	}
}
