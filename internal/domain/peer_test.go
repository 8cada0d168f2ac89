package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPeer(t *testing.T) {
	cases := []struct {
		name     string
		username string
		isAgent  bool
		wantErr  error
	}{
		{"plain client", "alice", false, nil},
		{"agent", "browser-agent", true, nil},
		{"max length", strings.Repeat("x", MaxUsernameLen), false, nil},
		{"empty", "", false, ErrUsernameEmpty},
		{"too long", strings.Repeat("x", MaxUsernameLen+1), false, ErrUsernameTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPeer(tc.username, tc.isAgent)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			if p.Username != tc.username || p.IsAgent != tc.isAgent {
				t.Fatalf("peer = %+v", p)
			}
			if p.Identity == "" || len(p.Identity) > MaxIdentityLen {
				t.Fatalf("identity = %q", p.Identity)
			}
		})
	}
}

func TestNewPeerIdentityUnique(t *testing.T) {
	a, _ := NewPeer("alice", false)
	b, _ := NewPeer("alice", false)
	if a.Identity == b.Identity {
		t.Fatal("identities must be unique")
	}
}

func TestSetUsername(t *testing.T) {
	p, _ := NewPeer("alice", false)
	if err := p.SetUsername(""); !errors.Is(err, ErrUsernameEmpty) {
		t.Fatalf("err = %v", err)
	}
	if err := p.SetUsername(strings.Repeat("x", MaxUsernameLen+1)); !errors.Is(err, ErrUsernameTooLong) {
		t.Fatalf("err = %v", err)
	}
	if p.Username != "alice" {
		t.Fatal("failed update must not mutate the peer")
	}
	if err := p.SetUsername("bob"); err != nil {
		t.Fatalf("err = %v", err)
	}
	if p.Username != "bob" {
		t.Fatalf("username = %q", p.Username)
	}
}
