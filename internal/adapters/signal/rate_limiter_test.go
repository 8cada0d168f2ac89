package signal

import (
	"testing"
	"time"
)

func TestCallRateLimiter(t *testing.T) {
	rl := NewCallRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("calls under the limit must pass")
	}
	if rl.Allow("a") {
		t.Fatal("third call within the window must be rejected")
	}
	if !rl.Allow("b") {
		t.Fatal("identities are limited independently")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("window expiry must readmit the identity")
	}
}
