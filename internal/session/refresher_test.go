package session

import (
	"context"
	"math/big"
	"testing"
	"time"
)

func TestRefresher_SkipsUntilConnected(t *testing.T) {
	w := newFakeWallet(t, big.NewInt(1))
	c := New(w)
	r := NewRefresher(c, 5*time.Millisecond)
	r.Start()
	defer r.Stop()

	time.Sleep(30 * time.Millisecond)
	if n := w.provider.calls.Load(); n != 0 {
		t.Fatalf("refresher fetched %d times while disconnected", n)
	}

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	w.provider.set(big.NewInt(2), nil)

	deadline := time.Now().Add(2 * time.Second)
	for c.State().Balance.Int64() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("refresher never picked up the new balance")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresher_DisabledAndIdempotentStop(t *testing.T) {
	r := NewRefresher(New(nil), 0)
	r.Start()
	r.Stop()
	r.Stop()
}
