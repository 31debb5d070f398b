package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSlidingWindow_Allow(t *testing.T) {
	now := time.Unix(1000, 0)
	sw := NewSlidingWindow(2, time.Second)
	sw.now = func() time.Time { return now }

	if !sw.Allow() || !sw.Allow() {
		t.Fatalf("first two requests should pass")
	}
	if sw.Allow() {
		t.Fatalf("third request within the window should be limited")
	}
	if sw.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", sw.Remaining())
	}

	now = now.Add(1100 * time.Millisecond)
	if sw.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2 after the window slides", sw.Remaining())
	}
	if !sw.Allow() {
		t.Fatalf("request after window should pass")
	}
}

func TestSlidingWindow_WaitHonoursContext(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	if err := sw.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sw.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
