package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "10.0.0.1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "10.0.0.2"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if limiter.Len() != 2 {
		t.Errorf("expected 2 buckets, got %d", limiter.Len())
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 2)

	if !limiter.Allow("client") || !limiter.Allow("client") {
		t.Fatal("burst of 2 should be allowed")
	}
	if limiter.Allow("client") {
		t.Error("third request should be limited")
	}
	if !limiter.Allow("other") {
		t.Error("separate keys have separate buckets")
	}
	if d := limiter.Delay("client"); d <= 0 {
		t.Errorf("expected positive delay, got %v", d)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("client") {
			t.Fatalf("request %d limited with rate disabled", i)
		}
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.Allow("client")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "client"); err == nil {
		t.Error("expected wait to fail before the next token")
	}
}

func TestLimiter_SetRateAndForget(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.SetRate("vip", 1000, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow("vip") {
			t.Fatalf("vip request %d limited", i)
		}
	}

	limiter.Forget("vip")
	if limiter.Len() != 0 {
		t.Errorf("expected no buckets after forget, got %d", limiter.Len())
	}
}
