package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestUnlimited(t *testing.T) {
	l := New(0, 0)
	if _, ok := l.(Unlimited); !ok {
		t.Fatalf("Expected Unlimited for zero rate, got %T", l)
	}

	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

func TestTokenBucketBurst(t *testing.T) {
	l := New(1, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Expected burst to pass without waiting, took %v", elapsed)
	}
}

func TestTokenBucketHonorsContext(t *testing.T) {
	l := New(0.1, 1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Expected error once the bucket is empty and the context expires")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New(0, 0).Wait(ctx); err == nil {
		t.Error("Expected canceled context to be reported")
	}
}

func TestString(t *testing.T) {
	if got := New(2, 4).String(); got != "Limit(/s): 2, Burst: 4" {
		t.Errorf("Unexpected description %q", got)
	}
}
