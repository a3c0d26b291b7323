package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	time.Sleep(250 * time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 100*time.Millisecond)
	ctx := context.Background()

	if err := sw.Wait(ctx); err != nil {
		t.Fatalf("First wait should pass immediately: %v", err)
	}

	start := time.Now()
	if err := sw.Wait(ctx); err != nil {
		t.Fatalf("Second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected second wait to block for the window, took %v", elapsed)
	}
}

func TestSlidingWindowWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	sw.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sw.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(0).(Unlimited); !ok {
		t.Error("Expected zero requests per minute to disable limiting")
	}
	if _, ok := New(30).(*SlidingWindow); !ok {
		t.Error("Expected a sliding window for positive limits")
	}

	u := Unlimited{}
	for i := 0; i < 1000; i++ {
		if !u.Allow() {
			t.Fatal("Unlimited should always allow")
		}
	}
}
