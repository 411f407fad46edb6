package middleware

import (
	"net/http"
	"testing"
	"time"
)

// TestRateLimiter_SweepsIdleKeys verifies buckets idle for a full refill are
// dropped while recently used ones survive.
func TestRateLimiter_SweepsIdleKeys(t *testing.T) {
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2, func(*http.Request) string { return "" })
	rl.now = func() time.Time { return clock }

	rl.limiter("E1")
	rl.limiter("E2")
	if got := rl.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	clock = clock.Add(time.Second)
	rl.limiter("E2")
	if got := rl.Len(); got != 2 {
		t.Fatalf("Len before refill window = %d, want 2", got)
	}

	// E1 has now been idle for the whole refill time, E2 for only one second
	clock = clock.Add(time.Second)
	rl.limiter("E3")
	if got := rl.Len(); got != 2 {
		t.Fatalf("Len after sweep = %d, want 2", got)
	}
	rl.mu.Lock()
	_, e1 := rl.limiters["E1"]
	_, e2 := rl.limiters["E2"]
	rl.mu.Unlock()
	if e1 || !e2 {
		t.Fatalf("E1 kept = %v, E2 kept = %v; want false, true", e1, e2)
	}
}

// TestRateLimiter_SweepIsThrottled verifies the map is scanned at most once
// per refill window.
func TestRateLimiter_SweepIsThrottled(t *testing.T) {
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2, func(*http.Request) string { return "" })
	rl.now = func() time.Time { return clock }

	rl.limiter("E1")
	swept := rl.lastSweep

	clock = clock.Add(time.Second)
	rl.limiter("E2")
	if !rl.lastSweep.Equal(swept) {
		t.Fatal("swept again inside the refill window")
	}

	clock = clock.Add(time.Second)
	rl.limiter("E2")
	if !rl.lastSweep.Equal(clock) {
		t.Fatalf("lastSweep = %v, want %v", rl.lastSweep, clock)
	}
}
