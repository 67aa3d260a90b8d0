package ratelimit

import (
	"testing"
	"time"
)

func TestBurstBound(t *testing.T) {
	t.Parallel()

	// 1 rpm refills far too slowly to matter within this test.
	store := NewStore(1, 10)

	for i := 0; i < 10; i++ {
		if !store.Allow("user-1") {
			t.Fatalf("call %d should be admitted within burst", i+1)
		}
	}
	if store.Allow("user-1") {
		t.Fatalf("11th call must be denied")
	}
	if !store.Allow("user-2") {
		t.Fatalf("distinct keys must have independent buckets")
	}
}

func TestRefillRestoresCapacity(t *testing.T) {
	t.Parallel()

	// 6000 rpm = 100 tokens/s, so one token returns within 10ms.
	store := NewStore(6000, 1)

	if !store.Allow("key") {
		t.Fatalf("first call should be admitted")
	}
	if store.Allow("key") {
		t.Fatalf("second immediate call should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !store.Allow("key") {
		t.Fatalf("expected token to be refilled")
	}
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	t.Parallel()

	store := NewStore(60, 1, WithIdleTTL(time.Nanosecond))
	store.Allow("stale")
	if store.Len() != 1 {
		t.Fatalf("expected one bucket, got %d", store.Len())
	}

	time.Sleep(time.Millisecond)
	store.Cleanup()
	if store.Len() != 0 {
		t.Fatalf("expected idle bucket to be removed, got %d", store.Len())
	}
}
