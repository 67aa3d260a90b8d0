package ratelimit

import (
	"testing"
	"time"
)

func TestGateAdmitsThroughAllLevels(t *testing.T) {
	t.Parallel()

	gate := NewGate(NewStore(1, 5), NewStore(1, 5), NewStore(1, 5))

	dec := gate.Admit("user-1", "guild-1")
	if !dec.Allowed {
		t.Fatalf("expected admission, got %+v", dec)
	}
}

func TestGateDeniesWithRetryAfter(t *testing.T) {
	t.Parallel()

	gate := NewGate(NewStore(1, 1), NewStore(1, 100), NewStore(1, 100))

	if dec := gate.Admit("user-1", "guild-1"); !dec.Allowed {
		t.Fatalf("first request should pass: %+v", dec)
	}

	dec := gate.Admit("user-1", "guild-1")
	if dec.Allowed {
		t.Fatalf("second request should be denied at the requester level")
	}
	if dec.Level != LevelRequester {
		t.Fatalf("unexpected denial level: %q", dec.Level)
	}
	if dec.RetryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", dec.RetryAfter)
	}
}

func TestGateDenialDoesNotLeakTokens(t *testing.T) {
	t.Parallel()

	// Global burst of 2: a requester-level denial must not consume them.
	gate := NewGate(NewStore(1, 1), nil, NewStore(1, 2))

	if dec := gate.Admit("user-1", ""); !dec.Allowed {
		t.Fatalf("first request should pass: %+v", dec)
	}
	if dec := gate.Admit("user-1", ""); dec.Allowed {
		t.Fatalf("second request from user-1 should be denied")
	}

	// One global token left: a different requester still gets through.
	if dec := gate.Admit("user-2", ""); !dec.Allowed {
		t.Fatalf("user-2 should pass with the remaining global token: %+v", dec)
	}
}

func TestGateReportsSlowestDeniedLevel(t *testing.T) {
	t.Parallel()

	// Requester refills at 60 rpm, scope at 6 rpm: after the burst is spent,
	// the scope level needs the longer wait and must win the report.
	gate := NewGate(NewStore(60, 1), NewStore(6, 1), nil)

	if dec := gate.Admit("user-1", "guild-1"); !dec.Allowed {
		t.Fatalf("first request should pass: %+v", dec)
	}

	dec := gate.Admit("user-1", "guild-1")
	if dec.Allowed {
		t.Fatalf("second request should be denied")
	}
	if dec.Level != LevelScope {
		t.Fatalf("expected scope to be the slowest denied level, got %q", dec.Level)
	}
	if dec.RetryAfter < 5*time.Second {
		t.Fatalf("scope wait should be close to 10s, got %v", dec.RetryAfter)
	}
}

func TestNilGateAlwaysAdmits(t *testing.T) {
	t.Parallel()

	var gate *Gate
	if dec := gate.Admit("u", "s"); !dec.Allowed {
		t.Fatalf("nil gate must admit")
	}
}
