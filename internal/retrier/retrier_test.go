package retrier

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func TestRunStopsOnFirstSuccess(t *testing.T) {
	t.Parallel()

	policy := New(3, time.Millisecond, 5*time.Millisecond, 2, 0)

	calls := 0
	err := policy.Run(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errFlaky
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRunExhaustsAttempts(t *testing.T) {
	t.Parallel()

	policy := New(3, time.Millisecond, 2*time.Millisecond, 2, 0)

	calls := 0
	err := policy.Run(context.Background(), func() error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected wrapped flaky error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestSingleAttemptReturnsBareError(t *testing.T) {
	t.Parallel()

	policy := New(1, time.Millisecond, time.Millisecond, 2, 0)

	err := policy.Run(context.Background(), func() error { return errFlaky })
	if err != errFlaky {
		t.Fatalf("single attempt should not wrap: %v", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	policy := New(5, 50*time.Millisecond, time.Second, 2, 0)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Run(ctx, func() error {
		calls++
		return errFlaky
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before cancellation, got %d", calls)
	}
}
