package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errProviderDown = errors.New("provider down")

func newTestBoard(threshold uint32, cooldown time.Duration) *Board {
	return New([]string{"alpha", "beta"}, Options{
		Threshold: threshold,
		Cooldown:  cooldown,
		Logger:    zerolog.Nop(),
	})
}

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	board := newTestBoard(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := board.Execute("alpha", func() error { return errProviderDown }); !errors.Is(err, errProviderDown) {
			t.Fatalf("attempt %d: unexpected error %v", i+1, err)
		}
	}

	if !board.Open("alpha") {
		t.Fatalf("breaker should be open after 3 consecutive failures")
	}

	calls := 0
	err := board.Execute("alpha", func() error { calls++; return nil })
	if !Rejected(err) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("open breaker must not invoke the call")
	}

	// Other providers are unaffected.
	if board.Open("beta") {
		t.Fatalf("beta breaker should stay closed")
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	t.Parallel()

	board := newTestBoard(3, time.Minute)

	for i := 0; i < 2; i++ {
		_ = board.Execute("alpha", func() error { return errProviderDown })
	}
	if err := board.Execute("alpha", func() error { return nil }); err != nil {
		t.Fatalf("success should pass through: %v", err)
	}
	// Two more failures: streak restarted, still below threshold.
	for i := 0; i < 2; i++ {
		_ = board.Execute("alpha", func() error { return errProviderDown })
	}
	if board.Open("alpha") {
		t.Fatalf("breaker should remain closed after streak reset")
	}
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	t.Parallel()

	board := newTestBoard(2, 50*time.Millisecond)

	for i := 0; i < 2; i++ {
		_ = board.Execute("alpha", func() error { return errProviderDown })
	}
	if !board.Open("alpha") {
		t.Fatalf("breaker should be open")
	}

	time.Sleep(80 * time.Millisecond)

	if board.Open("alpha") {
		t.Fatalf("cooldown elapsed, breaker should permit a probe")
	}
	if err := board.Execute("alpha", func() error { return nil }); err != nil {
		t.Fatalf("probe should run and succeed: %v", err)
	}
	if board.Open("alpha") {
		t.Fatalf("successful probe should close the breaker")
	}

	// Closed again: failures start a fresh streak.
	_ = board.Execute("alpha", func() error { return errProviderDown })
	if board.Open("alpha") {
		t.Fatalf("one failure after recovery must not trip a threshold of 2")
	}
}

func TestHalfOpenProbeReopensOnFailure(t *testing.T) {
	t.Parallel()

	board := newTestBoard(2, 50*time.Millisecond)

	for i := 0; i < 2; i++ {
		_ = board.Execute("alpha", func() error { return errProviderDown })
	}
	time.Sleep(80 * time.Millisecond)

	if err := board.Execute("alpha", func() error { return errProviderDown }); !errors.Is(err, errProviderDown) {
		t.Fatalf("probe should run: %v", err)
	}
	if !board.Open("alpha") {
		t.Fatalf("failed probe must reopen the breaker")
	}
}

func TestUnknownProviderRunsUnguarded(t *testing.T) {
	t.Parallel()

	board := newTestBoard(1, time.Minute)

	calls := 0
	if err := board.Execute("unknown", func() error { calls++; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected unguarded call to run")
	}
	if board.Open("unknown") {
		t.Fatalf("unknown provider can never be open")
	}
}
