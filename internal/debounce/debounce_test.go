package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCollapseKeepsLatestAction(t *testing.T) {
	t.Parallel()

	d := New(30 * time.Millisecond)
	defer d.Close()

	var executed atomic.Value
	var firstCancelled atomic.Bool

	d.Schedule("msg:flag:user", func() { executed.Store("first") }, func() { firstCancelled.Store(true) })
	d.Schedule("msg:flag:user", func() { executed.Store("second") }, nil)

	time.Sleep(80 * time.Millisecond)

	if got := executed.Load(); got != "second" {
		t.Fatalf("expected only the latest action to run, got %v", got)
	}
	if !firstCancelled.Load() {
		t.Fatalf("expected the replaced action to report cancellation")
	}
	if d.Len() != 0 {
		t.Fatalf("expected no pending actions, got %d", d.Len())
	}
}

func TestDistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	d := New(10 * time.Millisecond)
	defer d.Close()

	var runs atomic.Int32
	d.Schedule("a", func() { runs.Add(1) }, nil)
	d.Schedule("b", func() { runs.Add(1) }, nil)

	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Fatalf("expected both keys to fire, got %d", got)
	}
}

func TestCancelPreventsExecution(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	defer d.Close()

	var ran atomic.Bool
	var cancelled atomic.Bool
	d.Schedule("k", func() { ran.Store(true) }, func() { cancelled.Store(true) })
	d.Cancel("k")

	time.Sleep(60 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("cancelled action must not run")
	}
	if !cancelled.Load() {
		t.Fatalf("cancellation callback must fire")
	}
}

func TestCloseCancelsPendingAndRejectsNew(t *testing.T) {
	t.Parallel()

	d := New(50 * time.Millisecond)

	var ran atomic.Bool
	var cancels atomic.Int32
	d.Schedule("k", func() { ran.Store(true) }, func() { cancels.Add(1) })
	d.Close()

	d.Schedule("k2", func() { ran.Store(true) }, func() { cancels.Add(1) })

	time.Sleep(90 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("no action may run after Close")
	}
	if got := cancels.Load(); got != 2 {
		t.Fatalf("expected both actions cancelled, got %d", got)
	}
}

func TestRapidReplacementNeverRunsStaleAction(t *testing.T) {
	t.Parallel()

	d := New(time.Millisecond)
	defer d.Close()

	var last atomic.Int32
	for i := int32(1); i <= 50; i++ {
		i := i
		d.Schedule("k", func() { last.Store(i) }, nil)
	}

	time.Sleep(50 * time.Millisecond)
	if got := last.Load(); got != 50 {
		t.Fatalf("expected only the final action to run, got %d", got)
	}
}
