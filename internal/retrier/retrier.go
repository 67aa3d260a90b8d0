package retrier

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy is the single retry/backoff configuration consumed by the
// dispatcher for every provider attempt.
type Policy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	factor      float64
	jitter      float64
}

func New(maxAttempts int, baseDelay, maxDelay time.Duration, factor, jitter float64) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	if factor < 1 {
		factor = 2
	}
	return &Policy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		factor:      factor,
		jitter:      jitter,
	}
}

// Run invokes fn up to maxAttempts times with exponential backoff between
// attempts, stopping early on success or context cancellation.
func (p *Policy) Run(ctx context.Context, fn func() error) error {
	if p == nil {
		return fn()
	}

	var err error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == p.maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}

	if p.maxAttempts == 1 {
		return err
	}
	return fmt.Errorf("all %d attempts failed: %w", p.maxAttempts, err)
}

func (p *Policy) delay(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(p.factor, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	delay += rand.Float64() * p.jitter * delay
	return time.Duration(delay)
}
