package pipeline

import (
	"errors"
	"fmt"
	"time"

	"horse.fit/polyglot/internal/translation"
)

var (
	// ErrQueueFull is the backpressure rejection when the task queue stays
	// full beyond the submit wait.
	ErrQueueFull = errors.New("translation queue is full")
	// ErrClosed rejects submissions after Close.
	ErrClosed = errors.New("translation pipeline is closed")
	// ErrSuperseded resolves a debounced request that was replaced by a newer
	// trigger for the same key.
	ErrSuperseded = errors.New("request superseded by a newer trigger")
	// ErrEmptyText rejects blank input before any work is queued.
	ErrEmptyText = errors.New("text is empty")
	// ErrTextTooLong rejects input above the configured length limit.
	ErrTextTooLong = errors.New("text exceeds the maximum length")

	// ErrAllProvidersExhausted is re-exported so callers depend on one
	// package for the full error contract.
	ErrAllProvidersExhausted = translation.ErrAllProvidersExhausted
)

// RateLimitedError is an admission denial with a wait-time hint.
type RateLimitedError struct {
	Level      string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited at %s level, retry after %s", e.Level, e.RetryAfter)
}
