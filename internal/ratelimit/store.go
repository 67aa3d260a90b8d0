package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"horse.fit/polyglot/internal/globaltime"
)

// Store keeps one token bucket per key, created lazily. Buckets refill at
// rpm/60 tokens per second up to the burst capacity. Idle buckets are removed
// by a periodic janitor.
type Store struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// NewStore builds a bucket store for the given requests-per-minute budget.
func NewStore(rpm float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		buckets:      make(map[string]*bucket),
		rps:          rate.Limit(rpm / 60.0),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow consumes one token for key when available.
func (s *Store) Allow(key string) bool {
	now := globaltime.Now()
	return s.limiter(key, now).AllowN(now, 1)
}

// reserve claims one token for key at the given instant. The caller inspects
// DelayFrom and cancels the reservation when the token is not yet available.
func (s *Store) reserve(key string, now time.Time) *rate.Reservation {
	return s.limiter(key, now).ReserveN(now, 1)
}

func (s *Store) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.buckets[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.buckets[key] = &bucket{lim: lim, lastSeen: now}
	return lim
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *Store) Cleanup() {
	cutoff := globaltime.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ent := range s.buckets {
		if ent.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
}

// StartJanitor removes idle buckets periodically until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
