package breaker

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Board holds one circuit breaker per provider. A breaker trips after
// Threshold consecutive failures, rejects calls for the cooldown, then
// permits a single half-open probe whose outcome decides the next state.
type Board struct {
	breakers map[string]*gobreaker.CircuitBreaker
}

type Options struct {
	Threshold uint32
	Cooldown  time.Duration
	Logger    zerolog.Logger
}

func New(providerIDs []string, opts Options) *Board {
	threshold := opts.Threshold
	if threshold < 1 {
		threshold = 1
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker, len(providerIDs))
	for _, id := range providerIDs {
		name := id
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				opts.Logger.Warn().
					Str("provider", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("provider circuit state changed")
			},
		})
	}
	return &Board{breakers: breakers}
}

// Open reports whether calls to the provider are currently rejected without
// attempting network I/O.
func (b *Board) Open(providerID string) bool {
	cb, ok := b.lookup(providerID)
	if !ok {
		return false
	}
	return cb.State() == gobreaker.StateOpen
}

// Execute runs fn under the provider's breaker, recording success or failure.
// Unknown provider ids run unguarded.
func (b *Board) Execute(providerID string, fn func() error) error {
	cb, ok := b.lookup(providerID)
	if !ok {
		return fn()
	}
	_, err := cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

// Rejected reports whether err came from the breaker itself rather than the
// guarded call.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Board) lookup(providerID string) (*gobreaker.CircuitBreaker, bool) {
	if b == nil {
		return nil, false
	}
	cb, ok := b.breakers[providerID]
	return cb, ok
}
