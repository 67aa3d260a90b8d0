package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"horse.fit/polyglot/internal/globaltime"
)

// Level names for admission decisions.
const (
	LevelRequester = "requester"
	LevelScope     = "scope"
	LevelGlobal    = "global"
)

// globalKey is the single bucket key of the process-wide level.
const globalKey = "_global"

// Decision is the outcome of an admission check. RetryAfter is the time until
// one token becomes available at the slowest denied level.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Level      string
}

// Gate admits a request only when the requester, scope and global buckets all
// have a token available. Tokens are reserved on every level first; on any
// denial all reservations are cancelled so no level leaks tokens.
type Gate struct {
	requester *Store
	scope     *Store
	global    *Store
}

func NewGate(requester, scope, global *Store) *Gate {
	return &Gate{requester: requester, scope: scope, global: global}
}

// Admit checks all applicable levels for the given keys. Blank keys skip
// their level.
func (g *Gate) Admit(requesterKey, scopeKey string) Decision {
	if g == nil {
		return Decision{Allowed: true}
	}

	now := globaltime.Now()

	type claim struct {
		level string
		res   *rate.Reservation
	}

	claims := make([]claim, 0, 3)
	if g.requester != nil && requesterKey != "" {
		claims = append(claims, claim{LevelRequester, g.requester.reserve(requesterKey, now)})
	}
	if g.scope != nil && scopeKey != "" {
		claims = append(claims, claim{LevelScope, g.scope.reserve(scopeKey, now)})
	}
	if g.global != nil {
		claims = append(claims, claim{LevelGlobal, g.global.reserve(globalKey, now)})
	}

	denied := Decision{Allowed: true}
	for _, c := range claims {
		if delay := c.res.DelayFrom(now); delay > 0 && delay > denied.RetryAfter {
			denied = Decision{Allowed: false, RetryAfter: delay, Level: c.level}
		}
	}
	if denied.Allowed {
		return denied
	}

	for _, c := range claims {
		c.res.CancelAt(now)
	}
	return denied
}
