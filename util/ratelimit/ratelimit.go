// Package ratelimit provides a small per-key limiter. It is injected into
// the handlers that need it rather than referenced as a package global, so
// tests can swap in a no-op.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(key string) bool
}

type keyed struct {
	mu    sync.Mutex
	seen  map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewPerKey allows rps events per second with the given burst, tracked
// independently per key (typically "user_id:action").
func NewPerKey(rps float64, burst int) Limiter {
	return &keyed{
		seen:  make(map[string]*rate.Limiter),
		limit: rate.Limit(rps),
		burst: burst,
	}
}

func (k *keyed) Allow(key string) bool {
	k.mu.Lock()
	l, ok := k.seen[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.seen[key] = l
	}
	k.mu.Unlock()
	return l.Allow()
}

type noop struct{}

func (noop) Allow(string) bool { return true }

// NewNoop returns a limiter that always admits. Used in tests and when
// rate limiting is disabled by config.
func NewNoop() Limiter { return noop{} }
