package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an unused client bucket is kept
const idleTTL = 10 * time.Minute

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// KeyLimiter keeps one token bucket per key (client IP)
type KeyLimiter struct {
	mu        sync.Mutex
	m         map[string]*entry
	r         rate.Limit
	b         int
	lastSweep time.Time
	now       func() time.Time
}

// New builds a limiter that allows perMinute requests per key with the given burst
func New(perMinute float64, burst int) *KeyLimiter {
	return &KeyLimiter{
		m:   make(map[string]*entry),
		r:   rate.Limit(perMinute / 60),
		b:   burst,
		now: time.Now,
	}
}

// Allow consumes a token for key. It never blocks.
func (kl *KeyLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	kl.sweep(now)

	e, ok := kl.m[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(kl.r, kl.b)}
		kl.m[key] = e
	}
	e.lastSeen = now

	return e.lim.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idleTTL
func (kl *KeyLimiter) sweep(now time.Time) {
	if now.Sub(kl.lastSweep) < idleTTL {
		return
	}
	kl.lastSweep = now

	for key, e := range kl.m {
		if now.Sub(e.lastSeen) >= idleTTL {
			delete(kl.m, key)
		}
	}
}

// Len reports how many keys are tracked
func (kl *KeyLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.m)
}
