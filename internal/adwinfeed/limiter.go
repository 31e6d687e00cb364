// Package adwinfeed throttles ingestion into an adwinmgr.Manager with
// a per-stream-key token bucket, so Fit calls for one key can't starve
// capacity meant for every other key sharing the process.
package adwinfeed

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/coldshift/adwin/internal/adwinmgr"
)

// ErrRateLimited is returned by Fit when the caller's stream key has
// exceeded its configured rate.
var ErrRateLimited = fmt.Errorf("adwinfeed: rate limit exceeded")

// maxTrackedKeys bounds the limiter map before a cleanup sweep runs.
const maxTrackedKeys = 10000

// staleAfter is how long a key's limiter can go unused before cleanup
// reclaims it.
const staleAfter = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter wraps an adwinmgr.Manager with a per-stream-key token bucket,
// so a single noisy stream can't starve ingestion capacity from the
// rest.
type Limiter struct {
	mgr *adwinmgr.Manager

	mu       sync.Mutex
	limiters map[string]*entry
	rateVal  rate.Limit
	burst    int
}

// New wraps mgr with a limiter allowing rps samples per second per
// stream key, with the given burst capacity.
func New(mgr *adwinmgr.Manager, rps float64, burst int) *Limiter {
	return &Limiter{
		mgr:     mgr,
		rateVal: rate.Limit(rps),
		burst:   burst,
	}
}

// Fit routes one sample to key's stream if key's token bucket allows
// it, returning ErrRateLimited otherwise.
func (l *Limiter) Fit(key string, x float64) error {
	if !l.allow(key) {
		return ErrRateLimited
	}
	return l.mgr.Fit(key, x)
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limiters == nil {
		l.limiters = make(map[string]*entry)
	}

	e, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedKeys {
			l.cleanupLocked()
		}
		e = &entry{limiter: rate.NewLimiter(l.rateVal, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = time.Now()

	return e.limiter.Allow()
}

// cleanupLocked removes limiters not seen within staleAfter. Must be
// called with l.mu held.
func (l *Limiter) cleanupLocked() {
	cutoff := time.Now().Add(-staleAfter)
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

// TrackedKeys returns the number of stream keys currently holding a
// token bucket.
func (l *Limiter) TrackedKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
