package scraper

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// RateLimiter bounds concurrent outbound requests and inserts a small random
// delay before each one so refresh batches do not hammer the remote source.
type RateLimiter struct {
	slots    chan struct{}
	minDelay time.Duration
	maxDelay time.Duration
}

// NewRateLimiter creates a limiter allowing at most workers concurrent
// requests, each preceded by a random delay in [minDelay, maxDelay].
func NewRateLimiter(workers int, minDelay, maxDelay time.Duration) *RateLimiter {
	if workers <= 0 {
		workers = 1
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RateLimiter{
		slots:    make(chan struct{}, workers),
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Wait acquires a request slot, sleeping the politeness delay first.
// Callers must Release the slot when the request completes.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := Sleep(ctx, r.delay()); err != nil {
		return err
	}
	select {
	case r.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a previously acquired slot.
func (r *RateLimiter) Release() {
	select {
	case <-r.slots:
	default:
	}
}

func (r *RateLimiter) delay() time.Duration {
	spread := int64(r.maxDelay - r.minDelay)
	if spread <= 0 {
		return r.minDelay
	}
	var b [8]byte
	_, _ = rand.Read(b[:])
	n := int64(binary.LittleEndian.Uint64(b[:]))
	if n < 0 {
		n = -n
	}
	return r.minDelay + time.Duration(n%spread)
}
